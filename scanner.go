package handex

import "math/bits"

// wordBroadcast repeats b into every byte of a uint64, used to prime the
// word-parallel signature scan.
func wordBroadcast(b byte) uint64 {
	return uint64(b) * 0x0101010101010101
}

// hasByteMask returns a bitmask with the high bit of each byte position set
// exactly where word's corresponding byte equals b. It is the exact SWAR
// zero-byte test applied to word XOR broadcast(b): adding 0x7f to each
// byte's low 7 bits never carries into the next byte, so no byte is
// flagged because of its neighbour. This lets one compare 8 signature bytes
// against a target in a single word-sized operation instead of 8 individual
// byte compares.
func hasByteMask(word uint64, bcast uint64) uint64 {
	const low7 = 0x7f7f7f7f7f7f7f7f
	x := word ^ bcast
	return ^(((x & low7) + low7) | x | low7)
}

// scanSignatures calls fn(i) in ascending order for every index i in
// [0, fill) where signatures[i] == target, stopping early if fn returns
// true. It scans in 8-byte machine words where possible, falling back to a
// byte-by-byte compare for the remaining tail shorter than 8 bytes — the
// "word-parallel linear probe" of the signature scanner. The word-parallel
// path and the naive byte loop are required to agree exactly; see
// scanner_test.go for the equivalence check.
func scanSignatures(signatures []byte, fill int32, target byte, fn func(i int32) bool) {
	bcast := wordBroadcast(target)
	n := fill
	var i int32

	for ; i+8 <= n; i += 8 {
		word := le64(signatures[i : i+8])
		mask := hasByteMask(word, bcast)
		for mask != 0 {
			bytePos := int32(trailingZeroBytePos(mask))
			if fn(i + bytePos) {
				return
			}
			mask &= mask - 1
		}
	}
	for ; i < n; i++ {
		if signatures[i] == target {
			if fn(i) {
				return
			}
		}
	}
}

// scanSignaturesNaive is the byte-by-byte reference scan, kept only to
// verify scanSignatures's word-parallel path produces identical candidate
// sets (see scanner_test.go). It is never used on a production code path.
func scanSignaturesNaive(signatures []byte, fill int32, target byte, fn func(i int32) bool) {
	for i := int32(0); i < fill; i++ {
		if signatures[i] == target {
			if fn(i) {
				return
			}
		}
	}
}

// trailingZeroBytePos returns the byte index (0..7) of the lowest set
// high-bit in a hasByteMask result.
func trailingZeroBytePos(mask uint64) int {
	return bits.TrailingZeros64(mask) / 8
}

// le64 reads 8 bytes as a little-endian uint64. Byte order only needs to be
// consistent within a single process run (signatures never cross a
// process boundary), so this avoids a dependency on encoding/binary for a
// hot-path helper.
func le64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}
