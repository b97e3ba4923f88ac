package handex

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// fingerprint is the pair (H32, S8) described in the data model: a 32-bit
// primary hash used to pick a row, and an 8-bit Pearson hash used as a
// signature to reject non-matching slots during a row scan.
type fingerprint struct {
	h32 uint32
	s8  byte
}

// hashValue computes the fingerprint of v's encoding. It is pure and safe
// for concurrent use from any number of goroutines.
func hashValue[V comparable](enc Encoder[V], v V) fingerprint {
	b := enc.Encode(v)
	return fingerprint{
		h32: uint32(xxhash.Sum64(b)),
		s8:  pearson(b),
	}
}

// nullFingerprint is the fingerprint of the sentinel null value: (0, 0),
// never computed from an encoding.
var nullFingerprint = fingerprint{}

// pearsonTable is the permutation of 0..255 used by the Pearson hash. It is
// a fixed, arbitrary bijection on the byte space; any bijection works
// equally well for S8's purpose as a probabilistic signature (it is never
// relied on for correctness, only to skip non-matching slots cheaply).
var pearsonTable = makePearsonTable()

// makePearsonTable builds a deterministic permutation of 0..255 with a
// small linear-congruential shuffle, avoiding the transcription
// risk of hand-typing 256 bytes.
func makePearsonTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	// Fisher-Yates with a fixed LCG stream so the table is reproducible
	// across builds and platforms.
	state := uint32(0x9e3779b9)
	next := func() uint32 {
		state = state*1664525 + 1013904223
		return state
	}
	for i := 255; i > 0; i-- {
		j := int(next() % uint32(i+1))
		t[i], t[j] = t[j], t[i]
	}
	return t
}

// pearson computes the 8-bit Pearson hash of b, folding the whole input
// through the permutation table.
func pearson(b []byte) byte {
	var h byte
	for _, c := range b {
		h = pearsonTable[h^c]
	}
	return h
}

// unsafeStringBytes returns the bytes backing s without copying. The
// returned slice must not be mutated; Encoders only ever read it.
func unsafeStringBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
