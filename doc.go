// Package handex implements a hash-indexed value interner: given a value it
// returns a stable integer handle, and given a handle it recovers the
// original value in near-constant time. Handles issued by Add remain valid
// for the lifetime of the store, including across capacity growth.
//
// Two variants are provided over one shared engine: Wide ([NewWide], 64-bit
// handles, up to 2^31 rows) and Short ([NewShort], 32-bit handles, up to
// 2^24 rows, with 4-way alternate-row overflow once bit width maxes out).
//
// The store is append-only: there is no Delete, and interned values are
// never mutated. Rebuilding from scratch is the only compaction path.
package handex
