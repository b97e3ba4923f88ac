package handex

import (
	"context"
	"sync/atomic"
	"time"
)

// backgroundContext builds the context used by the non-Context operation
// variants (Add, Find, Contains, Get), bounding lock acquisition by the
// store's configured lock timeout rather than blocking indefinitely.
func (s *store[V]) backgroundContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.lockTimeout)
}

// rowSlot holds one cell of the outer row vector. The row itself is
// allocated lazily on first insertion into its handex; ptr starts nil and
// is populated exactly once via compare-and-swap (see getOrCreateRow).
type rowSlot[V comparable] struct {
	ptr atomic.Pointer[row[V]]
}

// storeState is bitWidth, hashMask, and the row vector, published together
// behind one atomic pointer so a reader never observes a torn combination
// (e.g. a new hashMask paired with the old row vector) across a concurrent
// vertical enlargement.
type storeState[V comparable] struct {
	bitWidth int
	hashMask uint32
	rows     []*rowSlot[V]
}

// store is the engine shared by WideStore and ShortStore; the two public
// types are thin wrappers that supply a variant and the handle width their
// API exposes (uint64 vs uint32).
type store[V comparable] struct {
	variant     variant
	encoder     Encoder[V]
	broker      *storageBroker
	logger      *Logger
	lockTimeout time.Duration

	state atomic.Pointer[storeState[V]]
	count atomic.Int64
}

func newStore[V comparable](vr variant, enc Encoder[V], cfg config) *store[V] {
	rowCount := 1 << uint(cfg.bitWidth)
	rows := make([]*rowSlot[V], rowCount)
	for i := range rows {
		rows[i] = &rowSlot[V]{}
	}

	s := &store[V]{
		variant:     vr,
		encoder:     enc,
		broker:      newStorageBroker(),
		logger:      cfg.logger,
		lockTimeout: cfg.lockTimeout,
	}
	s.state.Store(&storeState[V]{
		bitWidth: cfg.bitWidth,
		hashMask: uint32(rowCount - 1),
		rows:     rows,
	})
	return s
}

// initialRowCapacity is the capacity a row starts at when first allocated:
// half of rowThreshold for Wide (the source keeps rows roughly half full on
// average before the next horizontal grow), a small fixed minimum for Short
// whose rows are capped at only 256 entries in the first place.
func (s *store[V]) initialRowCapacity(bitWidth int) int32 {
	if s.variant.alternateRows {
		return 1
	}
	cap := s.variant.rowThreshold(bitWidth) / 2
	if cap < 1 {
		cap = 1
	}
	return cap
}

// getOrCreateRow returns the row at rowIdx, allocating it on first access.
// Safe for concurrent callers: only one candidate row object survives the
// compare-and-swap race, and the rest are discarded.
func (s *store[V]) getOrCreateRow(st *storeState[V], rowIdx uint64) *row[V] {
	slot := st.rows[rowIdx]
	if r := slot.ptr.Load(); r != nil {
		return r
	}
	candidate := newRow[V](s.initialRowCapacity(st.bitWidth))
	if rowIdx == 0 {
		// Slot 0 of row 0 is the null sentinel, so handle 0 is never issued
		// to a value.
		candidate.fill = 1
	}
	if slot.ptr.CompareAndSwap(nil, candidate) {
		return candidate
	}
	return slot.ptr.Load()
}

// getOrCreateRowLocked is the vertical-enlargement-only counterpart of
// getOrCreateRow: it is called while the engine holds exclusive storage
// write-access and slot belongs to a row vector not yet published, so no
// concurrent caller can observe or race on it.
func (s *store[V]) getOrCreateRowLocked(slot *rowSlot[V], bitWidth int) *row[V] {
	if r := slot.ptr.Load(); r != nil {
		return r
	}
	r := newRow[V](s.initialRowCapacity(bitWidth))
	slot.ptr.Store(r)
	return r
}

// safeHash computes v's fingerprint, translating a panicking Encoder into
// ErrEncodingFailure instead of crashing the caller.
func safeHash[V comparable](enc Encoder[V], v V) (fp fingerprint, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = encodingFailure(r)
		}
	}()
	return hashValue(enc, v), nil
}

// Count returns the number of user-inserted values, excluding the null
// sentinel.
func (s *store[V]) Count() int64 {
	return s.count.Load()
}

// BitWidth returns the store's current bit width.
func (s *store[V]) BitWidth() int {
	return s.state.Load().bitWidth
}
