package handex

import "context"

// ShortStore is the 32-bit-handle variant: up to 2^24 rows, 8-bit in-row
// index (<=256 per row), with a 4-way alternate-row overflow scheme once
// bit width is maxed out and a handex's primary row is full. Construct with
// [NewShort].
type ShortStore[V comparable] struct {
	core *store[V]
}

// NewShort constructs a Short store. bitWidth (via [WithBitWidth]) is
// clamped to [9, 24]; the default is 10.
func NewShort[V comparable](enc Encoder[V], opts ...Option) *ShortStore[V] {
	cfg := newConfig(shortVariant, opts)
	return &ShortStore[V]{core: newStore(shortVariant, enc, cfg)}
}

// alternateRowIndices computes r2, r3, r4 for a primary row exactly as
// specified: r2 = ~row, r3 = (row<<12 | row>>12), r4 = ~r3, each masked to
// hashMask.
func alternateRowIndices(primary uint64, hashMask uint32) (r2, r3, r4 uint64) {
	p := uint32(primary)
	r2 = uint64(^p) & uint64(hashMask)
	r3raw := (p << 12) | (p >> 12)
	r3 = uint64(r3raw) & uint64(hashMask)
	r4 = uint64(^uint32(r3)) & uint64(hashMask)
	return r2, r3, r4
}

func (s *ShortStore[V]) rowsFor(st *storeState[V], primary uint64) []uint64 {
	if st.bitWidth < s.core.variant.maxBitWidth {
		return []uint64{primary}
	}
	r2, r3, r4 := alternateRowIndices(primary, st.hashMask)
	return []uint64{primary, r2, r3, r4}
}

// Add interns v, returning its 32-bit handle. See [WideStore.Add] for the
// null-sentinel and dedup behavior, which is identical here.
func (s *ShortStore[V]) Add(v V) (uint32, error) {
	ctx, cancel := s.core.backgroundContext()
	defer cancel()
	return s.AddContext(ctx, v)
}

// AddContext is Add with an explicit context.
func (s *ShortStore[V]) AddContext(ctx context.Context, v V) (uint32, error) {
	var zero V
	if v == zero {
		return 0, nil
	}
	fp, err := safeHash(s.core.encoder, v)
	if err != nil {
		return 0, err
	}

	for {
		st := s.core.state.Load()
		primary := uint64(fp.h32) & uint64(st.hashMask)
		rowIdxs := s.rowsFor(st, primary)

		handle, status, crossed, err := s.core.tryAddAcrossRows(ctx, st, rowIdxs, fp, v)
		if err != nil {
			return 0, err
		}

		switch status {
		case addDuplicate:
			return uint32(handle), nil
		case addInserted:
			s.core.count.Add(1)
			if crossed {
				if err := s.core.enlargeVertical(ctx); err != nil {
					s.core.logger.lockTimeout("enlarge", primary)
				}
			}
			return uint32(handle), nil
		case addRowFull:
			if st.bitWidth < s.core.variant.maxBitWidth {
				if err := s.core.enlargeVertical(ctx); err != nil {
					return 0, err
				}
				continue
			}
			// Already at max bit width and every candidate row
			// (primary + all three alternates) is full.
			s.core.logger.outOfCapacity(primary, st.bitWidth)
			return 0, ErrOutOfCapacity
		}
	}
}

// Find returns the handle previously issued for v, or 0 if absent.
func (s *ShortStore[V]) Find(v V) (uint32, error) {
	ctx, cancel := s.core.backgroundContext()
	defer cancel()
	return s.FindContext(ctx, v)
}

// FindContext is Find with an explicit context.
func (s *ShortStore[V]) FindContext(ctx context.Context, v V) (uint32, error) {
	var zero V
	if v == zero {
		return 0, nil
	}
	fp, err := safeHash(s.core.encoder, v)
	if err != nil {
		return 0, err
	}
	st := s.core.state.Load()
	primary := uint64(fp.h32) & uint64(st.hashMask)
	rowIdxs := s.rowsFor(st, primary)
	h, err := s.core.find(ctx, rowIdxs, fp, v)
	return uint32(h), err
}

// Contains reports whether v has been interned.
func (s *ShortStore[V]) Contains(v V) (bool, error) {
	h, err := s.Find(v)
	return h != 0, err
}

// Get returns the value for handle, or the zero value of V.
func (s *ShortStore[V]) Get(handle uint32) V {
	ctx, cancel := s.core.backgroundContext()
	defer cancel()
	v, _, _ := s.core.get(ctx, uint64(handle))
	return v
}

// GetContext is Get with an explicit context and an ok flag.
func (s *ShortStore[V]) GetContext(ctx context.Context, handle uint32) (V, bool, error) {
	return s.core.get(ctx, uint64(handle))
}

// Count returns the number of distinct non-null values interned so far.
func (s *ShortStore[V]) Count() int64 { return s.core.Count() }

// BitWidth returns the store's current bit width.
func (s *ShortStore[V]) BitWidth() int { return s.core.BitWidth() }

// Clear is a documented no-op; see [WideStore.Clear].
func (s *ShortStore[V]) Clear() {}
