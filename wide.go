package handex

import "context"

// WideStore is the 64-bit-handle variant: up to 2^31 rows, a single
// signature-row per handex, no alternate-row overflow. Construct with
// [NewWide].
type WideStore[V comparable] struct {
	core *store[V]
}

// NewWide constructs a Wide store. bitWidth (via [WithBitWidth]) is clamped
// to [8, 31]; the default is 8 (spec's nominal default of 4 is below the
// variant's own minimum and is clamped up).
func NewWide[V comparable](enc Encoder[V], opts ...Option) *WideStore[V] {
	cfg := newConfig(wideVariant, opts)
	return &WideStore[V]{core: newStore(wideVariant, enc, cfg)}
}

// Add interns v, returning its handle. Adding the same value twice returns
// the same handle both times; adding the zero value of V (treated as the
// null sentinel) always returns handle 0 without storing anything.
func (s *WideStore[V]) Add(v V) (uint64, error) {
	ctx, cancel := s.core.backgroundContext()
	defer cancel()
	return s.AddContext(ctx, v)
}

// AddContext is Add with an explicit context governing lock-acquisition
// timeouts.
func (s *WideStore[V]) AddContext(ctx context.Context, v V) (uint64, error) {
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
		rowIdx := uint64(fp.h32) & uint64(st.hashMask)

		handle, status, crossed, err := s.core.tryAddAcrossRows(ctx, st, []uint64{rowIdx}, fp, v)
		if err != nil {
			return 0, err
		}

		switch status {
		case addDuplicate:
			return handle, nil
		case addInserted:
			s.core.count.Add(1)
			if crossed {
				if err := s.core.enlargeVertical(ctx); err != nil {
					s.core.logger.lockTimeout("enlarge", rowIdx)
				}
			}
			return handle, nil
		case addRowFull:
			if st.bitWidth >= s.core.variant.maxBitWidth {
				s.core.logger.outOfCapacity(rowIdx, st.bitWidth)
				return 0, ErrOutOfCapacity
			}
			if err := s.core.enlargeVertical(ctx); err != nil {
				return 0, err
			}
			// retry on the newly-enlarged layout
		}
	}
}

// Find returns the handle previously issued for v, or 0 if v is absent (or
// is the null sentinel).
func (s *WideStore[V]) Find(v V) (uint64, error) {
	ctx, cancel := s.core.backgroundContext()
	defer cancel()
	return s.FindContext(ctx, v)
}

// FindContext is Find with an explicit context.
func (s *WideStore[V]) FindContext(ctx context.Context, v V) (uint64, error) {
	var zero V
	if v == zero {
		return 0, nil
	}
	fp, err := safeHash(s.core.encoder, v)
	if err != nil {
		return 0, err
	}
	st := s.core.state.Load()
	rowIdx := uint64(fp.h32) & uint64(st.hashMask)
	return s.core.find(ctx, []uint64{rowIdx}, fp, v)
}

// Contains reports whether v has been interned.
func (s *WideStore[V]) Contains(v V) (bool, error) {
	h, err := s.Find(v)
	return h != 0, err
}

// Get returns the value for handle, or the zero value of V if handle is 0
// or does not (currently) address a live slot.
func (s *WideStore[V]) Get(handle uint64) V {
	ctx, cancel := s.core.backgroundContext()
	defer cancel()
	v, _, _ := s.core.get(ctx, handle)
	return v
}

// GetContext is Get with an explicit context and an ok flag distinguishing
// "null handle" / out-of-range from a legitimately-zero-valued entry.
func (s *WideStore[V]) GetContext(ctx context.Context, handle uint64) (V, bool, error) {
	return s.core.get(ctx, handle)
}

// Count returns the number of distinct non-null values interned so far.
func (s *WideStore[V]) Count() int64 { return s.core.Count() }

// BitWidth returns the store's current bit width.
func (s *WideStore[V]) BitWidth() int { return s.core.BitWidth() }

// Clear is a documented no-op. The store is append-only by design; a real
// shrink-to-defaults reset is future work, not part of the current
// contract, so Clear exists only so callers migrating from a mutable map
// don't have to delete the call site.
func (s *WideStore[V]) Clear() {}
