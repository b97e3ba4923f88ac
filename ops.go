package handex

import (
	"context"
	"sort"
)

// addStatus reports what tryAddAcrossRows did with one attempt.
type addStatus int

const (
	addInserted addStatus = iota
	addDuplicate
	addRowFull
	// addStale: a vertical enlargement published a new layout after the
	// caller computed its candidate rows; the caller retries on the new one.
	addStale
)

// lockRowsForWrite resolves rowIdxs to their row objects (allocating any
// that don't exist yet) and acquires every one's write lock, in ascending
// row-index order regardless of rowIdxs' own order. The fixed acquisition
// order is what keeps two concurrent multi-row Adds (Short-store overflow,
// where a candidate set can share rows) from deadlocking on each other.
func (s *store[V]) lockRowsForWrite(ctx context.Context, st *storeState[V], rowIdxs []uint64) ([]*row[V], error) {
	rows := make([]*row[V], len(rowIdxs))
	for i, idx := range rowIdxs {
		rows[i] = s.getOrCreateRow(st, idx)
	}

	order := make([]int, len(rowIdxs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return rowIdxs[order[a]] < rowIdxs[order[b]] })

	for i, pos := range order {
		if err := rows[pos].lock.acquireWrite(ctx); err != nil {
			for _, p2 := range order[:i] {
				rows[p2].lock.releaseWrite()
			}
			return nil, err
		}
	}
	return rows, nil
}

func unlockRows[V comparable](rows []*row[V]) {
	for _, r := range rows {
		r.lock.releaseWrite()
	}
}

// tryAddAcrossRows performs one dedup-check-then-insert attempt across a
// fixed candidate set of rows (length 1 for Wide, 1 or 4 for Short). All
// candidate rows are locked for write together so the uniqueness invariant
// holds across the whole set, not just within one row.
func (s *store[V]) tryAddAcrossRows(ctx context.Context, st *storeState[V], rowIdxs []uint64, fp fingerprint, v V) (handle uint64, status addStatus, crossedThreshold bool, err error) {
	if err := s.broker.acquireRead(ctx); err != nil {
		return 0, 0, false, err
	}
	defer s.broker.releaseRead()
	if s.state.Load() != st {
		return 0, addStale, false, nil
	}

	// The candidate set can name one row more than once (r3 can equal the
	// primary row, r4 can equal r2); each distinct row is locked and
	// scanned once, in first-occurrence order.
	uniq := make([]uint64, 0, len(rowIdxs))
	for _, idx := range rowIdxs {
		dup := false
		for _, u := range uniq {
			dup = dup || u == idx
		}
		if !dup {
			uniq = append(uniq, idx)
		}
	}
	rowIdxs = uniq

	rows, err := s.lockRowsForWrite(ctx, st, rowIdxs)
	if err != nil {
		return 0, 0, false, err
	}
	defer unlockRows(rows)

	// Dedup check in the tie-break order spec'd for Find: primary, then
	// r2, r3, r4.
	for pos, r := range rows {
		found := int32(-1)
		scanSignatures(r.signatures, r.fill, fp.s8, func(i int32) bool {
			if r.values[i] == v {
				found = i
				return true
			}
			return false
		})
		if found >= 0 {
			return s.variant.packHandle(rowIdxs[pos], found), addDuplicate, false, nil
		}
	}

	threshold := s.variant.rowThreshold(st.bitWidth)
	for pos, r := range rows {
		if r.fill >= threshold {
			continue
		}
		prevCapacity := r.capacity()
		idx := r.nextSlot(threshold)
		r.values[idx] = v
		r.signatures[idx] = fp.s8
		r.hashes[idx] = fp.h32
		if r.capacity() != prevCapacity {
			s.logger.horizontalGrow(rowIdxs[pos], st.bitWidth, r.fill, r.capacity())
		}
		return s.variant.packHandle(rowIdxs[pos], idx), addInserted, pos == 0 && r.fill >= threshold, nil
	}
	return 0, addRowFull, false, nil
}

// find scans rowIdxs in order (primary first, then any alternates) under
// each row's read lock, returning the handle of the first row whose
// content matches v, or 0 if none do.
func (s *store[V]) find(ctx context.Context, rowIdxs []uint64, fp fingerprint, v V) (uint64, error) {
	if err := s.broker.acquireRead(ctx); err != nil {
		return 0, err
	}
	defer s.broker.releaseRead()

	st := s.state.Load()
	for _, rowIdx := range rowIdxs {
		if rowIdx >= uint64(len(st.rows)) {
			continue
		}
		r := st.rows[rowIdx].ptr.Load()
		if r == nil {
			continue
		}
		if err := r.lock.acquireRead(ctx); err != nil {
			return 0, err
		}
		found := int32(-1)
		scanSignatures(r.signatures, r.fill, fp.s8, func(i int32) bool {
			if r.values[i] == v {
				found = i
				return true
			}
			return false
		})
		r.lock.releaseRead()
		if found >= 0 {
			return s.variant.packHandle(rowIdx, found), nil
		}
	}
	return 0, nil
}

// get decomposes handle and returns the stored value. ok is false and err is
// nil if handle is 0 (the null sentinel, not an error). ok is false and err
// is an *InvalidHandleError if handle's row or index falls outside the
// store's current bounds — a handle this store never issued, since every
// handle Add returns stays within bounds by construction (see errors.go).
func (s *store[V]) get(ctx context.Context, handle uint64) (v V, ok bool, err error) {
	if handle == 0 {
		return v, false, nil
	}
	row, index := s.variant.unpackHandle(handle)

	if err := s.broker.acquireRead(ctx); err != nil {
		return v, false, err
	}
	defer s.broker.releaseRead()

	st := s.state.Load()
	if row >= uint64(len(st.rows)) {
		return v, false, &InvalidHandleError{Handle: handle, Row: row, Index: uint32(index)}
	}
	r := st.rows[row].ptr.Load()
	if r == nil {
		return v, false, &InvalidHandleError{Handle: handle, Row: row, Index: uint32(index)}
	}

	if err := r.lock.acquireRead(ctx); err != nil {
		return v, false, err
	}
	defer r.lock.releaseRead()

	if index < 0 || index >= r.fill {
		return v, false, &InvalidHandleError{Handle: handle, Row: row, Index: uint32(index)}
	}
	return r.values[index], true, nil
}
