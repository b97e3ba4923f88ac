package handex

import "context"

// enlargeVertical doubles the row vector and increments bit width,
// preserving every previously issued handle: an element only moves if its
// cached H32 has the newly-significant bit set, and when it moves it lands
// at the *same slot index* in the destination row. That index identity is
// what keeps (row, index) — and therefore the packed handle — valid for
// values that stay, while values that move get a new row number but keep
// their old index, so any handle computed before this call still resolves.
//
// The broker's exclusive write-access means no enlargement runs
// concurrently with another. The only guard below is the variant's maximum
// bit width: a caller that observed an older bit width (a stale read, or a
// second caller losing a race to be first here) still grows the store by
// one more bit.
func (s *store[V]) enlargeVertical(ctx context.Context) error {
	if err := s.broker.acquireWrite(ctx); err != nil {
		return err
	}
	defer s.broker.releaseWrite()

	old := s.state.Load()
	if old.bitWidth >= s.variant.maxBitWidth {
		return nil
	}

	newBitWidth := old.bitWidth + 1
	newHashMask := old.hashMask*2 + 1
	oldRowCount := len(old.rows)
	newRowCount := oldRowCount * 2
	splitBit := uint32(1) << uint(old.bitWidth)

	newRows := make([]*rowSlot[V], newRowCount)
	copy(newRows, old.rows)
	for i := oldRowCount; i < newRowCount; i++ {
		newRows[i] = &rowSlot[V]{}
	}

	for r := 0; r < oldRowCount; r++ {
		src := old.rows[r].ptr.Load()
		if src == nil {
			continue
		}
		s.splitRow(src, uint64(r), splitBit, newRows, newBitWidth)
	}

	s.state.Store(&storeState[V]{
		bitWidth: newBitWidth,
		hashMask: newHashMask,
		rows:     newRows,
	})
	s.logger.verticalGrow(newBitWidth, newRowCount)
	return nil
}

// splitRow walks one old row's occupied slots, moving every entry whose
// cached hash has splitBit set into the new row at the same index, and
// recording both the vacated source index and any destination indices it
// skipped over as free (reusable) slots.
func (s *store[V]) splitRow(src *row[V], srcRowIdx uint64, splitBit uint32, newRows []*rowSlot[V], newBitWidth int) {
	destRowIdx := srcRowIdx | uint64(splitBit)
	var dest *row[V]

	var zero V
	for i := int32(0); i < src.fill; i++ {
		if src.hashes[i]&splitBit == 0 {
			continue // stays at (srcRowIdx, i)
		}
		if dest == nil {
			dest = s.getOrCreateRowLocked(newRows[destRowIdx], newBitWidth)
		}
		s.placeAtIndex(dest, i, src.values[i], src.signatures[i], src.hashes[i], newBitWidth)

		src.values[i] = zero
		src.signatures[i] = 0
		src.hashes[i] = 0
		src.free = append(src.free, i)
	}
}

// placeAtIndex writes an entry into dest at an exact index, growing dest's
// capacity if needed and pre-populating dest's free list with any indices
// between its previous fill and index that were skipped over — those are
// genuine holes, not yet occupied, and must be available for reuse by a
// later Add rather than silently wasted.
func (s *store[V]) placeAtIndex(dest *row[V], index int32, v V, sig byte, hash uint32, bitWidth int) {
	threshold := s.variant.rowThreshold(bitWidth)
	if index >= dest.capacity() {
		dest.growCapacityTo(index+1, threshold)
	}
	if index >= dest.fill {
		for j := dest.fill; j < index; j++ {
			dest.free = append(dest.free, j)
		}
		dest.fill = index + 1
	}
	dest.values[index] = v
	dest.signatures[index] = sig
	dest.hashes[index] = hash
}
