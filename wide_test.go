package handex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestWideStoreAddFindGet is the smoke test covering insert, find, get, and
// the null sentinel — testable property S1.
func TestWideStoreAddFindGet(t *testing.T) {
	s := NewWide[string](StringEncoder{})

	h, err := s.Add("alpha")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if h == 0 {
		t.Fatalf("Add returned null handle for non-null value")
	}
	if got := s.Get(h); got != "alpha" {
		t.Fatalf("Get(%#x) = %q, want %q", h, got, "alpha")
	}

	found, err := s.Find("alpha")
	if err != nil || found != h {
		t.Fatalf("Find = %#x,%v, want %#x,nil", found, err, h)
	}

	ok, err := s.Contains("alpha")
	if err != nil || !ok {
		t.Fatalf("Contains = %v,%v, want true,nil", ok, err)
	}

	zeroHandle, err := s.Add("")
	if err != nil || zeroHandle != 0 {
		t.Fatalf("Add(\"\") = %#x,%v, want 0,nil", zeroHandle, err)
	}
}

// TestWideStoreDedup checks that adding the same value twice returns the
// same handle and does not double-count — testable property S2.
func TestWideStoreDedup(t *testing.T) {
	s := NewWide[string](StringEncoder{})

	h1, err := s.Add("repeat")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	h2, err := s.Add("repeat")
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("handles differ across duplicate Add: %#x != %#x", h1, h2)
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}
}

// TestWideStoreMissingFind checks that Find/Get on values/handles never
// inserted report absence rather than a stale match.
func TestWideStoreMissingFind(t *testing.T) {
	s := NewWide[string](StringEncoder{})
	s.Add("present")

	h, err := s.Find("absent")
	if err != nil || h != 0 {
		t.Fatalf("Find(absent) = %#x,%v, want 0,nil", h, err)
	}
	if got := s.Get(0xdeadbeef); got != "" {
		t.Fatalf("Get(bogus handle) = %q, want zero value", got)
	}
}

// TestWideStoreGetInvalidHandle checks that a handle whose row number
// exceeds the store's current row count surfaces an *InvalidHandleError via
// GetContext, rather than being indistinguishable from an unoccupied slot.
func TestWideStoreGetInvalidHandle(t *testing.T) {
	s := NewWide[string](StringEncoder{}, WithBitWidth(8))
	s.Add("present")

	bogus := wideVariant.packHandle(1000, 0)
	_, ok, err := s.GetContext(context.Background(), bogus)
	if ok {
		t.Fatalf("ok = true for out-of-range handle")
	}
	var invalidErr *InvalidHandleError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("err = %v, want *InvalidHandleError", err)
	}
	if invalidErr.Handle != bogus {
		t.Fatalf("InvalidHandleError.Handle = %#x, want %#x", invalidErr.Handle, bogus)
	}
}

// TestWideStoreHorizontalGrowth inserts 50 distinct values that all hash to
// the same row — more than the row's initial capacity of 32, fewer than the
// vertical threshold of 64 — forcing repeated in-place row growth without
// crossing the vertical threshold, exercising testable property S3.
func TestWideStoreHorizontalGrowth(t *testing.T) {
	s := NewWide[string](StringEncoder{}, WithBitWidth(8))
	const n = 50
	mask := s.core.state.Load().hashMask
	target, err := safeHash(s.core.encoder, "item-0")
	if err != nil {
		t.Fatalf("safeHash: %v", err)
	}
	handles := make(map[string]uint64, n)
	for i := 0; len(handles) < n; i++ {
		v := fmt.Sprintf("item-%d", i)
		fp, err := safeHash(s.core.encoder, v)
		if err != nil {
			t.Fatalf("safeHash(%q): %v", v, err)
		}
		if fp.h32&mask != target.h32&mask {
			continue
		}
		h, err := s.Add(v)
		if err != nil {
			t.Fatalf("Add(%q): %v", v, err)
		}
		handles[v] = h
	}
	for v, h := range handles {
		if got := s.Get(h); got != v {
			t.Fatalf("Get(%#x) = %q, want %q", h, got, v)
		}
	}
	if s.Count() != n {
		t.Fatalf("Count() = %d, want %d", s.Count(), n)
	}
}

// TestWideStoreVerticalGrowthPreservesHandles inserts enough values to force
// at least one vertical enlargement (bit width increase) and checks that
// every handle issued before the grow still resolves to its original value
// afterward — testable property S4 (handle stability across enlargement).
func TestWideStoreVerticalGrowthPreservesHandles(t *testing.T) {
	s := NewWide[string](StringEncoder{}, WithBitWidth(8))
	// 256 rows with a threshold of 64 each: at ~78 values per row on
	// average, some row is certain to reach the threshold.
	const n = 20000
	handles := make([]uint64, n)
	values := make([]string, n)
	for i := 0; i < n; i++ {
		v := fmt.Sprintf("value-%d", i)
		h, err := s.Add(v)
		if err != nil {
			t.Fatalf("Add(%q): %v", v, err)
		}
		handles[i] = h
		values[i] = v
	}

	if s.BitWidth() <= 8 {
		t.Fatalf("expected bit width to grow past the initial 8, got %d", s.BitWidth())
	}

	for i := 0; i < n; i++ {
		if got := s.Get(handles[i]); got != values[i] {
			t.Fatalf("after growth, Get(%#x) = %q, want %q (index %d)", handles[i], got, values[i], i)
		}
	}

	for i := 0; i < n; i++ {
		h, err := s.Find(values[i])
		if err != nil || h != handles[i] {
			t.Fatalf("Find(%q) = %#x,%v, want %#x,nil", values[i], h, err, handles[i])
		}
	}
}

// TestWideStoreRoundTripsDistinctValues inserts a batch of distinct values
// and checks that reading every issued handle back reproduces exactly the
// original set, compared with cmp.Diff so any mismatch reports a structured
// diff rather than just a boolean failure.
func TestWideStoreRoundTripsDistinctValues(t *testing.T) {
	s := NewWide[string](StringEncoder{})
	want := []string{"red", "green", "blue", "cyan", "magenta", "yellow"}

	handles := make([]uint64, len(want))
	for i, v := range want {
		h, err := s.Add(v)
		if err != nil {
			t.Fatalf("Add(%q): %v", v, err)
		}
		handles[i] = h
	}

	var got []string
	for _, h := range handles {
		got = append(got, s.Get(h))
	}

	sortedWant := append([]string(nil), want...)
	sortedGot := append([]string(nil), got...)
	sort.Strings(sortedWant)
	sort.Strings(sortedGot)
	if diff := cmp.Diff(sortedWant, sortedGot); diff != "" {
		t.Fatalf("round-tripped values mismatch (-want +got):\n%s", diff)
	}
}

// TestWideStoreConcurrentDedup has many goroutines race to Add the same
// small set of values and checks the uniqueness invariant holds regardless
// of scheduling — testable property 3 (uniqueness) under concurrency.
func TestWideStoreConcurrentDedup(t *testing.T) {
	s := NewWide[string](StringEncoder{}, WithBitWidth(8))
	values := []string{"a", "b", "c", "d", "e"}

	var wg sync.WaitGroup
	results := make([][]uint64, len(values))
	for vi, v := range values {
		results[vi] = make([]uint64, 40)
		for g := 0; g < 40; g++ {
			wg.Add(1)
			go func(vi, g int, v string) {
				defer wg.Done()
				h, err := s.Add(v)
				if err != nil {
					t.Errorf("Add(%q): %v", v, err)
					return
				}
				results[vi][g] = h
			}(vi, g, v)
		}
	}
	wg.Wait()

	for vi, v := range values {
		first := results[vi][0]
		if first == 0 {
			t.Fatalf("value %q got null handle", v)
		}
		for g, h := range results[vi] {
			if h != first {
				t.Fatalf("value %q: goroutine %d got handle %#x, want %#x", v, g, h, first)
			}
		}
	}
	if s.Count() != int64(len(values)) {
		t.Fatalf("Count() = %d, want %d", s.Count(), len(values))
	}
}
