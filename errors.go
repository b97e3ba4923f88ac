package handex

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by store operations. Use errors.Is to test for
// them. Invalid handles are reported by the concrete *InvalidHandleError
// below, reachable via errors.As.
var (
	// ErrOutOfCapacity is returned by Add when bit width is already at its
	// maximum and every candidate row is full: on a Short store the primary
	// row plus all three alternate rows, on a Wide store the primary row.
	ErrOutOfCapacity = errors.New("handex: out of capacity")

	// ErrLockTimeout is returned when a row or storage lock could not be
	// acquired before the caller's context deadline.
	ErrLockTimeout = errors.New("handex: lock acquisition timed out")

	// ErrEncodingFailure is returned when a value's Encoder panics. The
	// store recovers the panic and surfaces it as this error rather than
	// crashing.
	ErrEncodingFailure = errors.New("handex: value could not be encoded")
)

// InvalidHandleError reports that Get was called with a handle whose row
// exceeds the current row count, or whose index exceeds that row's fill.
// Under the store's invariants a handle returned by Add never lands here;
// seeing this error means the handle did not originate from this store (or
// from an older incarnation of it after a process restart).
type InvalidHandleError struct {
	Handle uint64
	Row    uint64
	Index  uint32
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("handex: invalid handle %#x (row %d, index %d)", e.Handle, e.Row, e.Index)
}

// encodingFailure wraps a recovered panic from an Encoder into
// ErrEncodingFailure via fmt.Errorf's %w. The panic value itself is only
// formatted into the message text; it is not reachable through Unwrap.
func encodingFailure(recovered any) error {
	return fmt.Errorf("%w: %v", ErrEncodingFailure, recovered)
}
