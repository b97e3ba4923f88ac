package handex

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// brokerWeight is the storage broker's total semaphore weight. Every row
// operation acquires 1 (a "read-lease"); the enlargement engine's vertical
// phase acquires the entire weight ("write-access"), which golang.org/x/sync
// only grants once every outstanding read-lease has been released. This
// turns the reader/writer gate from §4.E into a single off-the-shelf
// primitive instead of a hand-rolled readers/writer counter.
const brokerWeight = 1 << 30

// storageBroker is the process-wide gate coordinating row operations
// against whole-store vertical enlargement.
type storageBroker struct {
	sem *semaphore.Weighted
}

func newStorageBroker() *storageBroker {
	return &storageBroker{sem: semaphore.NewWeighted(brokerWeight)}
}

// acquireRead takes a read-lease for the duration of one row operation.
func (b *storageBroker) acquireRead(ctx context.Context) error {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return ErrLockTimeout
	}
	return nil
}

func (b *storageBroker) releaseRead() {
	b.sem.Release(1)
}

// acquireWrite takes exclusive write-access for a vertical enlargement; it
// only succeeds once every outstanding read-lease has drained.
func (b *storageBroker) acquireWrite(ctx context.Context) error {
	if err := b.sem.Acquire(ctx, brokerWeight); err != nil {
		return ErrLockTimeout
	}
	return nil
}

func (b *storageBroker) releaseWrite() {
	b.sem.Release(brokerWeight)
}
