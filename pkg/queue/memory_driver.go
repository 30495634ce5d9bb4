package queue

import (
	"context"
	"errors"
)

// MemoryDriver is a channel-backed driver for single-process deployments
// and tests.
type MemoryDriver struct {
	ch     chan []byte
	done   chan struct{}
	closed bool
}

// NewMemoryDriver creates a driver buffering up to size envelopes.
func NewMemoryDriver(size int) *MemoryDriver {
	if size <= 0 {
		size = 256
	}
	return &MemoryDriver{
		ch:   make(chan []byte, size),
		done: make(chan struct{}),
	}
}

func (d *MemoryDriver) Push(ctx context.Context, raw []byte) error {
	select {
	case d.ch <- raw:
		return nil
	case <-d.done:
		return errors.New("queue: driver closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case raw := <-d.ch:
		return raw, nil
	case <-d.done:
		return nil, errors.New("queue: driver closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *MemoryDriver) Close() error {
	if !d.closed {
		d.closed = true
		close(d.done)
	}
	return nil
}
