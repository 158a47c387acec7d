package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Speshl/gorrc_pilot/internal/models"
)

var ErrQueueTimeout = errors.New("queue get timed out")

type OverflowPolicy int

const (
	// Block makes Put wait for room.
	Block OverflowPolicy = iota
	// DropOldest discards the oldest queued item to make room for the new one.
	DropOldest
)

func (p OverflowPolicy) String() string {
	switch p {
	case Block:
		return "block"
	case DropOldest:
		return "dropoldest"
	default:
		return "unknown"
	}
}

func ParsePolicy(value string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "block":
		return Block, nil
	case "dropoldest", "drop_oldest", "":
		return DropOldest, nil
	default:
		return DropOldest, fmt.Errorf("%w: unsupported queue policy %q", models.ErrConfiguration, value)
	}
}

// Queue is a bounded FIFO between two stages.
type Queue[T any] struct {
	items   chan T
	policy  OverflowPolicy
	dropped atomic.Int64
}

func NewQueue[T any](size int, policy OverflowPolicy) *Queue[T] {
	if size < 1 {
		size = 1
	}
	return &Queue[T]{
		items:  make(chan T, size),
		policy: policy,
	}
}

func (q *Queue[T]) Put(ctx context.Context, item T) error {
	if q.policy == Block {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case q.items <- item:
			return nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case q.items <- item:
			return nil
		default:
		}

		select {
		case <-q.items:
			q.dropped.Add(1)
		default:
		}
	}
}

// Get waits up to timeout for the next item. A timeout of zero or less waits
// until ctx is done.
func (q *Queue[T]) Get(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case item := <-q.items:
		return item, nil
	case <-timer:
		return zero, ErrQueueTimeout
	}
}

func (q *Queue[T]) Len() int {
	return len(q.items)
}

func (q *Queue[T]) Cap() int {
	return cap(q.items)
}

// Dropped counts the items discarded by DropOldest.
func (q *Queue[T]) Dropped() int64 {
	return q.dropped.Load()
}

func describeQueue[T any](name string, q *Queue[T]) string {
	return fmt.Sprintf("%s queue: %d/%d pending, %d dropped", name, q.Len(), q.Cap(), q.Dropped())
}
