package supervisor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rustyeddy/trendrunner/engine"
)

// Overflow decides what Push does when the queue is full.
type Overflow int

const (
	// DropOldest discards the oldest queued snapshot. Every snapshot carries
	// the engine's whole trade log, so the newest one supersedes it.
	DropOldest Overflow = iota
	// DropNewest discards the snapshot being pushed.
	DropNewest
	// Block waits for room, stalling the engine's callback.
	Block
)

func ParseOverflow(s string) (Overflow, error) {
	switch s {
	case "", "drop-oldest":
		return DropOldest, nil
	case "drop-newest":
		return DropNewest, nil
	case "block":
		return Block, nil
	default:
		return DropOldest, fmt.Errorf("unknown overflow policy %q", s)
	}
}

func (o Overflow) String() string {
	switch o {
	case DropNewest:
		return "drop-newest"
	case Block:
		return "block"
	default:
		return "drop-oldest"
	}
}

// Queue is a bounded hand-off from engine callbacks to the event loop.
// Producers may be many; the loop is the only consumer.
type Queue struct {
	ch      chan engine.Snapshot
	policy  Overflow
	mu      sync.Mutex
	dropped atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

func NewQueue(size int, policy Overflow) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{
		ch:     make(chan engine.Snapshot, size),
		policy: policy,
		done:   make(chan struct{}),
	}
}

// Push enqueues s and reports whether a snapshot was dropped to do so,
// either s itself or an older one. After Close, Push discards s and
// reports false.
func (q *Queue) Push(s engine.Snapshot) (dropped bool) {
	select {
	case <-q.done:
		return false
	default:
	}

	switch q.policy {
	case Block:
		select {
		case q.ch <- s:
		case <-q.done:
		}
		return false

	case DropNewest:
		select {
		case q.ch <- s:
			return false
		default:
			q.dropped.Add(1)
			return true
		}

	default:
		q.mu.Lock()
		defer q.mu.Unlock()
		for {
			select {
			case q.ch <- s:
				return dropped
			default:
			}
			select {
			case <-q.ch:
				q.dropped.Add(1)
				dropped = true
			default:
			}
		}
	}
}

// C is the receive side, read by the event loop.
func (q *Queue) C() <-chan engine.Snapshot { return q.ch }

// Len returns how many snapshots are waiting.
func (q *Queue) Len() int { return len(q.ch) }

// Dropped returns the number of snapshots discarded for lack of room.
func (q *Queue) Dropped() int64 { return q.dropped.Load() }

func (q *Queue) Policy() Overflow { return q.policy }

// Close releases blocked producers and makes later pushes no-ops. The
// channel itself stays open so the loop can still drain it.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}
