package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/trendrunner/engine"
)

func snapWithPrice(p float64) engine.Snapshot {
	return engine.Snapshot{Ready: true, LastPrice: p}
}

func TestParseOverflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Overflow
	}{
		{"", DropOldest},
		{"drop-oldest", DropOldest},
		{"drop-newest", DropNewest},
		{"block", Block},
	}
	for _, tt := range tests {
		got, err := ParseOverflow(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		if tt.in != "" {
			assert.Equal(t, tt.in, got.String())
		}
	}

	_, err := ParseOverflow("spill")
	assert.Error(t, err)
}

func TestQueueDropOldest(t *testing.T) {
	t.Parallel()

	q := NewQueue(2, DropOldest)
	assert.False(t, q.Push(snapWithPrice(1)))
	assert.False(t, q.Push(snapWithPrice(2)))
	assert.True(t, q.Push(snapWithPrice(3)))

	assert.Equal(t, int64(1), q.Dropped())
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2.0, (<-q.C()).LastPrice)
	assert.Equal(t, 3.0, (<-q.C()).LastPrice)
}

func TestQueueDropNewest(t *testing.T) {
	t.Parallel()

	q := NewQueue(2, DropNewest)
	q.Push(snapWithPrice(1))
	q.Push(snapWithPrice(2))
	assert.True(t, q.Push(snapWithPrice(3)))

	assert.Equal(t, int64(1), q.Dropped())
	assert.Equal(t, 1.0, (<-q.C()).LastPrice)
	assert.Equal(t, 2.0, (<-q.C()).LastPrice)
}

func TestQueueBlockWaitsForRoom(t *testing.T) {
	t.Parallel()

	q := NewQueue(1, Block)
	q.Push(snapWithPrice(1))

	pushed := make(chan bool)
	go func() { pushed <- q.Push(snapWithPrice(2)) }()

	select {
	case <-pushed:
		t.Fatal("push should block while the queue is full")
	case <-time.After(20 * time.Millisecond):
	}

	assert.Equal(t, 1.0, (<-q.C()).LastPrice)
	assert.False(t, <-pushed)
	assert.Equal(t, 2.0, (<-q.C()).LastPrice)
	assert.Zero(t, q.Dropped())
}

func TestQueueCloseReleasesBlockedPush(t *testing.T) {
	t.Parallel()

	q := NewQueue(1, Block)
	q.Push(snapWithPrice(1))

	done := make(chan struct{})
	go func() {
		q.Push(snapWithPrice(2))
		close(done)
	}()

	q.Close()
	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("blocked push not released by Close")
	}

	// Queued snapshots survive Close; new ones are discarded.
	assert.False(t, q.Push(snapWithPrice(3)))
	assert.Equal(t, 1.0, (<-q.C()).LastPrice)
	assert.Zero(t, q.Len())
}

func TestNewQueueMinimumSize(t *testing.T) {
	t.Parallel()

	q := NewQueue(0, DropNewest)
	assert.False(t, q.Push(snapWithPrice(1)))
	assert.True(t, q.Push(snapWithPrice(2)))
}
