package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	done := make(chan struct{})

	q := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.ID)
		mu.Unlock()
		close(done)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j-1", Type: "notify"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"j-1"}, seen)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})

	err := q.Enqueue(Job{ID: "j-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}

func TestQueueEnqueueAfterStop(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{Workers: 1})

	q.Start(context.Background())
	q.Stop()

	assert.NotPanics(t, func() {
		err := q.Enqueue(Job{ID: "j-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not started")
	})
}

func TestQueueEnqueueFullBuffer(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("test", func(_ context.Context, _ Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	// First job occupies the worker, second fills the buffer.
	require.NoError(t, q.Enqueue(Job{ID: "j-1"}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, q.Enqueue(Job{ID: "j-2"}))

	err := q.Enqueue(Job{ID: "j-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")
}
