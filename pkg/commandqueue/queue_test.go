package commandqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommandQueue_BasicEnqueue(t *testing.T) {
	cq := New()
	defer cq.Close()

	executed := false
	task := func(ctx context.Context) (interface{}, error) {
		executed = true
		return "result", nil
	}

	result, err := cq.Enqueue("test", task)

	assert.NoError(t, err)
	assert.Equal(t, "result", result)
	assert.True(t, executed)
}

func TestCommandQueue_TaskError(t *testing.T) {
	cq := New()
	defer cq.Close()

	expectedErr := errors.New("task failed")
	task := func(ctx context.Context) (interface{}, error) {
		return nil, expectedErr
	}

	result, err := cq.Enqueue("test", task)

	assert.Error(t, err)
	assert.Equal(t, expectedErr, err)
	assert.Nil(t, result)
}

func TestCommandQueue_SerialExecution(t *testing.T) {
	cq := New()
	defer cq.Close()
	cq.InitLane("serial", 1)

	var running int
	var maxRunning int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := func(ctx context.Context) (interface{}, error) {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil, nil
			}
			_, _ = cq.Enqueue("serial", task)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxRunning, "a concurrency-1 lane must never overlap tasks")
}

func TestCommandQueue_ConcurrentLanes(t *testing.T) {
	cq := New()
	defer cq.Close()

	started := make(chan string, 2)
	release := make(chan struct{})

	var wg sync.WaitGroup
	for _, lane := range []string{"lane-a", "lane-b"} {
		lane := lane
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cq.Enqueue(lane, func(ctx context.Context) (interface{}, error) {
				started <- lane
				<-release
				return nil, nil
			})
		}()
	}

	// Both lanes make progress at the same time
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("lanes did not run concurrently")
		}
	}
	close(release)
	wg.Wait()
}

func TestCommandQueue_InitLaneConcurrency(t *testing.T) {
	cq := New()
	defer cq.Close()
	cq.InitLane("wide", 3)

	var running int
	var maxRunning int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cq.Enqueue("wide", func(ctx context.Context) (interface{}, error) {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil, nil
			})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, maxRunning, 3)
	assert.Greater(t, maxRunning, 1)
}

func TestCommandQueue_ContextValuePropagation(t *testing.T) {
	cq := New()
	defer cq.Close()

	type key string
	ctx := context.WithValue(context.Background(), key("trace"), "abc")

	value, err := cq.EnqueueWithContext(ctx, "ctx", func(taskCtx context.Context) (interface{}, error) {
		return taskCtx.Value(key("trace")), nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "abc", value)
}

func TestCommandQueue_CloseStopsTasks(t *testing.T) {
	cq := New()

	started := make(chan struct{})
	finished := make(chan error, 1)

	go func() {
		_, err := cq.Enqueue("slow", func(ctx context.Context) (interface{}, error) {
			close(started)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return nil, nil
			}
		})
		finished <- err
	}()

	<-started
	assert.NoError(t, cq.Close())

	select {
	case err := <-finished:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("running task was not cancelled on Close")
	}
}

func TestCommandQueue_QueueSizeAndRunning(t *testing.T) {
	cq := New()
	defer cq.Close()

	assert.Equal(t, 0, cq.GetQueueSize("missing"))
	assert.Equal(t, 0, cq.GetRunningCount("missing"))

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = cq.Enqueue("gauge", func(ctx context.Context) (interface{}, error) {
			<-release
			return nil, nil
		})
	}()

	assert.Eventually(t, func() bool {
		return cq.GetRunningCount("gauge") == 1
	}, time.Second, 5*time.Millisecond)

	close(release)
	wg.Wait()
}
