package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsScrapeAndDiscoveryTasks(t *testing.T) {
	var scrapes, discoveries atomic.Int32
	done := make(chan struct{}, 2)

	p := NewPool(Handlers{
		Scrape: func(ctx context.Context, jobID uuid.UUID) error {
			scrapes.Add(1)
			done <- struct{}{}
			return nil
		},
		Discovery: func(ctx context.Context, discoveryID uuid.UUID) error {
			discoveries.Add(1)
			done <- struct{}{}
			return nil
		},
	}, 2, time.Minute)
	p.Start()
	defer p.Stop()

	require.NoError(t, p.EnqueueScrape(context.Background(), ScrapeTask{JobID: uuid.New()}))
	require.NoError(t, p.EnqueueDiscovery(context.Background(), DiscoveryTask{DiscoveryID: uuid.New()}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("task did not run")
		}
	}
	assert.Equal(t, int32(1), scrapes.Load())
	assert.Equal(t, int32(1), discoveries.Load())
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const workers = 3
	var (
		mu      sync.Mutex
		active  int
		peak    int
		release = make(chan struct{})
	)
	done := make(chan struct{}, 10)

	p := NewPool(Handlers{
		Scrape: func(ctx context.Context, jobID uuid.UUID) error {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			<-release

			mu.Lock()
			active--
			mu.Unlock()
			done <- struct{}{}
			return nil
		},
	}, workers, time.Minute)
	p.Start()
	defer p.Stop()

	for i := 0; i < 10; i++ {
		require.NoError(t, p.EnqueueScrape(context.Background(), ScrapeTask{JobID: uuid.New()}))
	}
	// Let the workers pick up their first tasks before opening the gate.
	time.Sleep(100 * time.Millisecond)
	close(release)

	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("task did not finish")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, workers)
	assert.Equal(t, workers, peak, "all workers should have been busy")
}

func TestPoolJobTimeout(t *testing.T) {
	timedOut := make(chan bool, 1)

	p := NewPool(Handlers{
		Scrape: func(ctx context.Context, jobID uuid.UUID) error {
			select {
			case <-ctx.Done():
				timedOut <- true
				return ctx.Err()
			case <-time.After(5 * time.Second):
				timedOut <- false
				return nil
			}
		},
	}, 1, 50*time.Millisecond)
	p.Start()
	defer p.Stop()

	require.NoError(t, p.EnqueueScrape(context.Background(), ScrapeTask{JobID: uuid.New()}))

	select {
	case v := <-timedOut:
		assert.True(t, v, "handler context should expire at the job timeout")
	case <-time.After(5 * time.Second):
		t.Fatal("handler never observed the timeout")
	}
}

func TestPoolEnqueueAfterStop(t *testing.T) {
	p := NewPool(Handlers{
		Scrape: func(ctx context.Context, jobID uuid.UUID) error { return nil },
	}, 1, time.Minute)
	p.Start()
	p.Stop()

	err := p.EnqueueScrape(context.Background(), ScrapeTask{JobID: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueClosed)
}
