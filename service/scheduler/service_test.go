package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/viant/gently/runtime/task"
	"github.com/viant/gently/service/channel"
	"github.com/viant/gently/service/journal"
)

func newStarted(t *testing.T, options ...Option) *Service {
	t.Helper()
	s, err := New(options...)
	assert.NoError(t, err)
	assert.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Shutdown)
	return s
}

func TestSchedulerRunsTasksToCompletion(t *testing.T) {
	s := newStarted(t, WithWorkers(4), WithName("completion"))

	const count = 50
	var executed atomic.Int64
	for i := 0; i < count; i++ {
		err := s.Spawn(task.New("work", func(ctx context.Context) task.Signal {
			executed.Add(1)
			return task.Done()
		}))
		assert.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.AwaitAll(ctx))

	stats := s.Stats()
	assert.Equal(t, int64(count), executed.Load())
	assert.Equal(t, count, stats.Created)
	assert.Equal(t, count, stats.Completed)
	assert.Equal(t, 0, stats.Active)
	assert.Equal(t, 4, stats.Workers)
}

func TestSchedulerConcurrentSpawnLosesNoTask(t *testing.T) {
	s := newStarted(t, WithWorkers(8), WithName("concurrent-spawn"))

	const spawners = 10
	const perSpawner = 40
	var finished atomic.Int64

	var wg sync.WaitGroup
	wg.Add(spawners)
	for i := 0; i < spawners; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perSpawner; j++ {
				err := s.Spawn(task.New("spawned", func(ctx context.Context) task.Signal {
					finished.Add(1)
					return task.Done()
				}))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.AwaitAll(ctx))

	stats := s.Stats()
	assert.Equal(t, spawners*perSpawner, stats.Created)
	assert.Equal(t, stats.Created, stats.Completed+stats.Failed)
	assert.Equal(t, int64(spawners*perSpawner), finished.Load())
}

func TestSchedulerTaskFailureIsContained(t *testing.T) {
	s := newStarted(t, WithWorkers(2), WithName("failure"))

	assert.NoError(t, s.Spawn(task.New("panics", func(ctx context.Context) task.Signal {
		panic("unhandled")
	})))
	assert.NoError(t, s.Spawn(task.New("fails", func(ctx context.Context) task.Signal {
		return task.Fail(errors.New("expected"))
	})))
	assert.NoError(t, s.Spawn(task.New("succeeds", func(ctx context.Context) task.Signal {
		return task.Done()
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.AwaitAll(ctx))

	stats := s.Stats()
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 0, stats.Active)
}

func TestSchedulerYieldIsFair(t *testing.T) {
	s, err := New(WithWorkers(1), WithName("fairness"))
	assert.NoError(t, err)
	t.Cleanup(s.Shutdown)

	var order []string
	var mu sync.Mutex
	yields := 0

	// The first task yields twice; with strict FIFO the second task runs in
	// between instead of starving.
	assert.NoError(t, s.Spawn(task.New("yielder", func(ctx context.Context) task.Signal {
		mu.Lock()
		order = append(order, "yielder")
		mu.Unlock()
		yields++
		if yields < 3 {
			return task.Yield()
		}
		return task.Done()
	})))
	assert.NoError(t, s.Spawn(task.New("second", func(ctx context.Context) task.Signal {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
		return task.Done()
	})))

	// Both tasks are queued before any worker starts, so the dequeue order
	// is deterministic.
	assert.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.AwaitAll(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"yielder", "second", "yielder", "yielder"}, order)
}

func TestSchedulerSleepFreesWorker(t *testing.T) {
	s := newStarted(t, WithWorkers(1), WithName("sleep"))

	slept := false
	var completedWhileSleeping atomic.Bool

	assert.NoError(t, s.Spawn(task.New("sleeper", func(ctx context.Context) task.Signal {
		if !slept {
			slept = true
			return task.Sleep(150 * time.Millisecond)
		}
		// With one worker this only runs if the sleeping task released it.
		assert.True(t, completedWhileSleeping.Load())
		return task.Done()
	})))
	assert.NoError(t, s.Spawn(task.New("quick", func(ctx context.Context) task.Signal {
		completedWhileSleeping.Store(true)
		return task.Done()
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.AwaitAll(ctx))
	assert.True(t, completedWhileSleeping.Load())
	assert.Equal(t, 2, s.Stats().Completed)
}

func TestSchedulerShutdownDropsQueuedTasks(t *testing.T) {
	s, err := New(WithWorkers(1), WithName("shutdown-drop"))
	assert.NoError(t, err)
	// Not started: spawned tasks stay queued.

	released := 0
	var mu sync.Mutex
	for i := 0; i < 5; i++ {
		err := s.Spawn(task.New("doomed", func(ctx context.Context) task.Signal {
			return task.Done()
		}, task.WithCleanup(func() {
			mu.Lock()
			released++
			mu.Unlock()
		})))
		assert.NoError(t, err)
	}

	s.Shutdown()
	s.Shutdown() // idempotent

	mu.Lock()
	assert.Equal(t, 5, released)
	mu.Unlock()

	stats := s.Stats()
	assert.Equal(t, 5, stats.Dropped)
	assert.Equal(t, 0, stats.Completed)
	assert.Equal(t, 0, stats.Active)

	// Spawn after shutdown fails.
	err = s.Spawn(task.New("late", func(ctx context.Context) task.Signal {
		return task.Done()
	}))
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestSchedulerShutdownStopsSleepingTasks(t *testing.T) {
	s := newStarted(t, WithWorkers(1), WithName("shutdown-sleep"))

	released := make(chan struct{}, 1)
	assert.NoError(t, s.Spawn(task.New("sleeper", func(ctx context.Context) task.Signal {
		return task.Sleep(10 * time.Second)
	}, task.WithCleanup(func() {
		released <- struct{}{}
	}))))

	// Give the worker a moment to park the task on its timer.
	time.Sleep(50 * time.Millisecond)
	s.Shutdown()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("suspended task was not released on shutdown")
	}
	assert.Equal(t, 1, s.Stats().Dropped)
}

func TestSchedulerAwaitAllHonorsContext(t *testing.T) {
	s := newStarted(t, WithWorkers(1), WithName("await-ctx"))

	assert.NoError(t, s.Spawn(task.New("slow", func(ctx context.Context) task.Signal {
		return task.Sleep(5 * time.Second)
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, s.AwaitAll(ctx))
}

func TestSchedulerJournalRecordsLifecycle(t *testing.T) {
	j := journal.New("mem://localhost/gently/scheduler")
	s := newStarted(t, WithWorkers(2), WithName("journaled"), WithJournal(j))

	assert.NoError(t, s.Spawn(task.New("ok", func(ctx context.Context) task.Signal {
		return task.Done()
	})))
	assert.NoError(t, s.Spawn(task.New("bad", func(ctx context.Context) task.Signal {
		return task.Fail(errors.New("broken"))
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.AwaitAll(ctx))

	events := map[string]int{}
	for _, entry := range j.Entries() {
		events[entry.Event]++
	}
	assert.Equal(t, 2, events[journal.EventSpawned])
	assert.Equal(t, 1, events[journal.EventCompleted])
	assert.Equal(t, 1, events[journal.EventFailed])
}

func TestSchedulerFanInThroughChannel(t *testing.T) {
	s := newStarted(t, WithWorkers(4), WithName("fan-in"))

	const count = 100
	ch := channel.New[int](10)
	for i := 0; i < count; i++ {
		index := i
		assert.NoError(t, s.Spawn(task.New("producer", func(ctx context.Context) task.Signal {
			if err := ch.TrySend(index); err != nil {
				// Channel at capacity: give the consumers room and retry.
				return task.Yield()
			}
			return task.Done()
		})))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seen := make(map[int]bool)
	for len(seen) < count {
		value, err := ch.Receive(ctx)
		assert.NoError(t, err)
		assert.False(t, seen[value])
		seen[value] = true
	}

	assert.NoError(t, s.AwaitAll(ctx))
	assert.Equal(t, count, s.Stats().Completed)

	ch.Close()
	_, err := ch.Receive(ctx)
	assert.ErrorIs(t, err, channel.ErrClosed)
}

func TestSchedulerConfigValidation(t *testing.T) {
	_, err := New(WithWorkers(0))
	assert.Error(t, err)
}
