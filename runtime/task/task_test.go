package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskLifecycle(t *testing.T) {
	steps := 0
	aTask := New("counter", func(ctx context.Context) Signal {
		steps++
		if steps < 3 {
			return Yield()
		}
		return Done()
	})

	assert.Equal(t, StateCreated, aTask.State())
	assert.NotEmpty(t, aTask.ID())
	assert.False(t, aTask.IsDone())

	ctx := context.Background()

	signal := aTask.Resume(ctx)
	assert.False(t, signal.IsDone())
	assert.Equal(t, StateSuspended, aTask.State())

	aTask.Resume(ctx)
	signal = aTask.Resume(ctx)
	assert.True(t, signal.IsDone())
	assert.Equal(t, StateCompleted, aTask.State())
	assert.True(t, aTask.IsDone())
	assert.Equal(t, 3, steps)

	// Resuming a finished task is a no-op.
	signal = aTask.Resume(ctx)
	assert.True(t, signal.IsDone())
	assert.Equal(t, 3, steps)
}

func TestTaskFailure(t *testing.T) {
	expected := errors.New("storage offline")
	aTask := New("failing", func(ctx context.Context) Signal {
		return Fail(expected)
	})

	signal := aTask.Resume(context.Background())
	assert.True(t, signal.IsDone())
	assert.Equal(t, StateFailed, aTask.State())
	assert.Equal(t, expected, aTask.Err())
}

func TestTaskPanicRecovery(t *testing.T) {
	aTask := New("panicking", func(ctx context.Context) Signal {
		panic("boom")
	})

	signal := aTask.Resume(context.Background())
	assert.True(t, signal.IsDone())
	assert.Equal(t, StateFailed, aTask.State())
	assert.ErrorContains(t, aTask.Err(), "boom")
}

func TestTaskNilStep(t *testing.T) {
	aTask := New("empty", nil)
	assert.True(t, aTask.IsDone())
	signal := aTask.Resume(context.Background())
	assert.True(t, signal.IsDone())
}

func TestTaskSleepSignal(t *testing.T) {
	signal := Sleep(50 * time.Millisecond)
	assert.True(t, signal.IsSleep())
	assert.False(t, signal.IsDone())
	assert.Equal(t, 50*time.Millisecond, signal.Delay())
}

func TestTaskReleaseOnce(t *testing.T) {
	released := 0
	aTask := New("cleanup", func(ctx context.Context) Signal {
		return Done()
	}, WithCleanup(func() { released++ }))

	aTask.Resume(context.Background())
	aTask.Release()
	aTask.Release()
	assert.Equal(t, 1, released)
}

func TestTaskReleaseWhileSuspended(t *testing.T) {
	released := 0
	aTask := New("dropped", func(ctx context.Context) Signal {
		return Yield()
	}, WithCleanup(func() { released++ }))

	aTask.Resume(context.Background())
	assert.Equal(t, StateSuspended, aTask.State())

	// Forced teardown from a suspension point, as scheduler shutdown does.
	aTask.Release()
	assert.Equal(t, 1, released)
}
