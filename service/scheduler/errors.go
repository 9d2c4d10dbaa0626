package scheduler

import "errors"

var (
	// ErrShutdown is returned by Spawn and AwaitAll once the scheduler has
	// been shut down.
	ErrShutdown = errors.New("scheduler shut down")
)
