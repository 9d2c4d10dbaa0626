// Package gently provides a small concurrent runtime built from four
// cooperating primitives: an exclusive-ownership data cell, a suspendable
// unit of work, a multi-worker scheduler and a bounded blocking channel,
// backed by a fixed-block memory pool.
//
// The pieces compose but do not depend on each other: tasks communicate via
// channels, coordinate shared mutable data via ownership cells, and are
// driven to completion by the scheduler. End-users typically interact with
// the runtime via the high-level Service façade exposed by this package:
//
//	srv, _ := gently.New(gently.WithWorkers(4))
//	_ = srv.Start(ctx)
//	srv.Spawn("greet", func(ctx context.Context) task.Signal {
//		fmt.Println("hello")
//		return task.Done()
//	})
//	_ = srv.AwaitAll(ctx)
//	srv.Shutdown()
//
// For more details see the individual sub-packages.
package gently
