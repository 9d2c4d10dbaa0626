// Package channel provides a bounded blocking FIFO queue used for value
// exchange between concurrently executing tasks. Close semantics follow the
// drain-then-EOF convention: items enqueued before Close are always
// delivered, after which Receive reports ErrClosed.
package channel
