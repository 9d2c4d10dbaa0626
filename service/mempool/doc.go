// Package mempool implements a fixed-block-size allocator backed by
// growable slabs. Allocations are exchanged as opaque handles tagged with
// pool identity, so invalid and double frees are detected instead of
// silently corrupting the free list. Growth is bounded: exhaustion is an
// explicit, fallible outcome.
package mempool
