package ownership

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUseAfterTransfer is returned by any borrow or transfer attempted after
// the cell's value has been moved out.
var ErrUseAfterTransfer = errors.New("value already transferred")

// AnonymousOwner labels cells created without an explicit owner.
const AnonymousOwner = "anonymous"

// Cell holds a value with single logical ownership. Access is serialised by
// one mutex for both shared and exclusive borrows – a deliberate
// simplicity-over-throughput choice. Once the value is transferred out the
// cell is permanently empty; it is never refilled.
type Cell[T any] struct {
	mu    sync.Mutex
	value *T
	owner string
}

// New creates a cell holding value on behalf of owner. An empty owner
// defaults to AnonymousOwner.
func New[T any](value T, owner string) *Cell[T] {
	if owner == "" {
		owner = AnonymousOwner
	}
	return &Cell[T]{value: &value, owner: owner}
}

// BorrowShared invokes fn with read access to the contained value. It
// returns ErrUseAfterTransfer once the value has been moved out.
func (c *Cell[T]) BorrowShared(fn func(value T)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil {
		return fmt.Errorf("borrow shared from %q: %w", c.owner, ErrUseAfterTransfer)
	}
	fn(*c.value)
	return nil
}

// BorrowExclusive invokes fn with mutable access to the contained value. It
// returns ErrUseAfterTransfer once the value has been moved out.
func (c *Cell[T]) BorrowExclusive(fn func(value *T)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil {
		return fmt.Errorf("borrow exclusive from %q: %w", c.owner, ErrUseAfterTransfer)
	}
	fn(c.value)
	return nil
}

// Transfer moves the value out of the cell to the caller, recording newOwner
// as the final owner label. Every later borrow or transfer fails with
// ErrUseAfterTransfer.
func (c *Cell[T]) Transfer(newOwner string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil {
		var zero T
		return zero, fmt.Errorf("transfer from %q: %w", c.owner, ErrUseAfterTransfer)
	}
	value := *c.value
	c.value = nil
	c.owner = newOwner
	return value, nil
}

// IsAvailable reports whether the cell still holds its value.
func (c *Cell[T]) IsAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value != nil
}

// Owner returns the current owner label. After a transfer it reports the
// owner the value moved to.
func (c *Cell[T]) Owner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner
}
