// Package ownership provides a single-owner container with guarded access
// and move-out transfer. Go cannot statically forbid use of a moved-from
// handle, so the cell enforces the invariant at run time: any access after
// the value has been transferred fails fast with ErrUseAfterTransfer.
package ownership
