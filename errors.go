package bptree

import "github.com/pkg/errors"

// ErrNotOnLeaf is returned by Cursor.ReadData when the cursor's recorded
// depth does not name a Leaf page — cursor corruption the caller can still
// recover from, so it is a returned error rather than a panic.
var ErrNotOnLeaf = errors.New("bptree: cursor is not positioned on a leaf")

// newCapacityExceeded builds the fatal error raised when a tree would need
// to grow past MaxTreeDepth levels. The core has no rebalancing strategy for
// this case, so per spec.md §7 it is unrecoverable: callers are expected to
// let the panic propagate.
func newCapacityExceeded(depth uint8) error {
	return errors.Errorf("bptree: tree depth %d exceeds MaxTreeDepth=%d", depth, MaxTreeDepth)
}

// newPagerExhausted is raised when the pager's backing array cannot grow any
// further for the running process. Like CapacityExceeded, this is fatal:
// the pager's backing array is sized at init and the core has no strategy
// for recovering mid-operation.
func newPagerExhausted(cause error) error {
	if cause == nil {
		return errors.New("bptree: pager exhausted")
	}
	return errors.Wrap(cause, "bptree: pager exhausted")
}
