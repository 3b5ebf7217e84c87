package bptree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMoveToReportsExactMatch(t *testing.T) {
	tr := New(DefaultConfig())
	tr.Insert(10, 1)
	tr.Insert(20, 2)

	tr.WithCursor(false, func(c *Cursor) {
		require.True(t, c.MoveTo(10))
		require.False(t, c.MoveTo(15))
		require.False(t, c.MoveTo(999))
	})
}

func TestReadDataErrorsWhenNotOnLeaf(t *testing.T) {
	tr := New(DefaultConfig())
	tr.WithCursor(false, func(c *Cursor) {
		c.Depth = 0
		c.Path[0] = tr.root
		internalIdx := tr.pager.newPage(KindInternal).PageIndex
		c.Path[0] = internalIdx
		_, _, err := c.ReadData()
		require.ErrorIs(t, err, ErrNotOnLeaf)
	})
}

func TestNextEntryReturnsFalseAtEnd(t *testing.T) {
	tr := New(DefaultConfig())
	tr.Insert(1, 1)
	tr.WithCursor(false, func(c *Cursor) {
		c.FirstLeaf()
		require.False(t, c.NextEntry())
	})
}
