package bptree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// assertSeparatorsMatchChildMax walks every Internal page and checks that
// each separator key equals its child subtree's actual maximum key.
func assertSeparatorsMatchChildMax(t *testing.T, tr *Tree, pageIdx uint32) uint64 {
	t.Helper()
	page := tr.pager.getReadPage(pageIdx)
	defer tr.pager.releaseRead(page)

	if page.Kind == KindLeaf {
		return page.maxKey()
	}

	var lastMax uint64
	for i := uint16(0); i < page.NSlots; i++ {
		sep, child := page.readCellAtSlot(i)
		childMax := assertSeparatorsMatchChildMax(t, tr, uint32(child))
		require.Equal(t, sep, childMax, "separator at slot %d must equal child's max key", i)
		lastMax = sep
	}
	return lastMax
}

func TestSplitKeepsSeparatorsConsistent(t *testing.T) {
	tr := New(DefaultConfig())
	for i := uint64(0); i < 3000; i++ {
		tr.Insert(i, i)
	}
	assertSeparatorsMatchChildMax(t, tr, tr.root)
}

func TestRootSplitGrowsDepthAndKeepsAllCursorsValid(t *testing.T) {
	// Per-page locking, not coarse: holding several idle cursors open across
	// Insert calls would deadlock a coarse tree-wide lock (the readers'
	// RLock never releases before Insert wants the writer's Lock).
	cfg := DefaultConfig()
	cfg.LockGranularity = LockPerPage
	tr := New(cfg)

	var cursors []*Cursor
	for i := 0; i < 4; i++ {
		cursors = append(cursors, tr.CreateCursor(false))
	}
	for _, c := range cursors {
		c.MoveTo(0)
	}

	for i := uint64(0); i < 2000; i++ {
		tr.Insert(i, i)
	}

	for _, c := range cursors {
		page := tr.pager.getReadPage(c.Path[0])
		require.Equal(t, tr.root, c.Path[0])
		require.Greater(t, c.Depth, uint8(0))
		tr.pager.releaseRead(page)
		tr.DestroyCursor(c)
	}
}

func TestInsertTriggersFreeCellSalvageBeforeGrowingPage(t *testing.T) {
	tr := New(DefaultConfig())
	for i := uint64(0); i < 50; i++ {
		tr.Insert(i, i)
	}
	for i := uint64(0); i < 50; i += 2 {
		tr.Remove(i)
	}
	for i := uint64(0); i < 50; i += 2 {
		tr.Insert(i, i*10)
	}
	for i := uint64(0); i < 50; i++ {
		v, found := tr.Get(i)
		require.True(t, found)
		if i%2 == 0 {
			require.Equal(t, i*10, v)
		} else {
			require.Equal(t, i, v)
		}
	}
}
