package bptree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBulkBuildSinglePageStaysLeafRoot(t *testing.T) {
	pg := newPager(DefaultConfig())
	keys := []uint64{1, 2, 3, 4, 5}
	values := []uint64{10, 20, 30, 40, 50}

	root := bulkBuild(pg, keys, values, true)
	page := pg.getReadPage(root)
	defer pg.releaseRead(page)

	require.Equal(t, KindLeaf, page.Kind)
	require.Equal(t, uint16(len(keys)), page.NSlots)
	for i, k := range keys {
		gotKey, gotValue := page.readCellAtSlot(uint16(i))
		require.Equal(t, k, gotKey)
		require.Equal(t, values[i], gotValue)
	}
}

func TestBulkBuildManyPagesProducesInternalRoot(t *testing.T) {
	const n = 20000
	keys := make([]uint64, n)
	values := make([]uint64, n)
	for i := range keys {
		keys[i] = uint64(i)
		values[i] = uint64(i) * 3
	}

	pg := newPager(DefaultConfig())
	root := bulkBuild(pg, keys, values, true)
	page := pg.getReadPage(root)
	require.Equal(t, KindInternal, page.Kind)
	pg.releaseRead(page)

	tr := &Tree{pager: pg, root: root, cursors: make(map[*Cursor]struct{})}
	for i, k := range keys {
		v, found := tr.Get(k)
		require.True(t, found, "key %d missing after bulk build", k)
		require.Equal(t, values[i], v)
	}
}
