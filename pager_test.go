package bptree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPagerAllocatesDistinctPages(t *testing.T) {
	pg := newPager(DefaultConfig())
	a := pg.newPage(KindLeaf)
	b := pg.newPage(KindLeaf)
	require.NotEqual(t, a.PageIndex, b.PageIndex)
}

func TestPagerFreelistReusesFreedPage(t *testing.T) {
	pg := newPager(DefaultConfig())
	a := pg.newPage(KindLeaf)
	idx := a.PageIndex
	pg.freePage(idx)

	reused := pg.newPage(KindLeaf)
	require.Equal(t, idx, reused.PageIndex, "freed page should be recycled before extending")
	require.Equal(t, KindLeaf, reused.Kind)
	require.Equal(t, uint16(0), reused.NSlots)
}

func TestPagerFreelistIsLastInFirstOut(t *testing.T) {
	pg := newPager(DefaultConfig())
	a := pg.newPage(KindLeaf)
	b := pg.newPage(KindLeaf)
	pg.freePage(a.PageIndex)
	pg.freePage(b.PageIndex)

	first := pg.newPage(KindLeaf)
	second := pg.newPage(KindLeaf)
	require.Equal(t, b.PageIndex, first.PageIndex)
	require.Equal(t, a.PageIndex, second.PageIndex)
}

func TestPagerMaxPagesPanicsWhenExhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPages = 1
	pg := newPager(cfg)
	pg.newPage(KindLeaf)

	require.Panics(t, func() { pg.newPage(KindLeaf) })
}

func TestPagerPerPageLockingRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LockGranularity = LockPerPage
	pg := newPager(cfg)
	p := pg.newPage(KindLeaf)

	got := pg.getWritePage(p.PageIndex)
	require.Same(t, p, got)
	pg.releaseWrite(got)

	got = pg.getReadPage(p.PageIndex)
	require.Same(t, p, got)
	pg.releaseRead(got)
}
