package bptree

import (
	"sync"

	"github.com/flurrydb/bptree/interfaces"
	"github.com/flurrydb/bptree/storage/memstore"
)

// Pager owns the array of all pages for one tree: it allocates new pages by
// extending the backing PageStore or by popping the pager-level freelist of
// reclaimed pages, and hands out read/write page handles under the
// configured lock granularity.
type Pager struct {
	store       interfaces.PageStore
	granularity LockGranularity
	maxPages    uint32

	allocMu       sync.Mutex
	pages         []*Page
	firstFreePage uint32 // index+1; 0 means the freelist is empty
	activePages   uint32
}

// newPager creates a Pager backed by an in-memory memstore.Store.
func newPager(cfg Config) *Pager {
	return &Pager{
		store:       memstore.New(PageSize, cfg.PageCapacityHint),
		granularity: cfg.LockGranularity,
		maxPages:    cfg.MaxPages,
		pages:       make([]*Page, 0, cfg.PageCapacityHint),
	}
}

// newPage allocates a page of the given kind, either by extending the
// backing array or by recycling the head of the pager's freelist.
func (pg *Pager) newPage(kind PageKind) *Page {
	pg.allocMu.Lock()
	defer pg.allocMu.Unlock()

	var p *Page
	if pg.firstFreePage != 0 {
		idx := pg.firstFreePage - 1
		p = pg.pages[idx]
		pg.firstFreePage = uint32(p.Slots[0])
		log.WithField("page", idx).Debug("pager: reused freelist page")
	} else {
		if pg.maxPages != 0 && pg.store.Len() >= pg.maxPages {
			panic(newPagerExhausted(nil))
		}
		raw := pg.store.Extend()
		p = newPage(kind, raw.Index(), raw.Bytes())
		pg.pages = append(pg.pages, p)
		log.WithField("page", p.PageIndex).Debug("pager: extended new page")
	}

	p.reset(kind)
	pg.activePages++
	return p
}

// freePage pushes index onto the freelist: its kind becomes Free, its first
// slot encodes the prior freelist head, and it is no longer reachable from
// any live tree structure.
func (pg *Pager) freePage(index uint32) {
	pg.allocMu.Lock()
	defer pg.allocMu.Unlock()

	p := pg.pages[index]
	p.Kind = KindFree
	p.NSlots = 1
	p.Slots[0] = uint16(pg.firstFreePage)
	pg.firstFreePage = index + 1
	pg.activePages--
	log.WithField("page", index).Debug("pager: freed page")
}

// getReadPage returns the page at index, locked for reading under per-page
// granularity (a no-op under coarse granularity).
func (pg *Pager) getReadPage(index uint32) *Page {
	p := pg.pages[index]
	if pg.granularity == LockPerPage {
		p.lock.RLock()
	}
	return p
}

// getWritePage returns the page at index, locked for writing under
// per-page granularity (a no-op under coarse granularity).
func (pg *Pager) getWritePage(index uint32) *Page {
	p := pg.pages[index]
	if pg.granularity == LockPerPage {
		p.lock.Lock()
	}
	return p
}

// releaseRead releases a lock taken by getReadPage.
func (pg *Pager) releaseRead(p *Page) {
	if pg.granularity == LockPerPage {
		p.lock.RUnlock()
	}
}

// releaseWrite releases a lock taken by getWritePage.
func (pg *Pager) releaseWrite(p *Page) {
	if pg.granularity == LockPerPage {
		p.lock.Unlock()
	}
}
