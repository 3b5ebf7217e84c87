package bptree

import (
	"sync"

	"github.com/google/uuid"
)

// Tree is a root pointer plus the tree-wide reader-writer lock used in
// coarse locking mode, and the registry of live cursors that split/merge
// must fix up when they shift cells between pages.
type Tree struct {
	id          uuid.UUID
	pager       *Pager
	root        uint32
	granularity LockGranularity

	coarseLock sync.RWMutex

	cursorsMu sync.Mutex
	cursors   map[*Cursor]struct{}
}

// New creates an empty tree: a single empty leaf page as root.
func New(cfg Config) *Tree {
	pager := newPager(cfg)
	rootPage := pager.newPage(KindLeaf)

	t := &Tree{
		id:          uuid.New(),
		pager:       pager,
		root:        rootPage.PageIndex,
		granularity: cfg.LockGranularity,
		cursors:     make(map[*Cursor]struct{}),
	}
	log.WithFields(logFields(t)).Debug("tree: created empty")
	return t
}

// CreateTree builds a tree bottom-up from size pre-sorted, unique
// (keys[i], values[i]) pairs. Unsorted or duplicate input is undefined
// behavior (spec's UnsortedBulkInput non-goal).
func CreateTree(cfg Config, keys, values []uint64, size int) *Tree {
	pager := newPager(cfg)
	var root uint32
	if size == 0 {
		root = pager.newPage(KindLeaf).PageIndex
	} else {
		root = bulkBuild(pager, keys[:size], values[:size], true)
	}

	t := &Tree{
		id:          uuid.New(),
		pager:       pager,
		root:        root,
		granularity: cfg.LockGranularity,
		cursors:     make(map[*Cursor]struct{}),
	}
	log.WithFields(logFields(t)).WithField("entries", size).Debug("tree: bulk built")
	return t
}

// ID returns the tree's unique identifier, included in the tree's
// construction log line so concurrent trees in the same process are
// distinguishable there.
func (t *Tree) ID() uuid.UUID { return t.id }

// Depth reports the number of internal levels above the tree's leaves, by
// descending the leftmost spine. This is a read-only diagnostic, not part
// of the balancing algorithm; the tree's depth only ever grows (spec.md's
// Non-goals keep root-collapse out of scope), except that removing the last
// entry turns the root back into an empty Leaf (depth 0), so this is cheap
// to trust between structural mutations.
func (t *Tree) Depth() uint8 {
	var d uint8
	page := t.pager.getReadPage(t.root)
	for page.Kind != KindLeaf {
		_, child := page.readCellAtSlot(0)
		next := t.pager.getReadPage(uint32(child))
		t.pager.releaseRead(page)
		page = next
		d++
	}
	t.pager.releaseRead(page)
	return d
}

// CreateCursor creates a cursor against the tree. Under coarse locking,
// this takes the tree lock in write mode for write cursors and read mode
// otherwise, held until DestroyCursor.
func (t *Tree) CreateCursor(write bool) *Cursor {
	if t.granularity == LockCoarse {
		if write {
			t.coarseLock.Lock()
		} else {
			t.coarseLock.RLock()
		}
	}

	c := &Cursor{tree: t, Write: write}
	t.cursorsMu.Lock()
	t.cursors[c] = struct{}{}
	t.cursorsMu.Unlock()
	return c
}

// DestroyCursor releases a cursor created by CreateCursor, including the
// tree lock it may be holding under coarse locking.
func (t *Tree) DestroyCursor(c *Cursor) {
	t.cursorsMu.Lock()
	delete(t.cursors, c)
	t.cursorsMu.Unlock()

	if t.granularity == LockCoarse {
		if c.Write {
			t.coarseLock.Unlock()
		} else {
			t.coarseLock.RUnlock()
		}
	}
}

// WithCursor creates a cursor, runs fn, and always destroys the cursor
// afterwards — the shape the original source's runner/test programs used
// by pairing a create/destroy call around each individual operation,
// lifted here into a reusable helper for callers that don't need a cursor
// to outlive one operation.
func (t *Tree) WithCursor(write bool, fn func(c *Cursor)) {
	c := t.CreateCursor(write)
	defer t.DestroyCursor(c)
	fn(c)
}

// Get is a convenience wrapper for the common point-lookup case.
func (t *Tree) Get(key uint64) (value uint64, found bool) {
	t.WithCursor(false, func(c *Cursor) {
		found = c.MoveTo(key)
		if found {
			_, value, _ = c.ReadData()
		}
	})
	return value, found
}

// Insert is a convenience wrapper that moves a write cursor to key and
// inserts or overwrites it.
func (t *Tree) Insert(key, value uint64) {
	t.WithCursor(true, func(c *Cursor) {
		c.MoveTo(key)
		c.Insert(key, value)
	})
}

// Remove is a convenience wrapper that moves a write cursor to key and
// removes it if present. It reports whether the key was found.
func (t *Tree) Remove(key uint64) bool {
	var removed bool
	t.WithCursor(true, func(c *Cursor) {
		if c.MoveTo(key) {
			removed = c.Remove()
		}
	})
	return removed
}

// canGrowAllCursors reports whether every currently registered cursor has
// room for one more path entry. A root split grows every live cursor's
// depth by one (not just the acting cursor's), so the capacity check must
// cover the whole registry before any of them are mutated.
func (t *Tree) canGrowAllCursors() bool {
	t.cursorsMu.Lock()
	defer t.cursorsMu.Unlock()
	for cur := range t.cursors {
		if cur.Depth+1 >= MaxTreeDepth {
			return false
		}
	}
	return true
}

// growAllCursorsForRootSplit adjusts every live cursor after the root page
// rootIdx has been rewritten as an Internal page over two new children,
// left and right, formed by splitting the old root's slots at midSlot
// (slots before midSlot went to left, the rest to right).
//
// Each cursor's depth-0 slot index described a position in the old root's
// slot array; that same index tells us whether the cursor belongs under
// left or right now, exactly as it does for the cursor driving the split.
// Deeper path entries are unaffected by this split and are simply shifted
// down to make room for the new root level.
func (t *Tree) growAllCursorsForRootSplit(rootIdx, leftIdx, rightIdx uint32, midSlot uint16) {
	t.cursorsMu.Lock()
	defer t.cursorsMu.Unlock()

	for cur := range t.cursors {
		oldSlot0 := cur.SlotIdx[0]

		copy(cur.Path[1:cur.Depth+1], cur.Path[0:cur.Depth])
		copy(cur.SlotIdx[1:cur.Depth+1], cur.SlotIdx[0:cur.Depth])
		cur.Depth++

		cur.Path[0] = rootIdx
		cur.SlotIdx[0] = 0
		cur.Path[1] = leftIdx

		if oldSlot0 >= midSlot {
			cur.SlotIdx[0] = 1
			cur.Path[1] = rightIdx
			cur.SlotIdx[1] = oldSlot0 - midSlot
		}
	}
}

// fixupCursorsOnSlotRemoval adjusts every live cursor after slot removedSlot
// was deleted (with later slots shifted left) from the page at pageIdx,
// depth. A cursor sitting past the removed slot needs its own slot index
// decremented to keep pointing at the same entry.
func (t *Tree) fixupCursorsOnSlotRemoval(pageIdx uint32, depth uint8, removedSlot uint16) {
	t.cursorsMu.Lock()
	defer t.cursorsMu.Unlock()
	for cur := range t.cursors {
		if cur.Depth < depth || cur.Path[depth] != pageIdx {
			continue
		}
		if cur.SlotIdx[depth] > removedSlot {
			cur.SlotIdx[depth]--
		}
	}
}

// fixupCursorsOnMerge adjusts every live cursor after the page at oldRight
// was absorbed into survivorIdx at depth (survivor's slots [0,leftOldNSlots)
// were already there; oldRight's slots now follow at
// [leftOldNSlots,leftOldNSlots+oldRight.NSlots)). Any cursor positioned on
// oldRight is repointed at survivorIdx with its slot index offset by
// leftOldNSlots, and — since oldRight's own separator in the parent is
// about to be removed — its parent-level slot index is pinned to
// leftSlotInParent, the surviving separator's position.
func (t *Tree) fixupCursorsOnMerge(depth uint8, oldRight, survivorIdx uint32, leftOldNSlots uint16, leftSlotInParent uint16) {
	t.cursorsMu.Lock()
	defer t.cursorsMu.Unlock()
	for cur := range t.cursors {
		if cur.Depth < depth || cur.Path[depth] != oldRight {
			continue
		}
		cur.Path[depth] = survivorIdx
		cur.SlotIdx[depth] += leftOldNSlots
		if depth > 0 {
			cur.SlotIdx[depth-1] = leftSlotInParent
		}
	}
}

func logFields(t *Tree) map[string]interface{} {
	return map[string]interface{}{"tree": t.id.String()}
}
