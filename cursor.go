package bptree

// Cursor is mutable iteration/positioning state scoped to one logical
// traversal of a tree: the path of pages from root to the current leaf, the
// slot taken within each, and whether this cursor is allowed to mutate.
type Cursor struct {
	tree *Tree

	// Path[d] is the page index visited at depth d; Path[Depth] is always
	// the current leaf.
	Path [MaxTreeDepth]uint32
	// SlotIdx[d] is the slot taken within Path[d].
	SlotIdx [MaxTreeDepth]uint16
	// Depth is the number of internal levels above the current leaf.
	Depth uint8
	// Write reports whether this cursor may insert/remove.
	Write bool
}

// currentLeafRead resolves the cursor's current leaf page, locked for reading.
func (c *Cursor) currentLeafRead() *Page {
	return c.tree.pager.getReadPage(c.Path[c.Depth])
}

// MoveTo descends from the root to the leaf that would hold key, recording
// the path taken. It returns true iff an exact match was found; regardless,
// the cursor ends positioned at the matching slot or at the insertion
// point for key.
func (c *Cursor) MoveTo(key uint64) bool {
	c.Depth = 0
	page := c.tree.pager.getReadPage(c.tree.root)

	for page.Kind != KindLeaf {
		c.Path[c.Depth] = page.PageIndex
		_, slot, childIndex := page.binarySearch(key)
		if slot >= page.NSlots {
			slot = page.NSlots - 1
			_, childIndex = page.readCellAtSlot(slot)
		}
		c.SlotIdx[c.Depth] = slot
		c.Depth++

		next := c.tree.pager.getReadPage(uint32(childIndex))
		c.tree.pager.releaseRead(page)
		page = next
	}

	c.Path[c.Depth] = page.PageIndex
	found, slot, _ := page.binarySearch(key)
	c.SlotIdx[c.Depth] = slot
	c.tree.pager.releaseRead(page)
	return found
}

// FirstLeaf descends from the root always taking slot 0, landing the
// cursor on the first entry of the tree's leftmost leaf.
func (c *Cursor) FirstLeaf() {
	c.Depth = 0
	page := c.tree.pager.getReadPage(c.tree.root)

	for page.Kind != KindLeaf {
		c.Path[c.Depth] = page.PageIndex
		c.SlotIdx[c.Depth] = 0
		c.Depth++

		_, childIndex := page.readCellAtSlot(0)
		next := c.tree.pager.getReadPage(uint32(childIndex))
		c.tree.pager.releaseRead(page)
		page = next
	}

	c.Path[c.Depth] = page.PageIndex
	c.SlotIdx[c.Depth] = 0
	c.tree.pager.releaseRead(page)
}

// NextEntry advances the cursor to the next entry in key order. It returns
// false iff the cursor was already positioned at the last entry in the
// tree.
func (c *Cursor) NextEntry() bool {
	d := c.Depth
	leaf := c.tree.pager.getReadPage(c.Path[d])
	if c.SlotIdx[d]+1 < leaf.NSlots {
		c.SlotIdx[d]++
		c.tree.pager.releaseRead(leaf)
		return true
	}
	c.tree.pager.releaseRead(leaf)

	for d > 0 {
		d--
		parent := c.tree.pager.getReadPage(c.Path[d])
		idx := c.SlotIdx[d]

		if idx+1 >= parent.NSlots {
			c.tree.pager.releaseRead(parent)
			continue
		}

		_, childIndex := parent.readCellAtSlot(idx + 1)
		c.tree.pager.releaseRead(parent)

		d++
		c.SlotIdx[d-1]++
		next := c.tree.pager.getReadPage(uint32(childIndex))
		for next.Kind != KindLeaf {
			c.Path[d] = next.PageIndex
			c.SlotIdx[d] = 0
			_, childIndex := next.readCellAtSlot(0)
			child := c.tree.pager.getReadPage(uint32(childIndex))
			c.tree.pager.releaseRead(next)
			next = child
			d++
		}
		c.Path[d] = next.PageIndex
		c.SlotIdx[d] = 0
		c.tree.pager.releaseRead(next)
		c.Depth = d
		return true
	}

	return false
}

// ReadData decodes the (key, value) pair at the cursor's recorded leaf
// slot. It returns ErrNotOnLeaf if the cursor's current page is not a Leaf
// (cursor corruption).
func (c *Cursor) ReadData() (key, value uint64, err error) {
	page := c.tree.pager.getReadPage(c.Path[c.Depth])
	defer c.tree.pager.releaseRead(page)
	if page.Kind != KindLeaf {
		return 0, 0, ErrNotOnLeaf
	}
	key, value = page.readCellAtSlot(c.SlotIdx[c.Depth])
	return key, value, nil
}
