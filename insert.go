package bptree

// Insert requires a write cursor positioned (via MoveTo) on the Leaf slot
// that either already holds key (overwrite) or is key's insertion point
// (fresh entry). A read cursor silently does nothing (spec.md's
// MisuseReadOnCursor).
//
// Unlike the original source — which always passes new_slot=true from its
// public insert entry point, relying on the caller to never insert an
// already-present key — this checks the recorded slot itself, so repeated
// inserts of the same key correctly overwrite rather than accumulate
// duplicate cells (spec.md §8's round-trip law).
func (c *Cursor) Insert(key, value uint64) {
	if !c.Write {
		return
	}

	leaf := c.currentLeafRead()
	newSlot := true
	if c.SlotIdx[c.Depth] < leaf.NSlots {
		existingKey, _ := leaf.readCellAtSlot(c.SlotIdx[c.Depth])
		newSlot = existingKey != key
	}
	c.tree.pager.releaseRead(leaf)

	c.insert(key, value, newSlot)
}

func (c *Cursor) insert(key, value uint64, newSlot bool) {
	insertCell(c, c.Depth, key, value, newSlot)
}

// insertCell implements spec.md §4.5: overwrite in place when the existing
// cell is large enough, otherwise free it; split and retry if the page
// would overflow; otherwise salvage a free cell or bump the high-water
// mark (vacuuming first if that would overflow); then cascade a separator
// replacement up the spine if the page's max key changed.
//
// Every write-lock this function acquires is released on every return
// path — the original source leaks the page lock on its in-place-overwrite
// fast path (spec.md §9); this always releases exactly once.
func insertCell(c *Cursor, depth uint8, key, value uint64, newSlot bool) {
	page := c.tree.pager.getWritePage(c.Path[depth])

	hadPrevMax := page.NSlots > 0
	var prevMaxKey uint64
	if hadPrevMax {
		prevMaxKey = page.maxKey()
	}

	var existingOffset uint16
	var existingSize uint8
	if !newSlot {
		existingOffset = page.Slots[c.SlotIdx[depth]]
		existingSize = page.cellSize(existingOffset)
	}

	expectedSize := requiredCellSize(key, value)
	var pointerSize uint32
	if newSlot {
		pointerSize = 2
	}

	quickWritten := false
	if !newSlot {
		if existingSize >= expectedSize {
			page.writeCell(existingOffset, key, value, existingSize)
			quickWritten = true
		} else {
			page.cleanCell(c.SlotIdx[depth], false)
		}
	}

	if !quickWritten {
		relevant := page.relevantSize(true)
		if uint32(expectedSize)+pointerSize+relevant > PageSize {
			c.tree.pager.releaseWrite(page)

			log.WithFields(map[string]interface{}{
				"page": page.PageIndex, "depth": depth,
			}).Debug("insert: page full, splitting and retrying")

			prevDepth := c.Depth
			split(c, depth)
			if c.Depth != prevDepth {
				depth += c.Depth - prevDepth
			}
			insertCell(c, depth, key, value, newSlot)
			return
		}

		var offset uint16
		var actualSize uint8
		var bumpedHighWater bool
		if off, size, ok := page.salvageFreeCell(expectedSize); ok {
			offset, actualSize = off, size
		} else {
			actualSize = expectedSize
			offset = page.CellsHighWater
			if uint32(page.totalSize(true))+pointerSize+uint32(expectedSize) > PageSize {
				page.vacuum()
				offset = page.CellsHighWater
			}
			bumpedHighWater = true
		}

		if newSlot {
			page.insertSlotAt(c.SlotIdx[depth], offset)
		} else {
			page.Slots[c.SlotIdx[depth]] = offset
		}
		page.writeCell(offset, key, value, actualSize)
		if bumpedHighWater {
			page.CellsHighWater += uint16(actualSize)
		}
	}

	var newMaxKey uint64
	if page.NSlots > 0 {
		newMaxKey = page.maxKey()
	}
	c.tree.pager.releaseWrite(page)

	if depth > 0 && (!hadPrevMax || newMaxKey != prevMaxKey) {
		replaceKeyInParent(c, depth, newMaxKey)
	}
}

// replaceKeyInParent fixes the separator naming this subtree in its parent
// after this page's max key changed. Unlike the original source (which
// passes the just-inserted key, only coincidentally equal to the page's new
// max when the cursor was at the last slot), this always passes the page's
// freshly recomputed max, per spec.md §9's safety recommendation.
func replaceKeyInParent(c *Cursor, depth uint8, newKey uint64) {
	if depth == 0 {
		return
	}
	insertCell(c, depth-1, newKey, c.Path[depth], false)
}

// split relieves an overflowing page by moving half its cells to a new
// sibling (or, at the root, rewriting the root in place as the new
// Internal page over two brand new children), and recursively fixes the
// parent separator(s). current is vacuumed (directly, or via parent.vacuum()
// at the root) before the midpoint scan below, so source's slots are
// contiguous and in order.
func split(c *Cursor, depth uint8) {
	current := c.tree.pager.getWritePage(c.Path[depth])

	var parent, left, right *Page

	if depth == 0 {
		if !c.tree.canGrowAllCursors() {
			c.tree.pager.releaseWrite(current)
			panic(newCapacityExceeded(c.Depth + 1))
		}

		parent = current
		left = c.tree.pager.getWritePage(c.tree.pager.newPage(current.Kind).PageIndex)
		right = c.tree.pager.getWritePage(c.tree.pager.newPage(current.Kind).PageIndex)
		parent.vacuum()
	} else {
		parent = c.tree.pager.getWritePage(c.Path[depth-1])
		left = current
		right = c.tree.pager.getWritePage(c.tree.pager.newPage(current.Kind).PageIndex)
		current.vacuum()
	}

	source := current
	sourceNSlots := source.NSlots
	sourceHighWater := source.CellsHighWater

	midSlot := sourceNSlots
	midOffset := sourceHighWater
	accum := uint32(0)
	for i := uint16(0); i < sourceNSlots; i++ {
		accum += 2 + uint32(source.cellSize(source.Slots[i]))
		if accum >= PageSize/2 {
			midSlot = i
			midOffset = source.Slots[i]
			break
		}
	}
	if midSlot >= sourceNSlots {
		midSlot = sourceNSlots - 1
		midOffset = source.Slots[midSlot]
	}

	if left != current {
		copy(left.Cells[:midOffset], source.Cells[:midOffset])
		copy(left.Slots[:midSlot], source.Slots[:midSlot])
	}
	copy(right.Cells[:sourceHighWater-midOffset], source.Cells[midOffset:sourceHighWater])
	for i := midSlot; i < sourceNSlots; i++ {
		right.Slots[i-midSlot] = source.Slots[i] - midOffset
	}

	left.CellsHighWater = midOffset
	left.NSlots = midSlot
	right.CellsHighWater = sourceHighWater - midOffset
	right.NSlots = sourceNSlots - midSlot

	leftMaxKey := left.maxKey()
	rightMaxKey := right.maxKey()
	transferRight := c.SlotIdx[depth] >= midSlot

	log.WithFields(map[string]interface{}{
		"source": source.PageIndex, "left": left.PageIndex, "right": right.PageIndex,
		"leftMax": leftMaxKey, "rightMax": rightMaxKey,
	}).Debug("split: partitioned page")

	if depth == 0 {
		parent.reset(KindInternal)
	}

	// The separator updates below go through insertCell, which takes the
	// parent's (at the root, current's) write lock itself, so every page
	// lock split holds is released first.
	c.tree.pager.releaseWrite(current)
	if depth == 0 {
		c.tree.pager.releaseWrite(left)
	} else {
		c.tree.pager.releaseWrite(parent)
	}
	c.tree.pager.releaseWrite(right)

	if depth == 0 {
		// Both separators land at slot 0 on the freshly emptied root: right
		// first (taking slot 0), then left (shifting right to slot 1) — so
		// the root ends up [leftMax, rightMax], in the required ascending
		// order. growAllCursorsForRootSplit needs the acting cursor's
		// pre-split SlotIdx[0] (already captured above as transferRight) to
		// decide which new child it belongs under, so that slot is restored
		// before the cursor-registry fixup runs.
		origSlot0 := c.SlotIdx[0]
		c.SlotIdx[0] = 0
		insertCell(c, 0, rightMaxKey, uint64(right.PageIndex), true)
		c.SlotIdx[0] = 0
		insertCell(c, 0, leftMaxKey, uint64(left.PageIndex), true)
		c.SlotIdx[0] = origSlot0

		c.tree.growAllCursorsForRootSplit(parent.PageIndex, left.PageIndex, right.PageIndex, midSlot)
	} else {
		d := depth
		prevDepth := c.Depth
		replaceKeyInParent(c, d, leftMaxKey)
		d += c.Depth - prevDepth

		c.SlotIdx[d-1]++

		prevDepth = c.Depth
		insertCell(c, d-1, rightMaxKey, uint64(right.PageIndex), true)
		d += c.Depth - prevDepth

		if transferRight {
			c.SlotIdx[d] -= midSlot
			c.Path[d] = right.PageIndex
		} else {
			c.SlotIdx[d-1]--
		}
	}
}
