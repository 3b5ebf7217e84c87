package bptree

// Remove deletes the entry at the cursor's current slot. The caller is
// responsible for having positioned the cursor on an exact match (a
// MoveTo that returned true); Remove does not re-check the key and will
// happily delete whatever sits at the recorded slot otherwise. It returns
// false without effect on a read cursor or a cursor not positioned on a
// Leaf.
func (c *Cursor) Remove() bool {
	if !c.Write {
		return false
	}

	leaf := c.currentLeafRead()
	isLeaf := leaf.Kind == KindLeaf
	c.tree.pager.releaseRead(leaf)
	if !isLeaf {
		return false
	}

	removeCell(c, c.Depth, c.SlotIdx[c.Depth])
	return true
}

// removeCell deletes the cell at slot on the page at depth, then cascades
// upward: if the deleted cell was its page's separator in the parent, the
// parent separator is replaced (or, if the page is now empty, dropped
// along with the page itself); unless the page was dropped, it is then
// offered for merging with a sibling. A root Internal page left with no
// slots becomes an empty Leaf again.
//
// Every lock this acquires is released before returning or before a call
// that would re-acquire the same page (merge re-acquires both siblings),
// unlike the original source, which never releases the write locks this
// function and mergeNodes take.
func removeCell(c *Cursor, depth uint8, slot uint16) {
	page := c.tree.pager.getWritePage(c.Path[depth])
	released := false
	release := func() {
		if !released {
			c.tree.pager.releaseWrite(page)
			released = true
		}
	}
	defer release()

	keyForDelete, _ := page.readCellAtSlot(slot)
	page.cleanCell(slot, true)
	c.tree.fixupCursorsOnSlotRemoval(page.PageIndex, depth, slot)

	log.WithFields(map[string]interface{}{
		"page": page.PageIndex, "depth": depth, "key": keyForDelete,
	}).Debug("delete: removed cell")

	if depth == 0 {
		if page.Kind == KindInternal && page.NSlots == 0 {
			page.reset(KindLeaf)
		}
		return
	}

	idxInParent := c.SlotIdx[depth-1]
	parent := c.tree.pager.getWritePage(c.Path[depth-1])
	keyInParent, _ := parent.readCellAtSlot(idxInParent)
	c.tree.pager.releaseWrite(parent)

	if keyInParent == keyForDelete {
		if page.NSlots == 0 {
			log.WithField("page", page.PageIndex).Debug("delete: page emptied, dropping")
			removeCell(c, depth-1, idxInParent)
			c.tree.pager.freePage(page.PageIndex)
			return
		}
		replaceKeyInParent(c, depth, page.maxKey())
	}

	parentR := c.tree.pager.getReadPage(c.Path[depth-1])
	nSlots := parentR.NSlots
	haveRight := idxInParent+1 < nSlots
	haveLeft := idxInParent > 0
	var rightSiblingIdx, leftSiblingIdx uint32
	if haveRight {
		_, v := parentR.readCellAtSlot(idxInParent + 1)
		rightSiblingIdx = uint32(v)
	}
	if haveLeft {
		_, v := parentR.readCellAtSlot(idxInParent - 1)
		leftSiblingIdx = uint32(v)
	}
	c.tree.pager.releaseRead(parentR)

	pageIdx := page.PageIndex
	release()

	merged := false
	if haveRight {
		merged = merge(c, depth, idxInParent, pageIdx, rightSiblingIdx)
	}
	if !merged && haveLeft {
		merge(c, depth, idxInParent-1, leftSiblingIdx, pageIdx)
	}
}

// merge combines the pages at leftIdx and rightIdx — the parent's children
// at slots leftSlotInParent and leftSlotInParent+1 — into leftIdx, if their
// combined relevant size fits in one page. It reports whether the merge
// happened.
func merge(c *Cursor, depth uint8, leftSlotInParent uint16, leftIdx, rightIdx uint32) bool {
	if depth == 0 {
		return false
	}

	left := c.tree.pager.getReadPage(leftIdx)
	right := c.tree.pager.getReadPage(rightIdx)
	fits := HeaderSize+left.relevantSize(false)+right.relevantSize(false) < PageSize
	c.tree.pager.releaseRead(right)
	c.tree.pager.releaseRead(left)
	if !fits {
		log.WithFields(map[string]interface{}{"left": leftIdx, "right": rightIdx}).
			Debug("merge: combined pages too large, skipping")
		return false
	}

	left = c.tree.pager.getWritePage(leftIdx)
	right = c.tree.pager.getWritePage(rightIdx)

	left.vacuum()
	right.vacuum()

	copy(left.Cells[left.CellsHighWater:left.CellsHighWater+right.CellsHighWater], right.Cells[:right.CellsHighWater])
	leftOldNSlots := left.NSlots
	for i := uint16(0); i < right.NSlots; i++ {
		left.Slots[leftOldNSlots+i] = right.Slots[i] + left.CellsHighWater
	}

	c.tree.fixupCursorsOnMerge(depth, rightIdx, leftIdx, leftOldNSlots, leftSlotInParent)

	left.NSlots = leftOldNSlots + right.NSlots
	left.CellsHighWater += right.CellsHighWater

	c.tree.pager.releaseWrite(right)
	c.tree.pager.releaseWrite(left)
	c.tree.pager.freePage(rightIdx)

	log.WithFields(map[string]interface{}{"survivor": leftIdx, "absorbed": rightIdx}).
		Debug("merge: combined pages")

	maxKey := left.maxKey()
	removeCell(c, depth-1, leftSlotInParent+1)
	replaceKeyInParent(c, depth, maxKey)

	return true
}
