package bptree

// bulkBuild packs the pre-sorted (key, value) pairs left-to-right into
// fresh Leaf pages, then recursively packs each level's (maxKey, childPage)
// separators into the next level up, until a single page remains: the
// tree's root. isLeaf selects the Kind of the first level built.
//
// The source this packs in the manner of resets its running page-size
// tally to just the header after allocating a new page without re-adding
// the item that triggered the allocation, letting a page run slightly over
// budget before the next check catches it; this checks the budget before
// writing an item instead, so every page stays within PageSize.
func bulkBuild(pg *Pager, keys, values []uint64, isLeaf bool) uint32 {
	kind := KindInternal
	if isLeaf {
		kind = KindLeaf
	}

	var page *Page
	var levelKeys []uint64
	var levelChildren []uint64
	totalPageSize := uint32(HeaderSize)

	for i := range keys {
		size := requiredCellSize(keys[i], values[i])
		itemCost := uint32(size) + 2

		if page == nil || totalPageSize+itemCost >= PageSize {
			page = pg.newPage(kind)
			totalPageSize = HeaderSize
			levelKeys = append(levelKeys, 0)
			levelChildren = append(levelChildren, uint64(page.PageIndex))
		}
		totalPageSize += itemCost

		offset := page.CellsHighWater
		written := page.writeCell(offset, keys[i], values[i], 0)
		page.Slots[page.NSlots] = offset
		page.NSlots++
		page.CellsHighWater += uint16(written)

		levelKeys[len(levelKeys)-1] = keys[i]
	}

	log.WithFields(map[string]interface{}{
		"entries": len(keys), "pages": len(levelChildren), "leaf": isLeaf,
	}).Debug("bulk: packed level")

	if len(levelChildren) > 1 {
		return bulkBuild(pg, levelKeys, levelChildren, false)
	}
	return page.PageIndex
}
