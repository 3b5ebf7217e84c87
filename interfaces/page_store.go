// Package interfaces defines the pluggable backing store a Pager allocates
// its fixed-size page array from. This mirrors the teacher lineage's
// ParentBufMgr/ParentPage split between the tree's page logic and whatever
// actually holds the bytes, but repoints it at an in-memory, volatile array:
// this tree never touches a disk.
package interfaces

// RawPage is one fixed-capacity byte buffer handed out by a PageStore. Its
// contents are opaque to the store; the pager decodes the slotted-page
// layout on top of it.
type RawPage interface {
	// Index is this page's fixed position in the store.
	Index() uint32
	// Bytes returns the page's backing buffer, always len() == the store's
	// page size.
	Bytes() []byte
}

// PageStore is the fixed-size array of fixed-size pages a Pager draws from.
// It only ever grows (Extend); reclaiming a page for reuse is the pager's
// freelist's job, not the store's.
type PageStore interface {
	// Fetch returns the page previously handed out at index.
	Fetch(index uint32) RawPage
	// Extend appends one freshly zeroed page and returns it.
	Extend() RawPage
	// Len reports how many pages have been extended so far.
	Len() uint32
}
