// Package memstore is the default interfaces.PageStore: every page lives in
// a process-memory slice and nothing is ever written to disk. It is adapted
// from the teacher lineage's ParentBufMgrDummy/ParentPageDummy in-memory
// sample backing store, grown from a test double into the repository's only
// backing store, since spec.md makes disk persistence an explicit non-goal.
package memstore

import (
	"sync"

	"github.com/flurrydb/bptree/interfaces"
)

type rawPage struct {
	index uint32
	data  []byte
}

func (p *rawPage) Index() uint32 { return p.index }
func (p *rawPage) Bytes() []byte { return p.data }

// Store is a fixed-page-size, append-only array of byte buffers.
type Store struct {
	mu       sync.RWMutex
	pageSize uint32
	pages    []*rawPage
}

// New creates a Store whose pages are each pageSize bytes, pre-sizing the
// backing slice to capacityHint pages to avoid early reallocation.
func New(pageSize uint32, capacityHint int) *Store {
	return &Store{
		pageSize: pageSize,
		pages:    make([]*rawPage, 0, capacityHint),
	}
}

func (s *Store) Fetch(index uint32) interfaces.RawPage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages[index]
}

func (s *Store) Extend() interfaces.RawPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &rawPage{
		index: uint32(len(s.pages)),
		data:  make([]byte, s.pageSize),
	}
	s.pages = append(s.pages, p)
	return p
}

func (s *Store) Len() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint32(len(s.pages))
}
