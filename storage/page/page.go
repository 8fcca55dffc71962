package page

import "sync"

const (
	// PAGE_SIZE is the size of both the metadata and the data region.
	PAGE_SIZE = 4096

	// CHUNK_SIZE is the on-disk footprint of one page, metadata then data.
	CHUNK_SIZE = 2 * PAGE_SIZE
)

// PageId is the ordinal position of a page in the page manager.
type PageId uint32

func newPage() *Page {
	return &Page{}
}

// Page is a fixed size storage unit with a metadata and a data region.
// Both regions are zero initialized, never resized and never freed.
// Access goes through the page manager's read and write guards, which
// take the page's lock for the duration of one operation.
type Page struct {
	mu       sync.RWMutex
	metadata [PAGE_SIZE]byte
	data     [PAGE_SIZE]byte
}
