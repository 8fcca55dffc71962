package page

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// MEMORY is the sentinel path that disables file I/O entirely.
const MEMORY = ":memory:"

// Open builds a page manager backed by the file at path. An existing
// file is partitioned into consecutive chunks of metadata ++ data bytes
// and one page is appended per chunk, so page ids come back identical
// to the sequence they were created in. The MEMORY sentinel skips file
// I/O and Commit becomes a no-op.
func Open(path string) (*PageManager, error) {
	pm := &PageManager{path: path}
	if path == MEMORY {
		return pm, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening db file: %w", err)
	}
	pm.dbFile = file

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("error reading db file: %w", err)
	}

	if len(raw)%CHUNK_SIZE != 0 {
		return nil, fmt.Errorf("db file size %d is not a multiple of %d", len(raw), CHUNK_SIZE)
	}

	for offset := 0; offset < len(raw); offset += CHUNK_SIZE {
		page := newPage()
		copy(page.metadata[:], raw[offset:offset+PAGE_SIZE])
		copy(page.data[:], raw[offset+PAGE_SIZE:offset+CHUNK_SIZE])
		pm.pages = append(pm.pages, page)
	}

	return pm, nil
}

// CreatePage appends a new zero filled page and returns its id.
func (pm *PageManager) CreatePage() PageId {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pageId := PageId(len(pm.pages))
	pm.pages = append(pm.pages, newPage())

	return pageId
}

// Read returns a read guard for the page. The caller must Drop the
// guard as soon as the operation is done.
func (pm *PageManager) Read(pageId PageId) (*ReadPageGuard, error) {
	page, err := pm.fetchPage(pageId)
	if err != nil {
		return nil, err
	}

	page.mu.RLock()
	return &ReadPageGuard{pageGuard{page: page}}, nil
}

// Write returns a write guard with exclusive access to the page. The
// caller must Drop the guard as soon as the operation is done.
func (pm *PageManager) Write(pageId PageId) (*WritePageGuard, error) {
	page, err := pm.fetchPage(pageId)
	if err != nil {
		return nil, err
	}

	page.mu.Lock()
	return &WritePageGuard{pageGuard{page: page}}, nil
}

// PageCount returns the number of pages in the arena.
func (pm *PageManager) PageCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return len(pm.pages)
}

// Commit serializes every page in page id order, metadata then data,
// and overwrites the backing file in full. Nothing happens in memory
// mode. This is a whole file rewrite, not an incremental log.
func (pm *PageManager) Commit() error {
	if pm.path == MEMORY {
		return nil
	}

	pm.mu.RLock()
	defer pm.mu.RUnlock()

	for i, page := range pm.pages {
		chunk := make([]byte, CHUNK_SIZE)
		page.mu.RLock()
		copy(chunk[:PAGE_SIZE], page.metadata[:])
		copy(chunk[PAGE_SIZE:], page.data[:])
		page.mu.RUnlock()

		offset := int64(i) * CHUNK_SIZE
		if _, err := pm.dbFile.WriteAt(chunk, offset); err != nil {
			return fmt.Errorf("error writing page %d at offset %d: %w", i, offset, err)
		}
	}

	size := int64(len(pm.pages)) * CHUNK_SIZE
	if err := pm.dbFile.Truncate(size); err != nil {
		return fmt.Errorf("error resizing db file: %w", err)
	}

	if err := pm.dbFile.Sync(); err != nil {
		return fmt.Errorf("error syncing db file: %w", err)
	}

	return nil
}

// Close releases the backing file without committing.
func (pm *PageManager) Close() error {
	if pm.dbFile == nil {
		return nil
	}

	return pm.dbFile.Close()
}

func (pm *PageManager) fetchPage(pageId PageId) (*Page, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if int(pageId) >= len(pm.pages) {
		return nil, fmt.Errorf("page %d does not exist, have %d pages", pageId, len(pm.pages))
	}

	return pm.pages[pageId], nil
}

// PageManager owns every page in the system. Catalog objects hold page
// ids only and borrow pages through Read and Write for one operation at
// a time.
type PageManager struct {
	mu     sync.RWMutex
	pages  []*Page
	path   string
	dbFile *os.File
}
