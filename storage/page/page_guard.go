package page

func (pg *ReadPageGuard) Drop() {
	if pg == nil || pg.page == nil {
		return
	}

	pg.page.mu.RUnlock()
	pg.page = nil
}

func (pg *WritePageGuard) Drop() {
	if pg == nil || pg.page == nil {
		return
	}

	pg.page.mu.Unlock()
	pg.page = nil
}

func (pg *ReadPageGuard) Metadata() []byte {
	return pg.page.metadata[:]
}

func (pg *ReadPageGuard) Data() []byte {
	return pg.page.data[:]
}

func (pg *WritePageGuard) Metadata() []byte {
	return pg.page.metadata[:]
}

func (pg *WritePageGuard) Data() []byte {
	return pg.page.data[:]
}

type pageGuard struct {
	page *Page
}

// ReadPageGuard holds shared access to one page until Drop.
type ReadPageGuard struct {
	pageGuard
}

// WritePageGuard holds exclusive access to one page until Drop.
type WritePageGuard struct {
	pageGuard
}
