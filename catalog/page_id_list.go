package catalog

import (
	"encoding/binary"
	"fmt"

	"bsql/storage/page"
)

// Wire form of a page id list in a catalog page: a big endian u16
// count followed by big endian u32 page ids.
const (
	PAGE_LIST_COUNT_SIZE = 2
	PAGE_ID_SIZE         = 4
)

func encodePageIdList(buf []byte, pageIds []page.PageId) error {
	needed := PAGE_LIST_COUNT_SIZE + len(pageIds)*PAGE_ID_SIZE
	if needed > len(buf) {
		return fmt.Errorf("page id list needs %d bytes, region has %d", needed, len(buf))
	}

	binary.BigEndian.PutUint16(buf, uint16(len(pageIds)))
	for i, pageId := range pageIds {
		binary.BigEndian.PutUint32(buf[PAGE_LIST_COUNT_SIZE+i*PAGE_ID_SIZE:], uint32(pageId))
	}

	return nil
}

func decodePageIdList(buf []byte) ([]page.PageId, error) {
	count := int(binary.BigEndian.Uint16(buf))
	if PAGE_LIST_COUNT_SIZE+count*PAGE_ID_SIZE > len(buf) {
		return nil, fmt.Errorf("corrupt page id list count %d", count)
	}

	pageIds := []page.PageId{}
	for i := 0; i < count; i++ {
		offset := PAGE_LIST_COUNT_SIZE + i*PAGE_ID_SIZE
		pageIds = append(pageIds, page.PageId(binary.BigEndian.Uint32(buf[offset:])))
	}

	return pageIds, nil
}
