package table

import (
	"encoding/binary"
	"fmt"

	"bsql/bitmap"
	"bsql/record"
	"bsql/storage/page"
)

// Metadata region layout of a table page. The slot bitmap tracks record
// occupancy, the column pairs pin the column id set the page was created
// with. Column names live in the table manager only.
const (
	SLOT_INDEX_START   = 0
	SLOT_INDEX_END     = SLOT_INDEX_START + bitmap.RAW_SIZE
	COLUMN_LEN_START   = SLOT_INDEX_END
	COLUMN_LEN_END     = COLUMN_LEN_START + 8
	COLUMN_PAIRS_START = COLUMN_LEN_END
)

// NewTablePage allocates a fresh page holding records of exactly the
// given column set. The set is fixed for the page's lifetime, newer
// epochs get pages of their own.
func NewTablePage(pm *page.PageManager, columns []record.ColumnDefinition) (*TablePage, error) {
	pageId := pm.CreatePage()

	guard, err := pm.Write(pageId)
	if err != nil {
		return nil, err
	}
	defer guard.Drop()

	pairs := make([]byte, 0, 2*len(columns))
	for _, column := range columns {
		pairs = append(pairs, column.ColumnID(), column.DataType().TypeID())
	}

	metadata := guard.Metadata()
	binary.BigEndian.PutUint64(metadata[COLUMN_LEN_START:COLUMN_LEN_END], uint64(len(pairs)))
	copy(metadata[COLUMN_PAIRS_START:], pairs)

	return &TablePage{pm: pm, pageId: pageId, columns: columns}, nil
}

// LoadTablePage rebuilds the codec for an existing page from its
// metadata. The decoded definitions carry no names.
func LoadTablePage(pm *page.PageManager, pageId page.PageId) (*TablePage, error) {
	guard, err := pm.Read(pageId)
	if err != nil {
		return nil, err
	}
	defer guard.Drop()

	metadata := guard.Metadata()
	pairsLen := binary.BigEndian.Uint64(metadata[COLUMN_LEN_START:COLUMN_LEN_END])
	if pairsLen%2 != 0 || COLUMN_PAIRS_START+pairsLen > page.PAGE_SIZE {
		return nil, fmt.Errorf("page %d has a corrupt column pair length %d", pageId, pairsLen)
	}

	pairs := metadata[COLUMN_PAIRS_START : COLUMN_PAIRS_START+int(pairsLen)]
	columns := make([]record.ColumnDefinition, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		dataType, err := record.DataTypeFromID(pairs[i+1])
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageId, err)
		}

		columns = append(columns, record.NewColumnDefinition(pairs[i], dataType, ""))
	}

	return &TablePage{pm: pm, pageId: pageId, columns: columns}, nil
}

// InsertRecord consumes a free slot, encodes the values back to back
// and writes them at the slot's offset in the data region. Returns the
// slot index.
func (t *TablePage) InsertRecord(values []record.Value) (uint8, error) {
	if len(values) != len(t.columns) {
		return 0, fmt.Errorf("%w: got %d values for %d columns", ErrValueCountMismatch, len(values), len(t.columns))
	}

	encoded := []byte{}
	for i, value := range values {
		if value.DataType() != t.columns[i].DataType() {
			return 0, fmt.Errorf("value %d has type %s, column needs %s", i, value.DataType(), t.columns[i].DataType())
		}
		encoded = append(encoded, value.Encode()...)
	}

	guard, err := t.pm.Write(t.pageId)
	if err != nil {
		return 0, err
	}
	defer guard.Drop()

	slots, err := bitmap.FromRaw(guard.Metadata()[SLOT_INDEX_START:SLOT_INDEX_END])
	if err != nil {
		return 0, err
	}

	if slots.Count() >= t.maxRecords() {
		return 0, fmt.Errorf("%w: page %d", ErrPageFull, t.pageId)
	}

	slot, ok := slots.Consume()
	if !ok {
		return 0, fmt.Errorf("%w: page %d", ErrPageFull, t.pageId)
	}

	offset := int(slot) * t.recordSize()
	copy(guard.Data()[offset:offset+len(encoded)], encoded)

	return slot, nil
}

// GetRecord decodes the record in the given slot column by column.
func (t *TablePage) GetRecord(slot uint8) ([]record.Value, error) {
	guard, err := t.pm.Read(t.pageId)
	if err != nil {
		return nil, err
	}
	defer guard.Drop()

	slots, err := bitmap.FromRaw(guard.Metadata()[SLOT_INDEX_START:SLOT_INDEX_END])
	if err != nil {
		return nil, err
	}

	if !slots.IsSet(slot) {
		return nil, fmt.Errorf("%w: slot %d on page %d", ErrSlotNotOccupied, slot, t.pageId)
	}

	return t.decodeRecord(guard.Data(), slot)
}

// GetRecords decodes every occupied slot in ascending slot order.
func (t *TablePage) GetRecords() ([][]record.Value, error) {
	guard, err := t.pm.Read(t.pageId)
	if err != nil {
		return nil, err
	}
	defer guard.Drop()

	slots, err := bitmap.FromRaw(guard.Metadata()[SLOT_INDEX_START:SLOT_INDEX_END])
	if err != nil {
		return nil, err
	}

	records := [][]record.Value{}
	for _, slot := range slots.Indices() {
		values, err := t.decodeRecord(guard.Data(), slot)
		if err != nil {
			return nil, err
		}
		records = append(records, values)
	}

	return records, nil
}

// DeleteRecord clears the slot's occupancy flag. The record bytes stay
// in place until a future insert reuses the slot.
func (t *TablePage) DeleteRecord(slot uint8) error {
	guard, err := t.pm.Write(t.pageId)
	if err != nil {
		return err
	}
	defer guard.Drop()

	slots, err := bitmap.FromRaw(guard.Metadata()[SLOT_INDEX_START:SLOT_INDEX_END])
	if err != nil {
		return err
	}

	slots.Unset(slot)
	return nil
}

func (t *TablePage) IsFull() (bool, error) {
	guard, err := t.pm.Read(t.pageId)
	if err != nil {
		return false, err
	}
	defer guard.Drop()

	slots, err := bitmap.FromRaw(guard.Metadata()[SLOT_INDEX_START:SLOT_INDEX_END])
	if err != nil {
		return false, err
	}

	return slots.Count() >= t.maxRecords(), nil
}

func (t *TablePage) RecordCount() (int, error) {
	guard, err := t.pm.Read(t.pageId)
	if err != nil {
		return 0, err
	}
	defer guard.Drop()

	slots, err := bitmap.FromRaw(guard.Metadata()[SLOT_INDEX_START:SLOT_INDEX_END])
	if err != nil {
		return 0, err
	}

	return slots.Count(), nil
}

func (t *TablePage) PageID() page.PageId {
	return t.pageId
}

func (t *TablePage) ColumnDefinitions() []record.ColumnDefinition {
	return t.columns
}

func (t *TablePage) ColumnIDs() []uint8 {
	ids := make([]uint8, 0, len(t.columns))
	for _, column := range t.columns {
		ids = append(ids, column.ColumnID())
	}

	return ids
}

func (t *TablePage) decodeRecord(data []byte, slot uint8) ([]record.Value, error) {
	offset := int(slot) * t.recordSize()

	values := make([]record.Value, 0, len(t.columns))
	for _, column := range t.columns {
		width := column.DataType().Size()
		value, err := record.DecodeValue(column.DataType(), data[offset:offset+width])
		if err != nil {
			return nil, err
		}

		values = append(values, value)
		offset += width
	}

	return values, nil
}

func (t *TablePage) recordSize() int {
	size := 0
	for _, column := range t.columns {
		size += column.DataType().Size()
	}

	return size
}

// maxRecords caps the usable slots to what the data region can hold.
// With single byte records all 256 bitmap positions are usable.
func (t *TablePage) maxRecords() int {
	size := t.recordSize()
	if size == 0 {
		return bitmap.CAPACITY
	}

	return min(bitmap.CAPACITY, page.PAGE_SIZE/size)
}

// TablePage serializes fixed width records into one page's data region
// and tracks slot occupancy with a bitmap in the page's metadata.
type TablePage struct {
	pm      *page.PageManager
	pageId  page.PageId
	columns []record.ColumnDefinition
}
