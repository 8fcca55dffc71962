package table

import (
	"encoding/binary"
	"fmt"
	"slices"

	"bsql/bitmap"
	"bsql/record"
	"bsql/storage/page"
)

// Metadata region layout of a table manager page: the length prefixed
// table name, the column id bitmap, the length prefixed column
// definition blob and a trailing length prefixed table page id list.
const (
	TABLE_NAME_START     = 0
	TABLE_NAME_CAP       = 64
	COLUMN_INDEX_START   = TABLE_NAME_CAP
	COLUMN_INDEX_END     = COLUMN_INDEX_START + bitmap.RAW_SIZE
	COLUMN_BLOB_START    = COLUMN_INDEX_END
	COLUMN_BLOB_LEN_SIZE = 2
	PAGE_LIST_COUNT_SIZE = 2
	PAGE_ID_SIZE         = 4
)

// NewTableManager allocates a catalog page for a new, column-less
// table.
func NewTableManager(pm *page.PageManager, name string) (*TableManager, error) {
	if len(name) >= TABLE_NAME_CAP {
		return nil, fmt.Errorf("%w: %q", ErrTableNameTooLong, name)
	}

	manager := &TableManager{pm: pm, pageId: pm.CreatePage()}
	if err := manager.storeMeta(&tableMeta{name: name}); err != nil {
		return nil, err
	}

	return manager, nil
}

// LoadTableManager wraps an existing catalog page. Nothing is read
// until an operation needs it, every catalog fact is re-derived from
// the page bytes on each access.
func LoadTableManager(pm *page.PageManager, pageId page.PageId) *TableManager {
	return &TableManager{pm: pm, pageId: pageId}
}

func (t *TableManager) PageID() page.PageId {
	return t.pageId
}

func (t *TableManager) Name() (string, error) {
	meta, err := t.loadMeta()
	if err != nil {
		return "", err
	}

	return meta.name, nil
}

func (t *TableManager) ColumnDefinitions() ([]record.ColumnDefinition, error) {
	meta, err := t.loadMeta()
	if err != nil {
		return nil, err
	}

	return meta.columns, nil
}

// AddColumn allocates a column id from the table's bitmap, appends the
// definition and rewrites the catalog page in a single write. This
// starts a new epoch: later inserts go to pages keyed by the new column
// id set, older pages stay untouched.
func (t *TableManager) AddColumn(name string, dataType record.DataType) error {
	meta, err := t.loadMeta()
	if err != nil {
		return err
	}

	for _, column := range meta.columns {
		if column.Name() == name {
			return fmt.Errorf("%w: %q", ErrColumnAlreadyExists, name)
		}
	}

	columnIndex, err := bitmap.FromRaw(meta.columnIndex[:])
	if err != nil {
		return err
	}

	columnId, ok := columnIndex.Consume()
	if !ok {
		return fmt.Errorf("%w: table %q", ErrTooManyColumnsInUse, meta.name)
	}

	meta.columns = append(meta.columns, record.NewColumnDefinition(columnId, dataType, name))
	return t.storeMeta(meta)
}

// InsertRecord writes the values into the current epoch's writable
// table page, creating one when the newest matching page is absent or
// full. The returned record id encodes the page's position in the
// table's page list and the slot within the page.
func (t *TableManager) InsertRecord(values []record.Value) (RecordId, error) {
	meta, err := t.loadMeta()
	if err != nil {
		return 0, err
	}

	if len(values) != len(meta.columns) {
		return 0, fmt.Errorf("%w: got %d values for %d columns", ErrValueCountMismatch, len(values), len(meta.columns))
	}

	tablePage, pageIndex, err := t.writablePage(meta)
	if err != nil {
		return 0, err
	}

	if tablePage != nil {
		slot, err := tablePage.InsertRecord(values)
		if err != nil {
			return 0, err
		}

		return NewRecordId(uint32(pageIndex), slot), nil
	}

	// No writable page for the current epoch. Allocate one, insert,
	// then record the new page id in the catalog page.
	tablePage, err = NewTablePage(t.pm, meta.columns)
	if err != nil {
		return 0, err
	}

	slot, err := tablePage.InsertRecord(values)
	if err != nil {
		return 0, err
	}

	meta.pageIds = append(meta.pageIds, tablePage.PageID())
	if err := t.storeMeta(meta); err != nil {
		return 0, err
	}

	return NewRecordId(uint32(len(meta.pageIds)-1), slot), nil
}

// GetRecords decodes every record of every epoch, each against its own
// page's column set, normalized to the current schema.
func (t *TableManager) GetRecords() (record.RowResult, error) {
	meta, err := t.loadMeta()
	if err != nil {
		return record.RowResult{}, err
	}

	rows, err := t.normalizedRows(meta)
	if err != nil {
		return record.RowResult{}, err
	}

	return record.NewRowResult(meta.columnNames(), rows), nil
}

// GetRecordsForColumns projects the normalized rows onto the requested
// columns, in the requested order.
func (t *TableManager) GetRecordsForColumns(columnNames []string) (record.RowResult, error) {
	meta, err := t.loadMeta()
	if err != nil {
		return record.RowResult{}, err
	}

	positions := make([]int, 0, len(columnNames))
	for _, name := range columnNames {
		position := slices.IndexFunc(meta.columns, func(c record.ColumnDefinition) bool {
			return c.Name() == name
		})
		if position < 0 {
			return record.RowResult{}, fmt.Errorf("%w: %q", ErrColumnDoesNotExist, name)
		}

		positions = append(positions, position)
	}

	rows, err := t.normalizedRows(meta)
	if err != nil {
		return record.RowResult{}, err
	}

	projected := make([]record.RowValues, 0, len(rows))
	for _, row := range rows {
		values := make(record.RowValues, 0, len(positions))
		for _, position := range positions {
			values = append(values, row[position])
		}
		projected = append(projected, values)
	}

	return record.NewRowResult(slices.Clone(columnNames), projected), nil
}

// GetRecord loads exactly the one page the record id points into and
// normalizes the single row.
func (t *TableManager) GetRecord(recordId RecordId) (record.RowValues, error) {
	meta, err := t.loadMeta()
	if err != nil {
		return nil, err
	}

	pageIndex := int(recordId.PageIndex())
	if pageIndex >= len(meta.pageIds) {
		return nil, fmt.Errorf("%w: id %d", ErrRecordDoesNotExist, recordId)
	}

	tablePage, err := LoadTablePage(t.pm, meta.pageIds[pageIndex])
	if err != nil {
		return nil, err
	}

	values, err := tablePage.GetRecord(recordId.Slot())
	if err != nil {
		return nil, fmt.Errorf("%w: id %d", ErrRecordDoesNotExist, recordId)
	}

	return normalizeRecord(meta.columns, tablePage.ColumnDefinitions(), values), nil
}

// writablePage finds the most recently created page whose column id set
// matches the current schema and which still has free slots. Returns
// nil when no such page exists yet.
func (t *TableManager) writablePage(meta *tableMeta) (*TablePage, int, error) {
	currentIds := meta.columnIds()

	for pageIndex := len(meta.pageIds) - 1; pageIndex >= 0; pageIndex-- {
		tablePage, err := LoadTablePage(t.pm, meta.pageIds[pageIndex])
		if err != nil {
			return nil, 0, err
		}

		if !slices.Equal(tablePage.ColumnIDs(), currentIds) {
			continue
		}

		full, err := tablePage.IsFull()
		if err != nil {
			return nil, 0, err
		}
		if full {
			continue
		}

		return tablePage, pageIndex, nil
	}

	return nil, 0, nil
}

func (t *TableManager) normalizedRows(meta *tableMeta) ([]record.RowValues, error) {
	rows := []record.RowValues{}

	for _, pageId := range meta.pageIds {
		tablePage, err := LoadTablePage(t.pm, pageId)
		if err != nil {
			return nil, err
		}

		records, err := tablePage.GetRecords()
		if err != nil {
			return nil, err
		}

		for _, values := range records {
			rows = append(rows, normalizeRecord(meta.columns, tablePage.ColumnDefinitions(), values))
		}
	}

	return rows, nil
}

// normalizeRecord converts a record decoded with its epoch's column set
// into the current schema's shape. Columns that did not exist in the
// record's epoch come back nil.
func normalizeRecord(current, epoch []record.ColumnDefinition, values []record.Value) record.RowValues {
	row := make(record.RowValues, 0, len(current))

	for _, column := range current {
		position := slices.IndexFunc(epoch, func(c record.ColumnDefinition) bool {
			return c.ColumnID() == column.ColumnID()
		})

		if position < 0 {
			row = append(row, nil)
		} else {
			row = append(row, &values[position])
		}
	}

	return row
}

func (t *TableManager) loadMeta() (*tableMeta, error) {
	guard, err := t.pm.Read(t.pageId)
	if err != nil {
		return nil, err
	}
	defer guard.Drop()

	return decodeTableMeta(guard.Metadata())
}

func (t *TableManager) storeMeta(meta *tableMeta) error {
	guard, err := t.pm.Write(t.pageId)
	if err != nil {
		return err
	}
	defer guard.Drop()

	return encodeTableMeta(guard.Metadata(), meta)
}

func decodeTableMeta(metadata []byte) (*tableMeta, error) {
	nameLen := int(metadata[TABLE_NAME_START])
	if nameLen >= TABLE_NAME_CAP {
		return nil, fmt.Errorf("corrupt table name length %d", nameLen)
	}

	meta := &tableMeta{name: string(metadata[TABLE_NAME_START+1 : TABLE_NAME_START+1+nameLen])}
	copy(meta.columnIndex[:], metadata[COLUMN_INDEX_START:COLUMN_INDEX_END])

	blobLen := int(binary.BigEndian.Uint16(metadata[COLUMN_BLOB_START : COLUMN_BLOB_START+COLUMN_BLOB_LEN_SIZE]))
	cursor := COLUMN_BLOB_START + COLUMN_BLOB_LEN_SIZE
	if cursor+blobLen > len(metadata) {
		return nil, fmt.Errorf("corrupt column blob length %d", blobLen)
	}

	columns, err := record.DecodeColumnDefinitions(metadata[cursor : cursor+blobLen])
	if err != nil {
		return nil, err
	}
	meta.columns = columns
	cursor += blobLen

	pageCount := int(binary.BigEndian.Uint16(metadata[cursor : cursor+PAGE_LIST_COUNT_SIZE]))
	cursor += PAGE_LIST_COUNT_SIZE
	if cursor+pageCount*PAGE_ID_SIZE > len(metadata) {
		return nil, fmt.Errorf("corrupt table page count %d", pageCount)
	}

	for i := 0; i < pageCount; i++ {
		offset := cursor + i*PAGE_ID_SIZE
		meta.pageIds = append(meta.pageIds, page.PageId(binary.BigEndian.Uint32(metadata[offset:offset+PAGE_ID_SIZE])))
	}

	return meta, nil
}

func encodeTableMeta(metadata []byte, meta *tableMeta) error {
	blob := record.EncodeColumnDefinitions(meta.columns)

	needed := COLUMN_BLOB_START + COLUMN_BLOB_LEN_SIZE + len(blob) +
		PAGE_LIST_COUNT_SIZE + len(meta.pageIds)*PAGE_ID_SIZE
	if needed > len(metadata) {
		return fmt.Errorf("table %q catalog does not fit in one page, needs %d bytes", meta.name, needed)
	}

	clear(metadata)
	metadata[TABLE_NAME_START] = byte(len(meta.name))
	copy(metadata[TABLE_NAME_START+1:], meta.name)
	copy(metadata[COLUMN_INDEX_START:COLUMN_INDEX_END], meta.columnIndex[:])

	binary.BigEndian.PutUint16(metadata[COLUMN_BLOB_START:], uint16(len(blob)))
	cursor := COLUMN_BLOB_START + COLUMN_BLOB_LEN_SIZE
	copy(metadata[cursor:], blob)
	cursor += len(blob)

	binary.BigEndian.PutUint16(metadata[cursor:], uint16(len(meta.pageIds)))
	cursor += PAGE_LIST_COUNT_SIZE
	for _, pageId := range meta.pageIds {
		binary.BigEndian.PutUint32(metadata[cursor:], uint32(pageId))
		cursor += PAGE_ID_SIZE
	}

	return nil
}

func (m *tableMeta) columnIds() []uint8 {
	ids := make([]uint8, 0, len(m.columns))
	for _, column := range m.columns {
		ids = append(ids, column.ColumnID())
	}

	return ids
}

func (m *tableMeta) columnNames() []string {
	names := make([]string, 0, len(m.columns))
	for _, column := range m.columns {
		names = append(names, column.Name())
	}

	return names
}

// tableMeta is the decoded form of a table manager's catalog page.
// Mutations build a new meta and rewrite the page as a single write,
// so a failing operation leaves the page byte for byte unchanged.
type tableMeta struct {
	name        string
	columnIndex [bitmap.RAW_SIZE]byte
	columns     []record.ColumnDefinition
	pageIds     []page.PageId
}

// TableManager is the per table catalog: the table name, the evolving
// column schema and the list of table pages across all schema epochs.
type TableManager struct {
	pm     *page.PageManager
	pageId page.PageId
}
