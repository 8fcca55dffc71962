package catalog

import (
	"fmt"

	"bsql/record"
	"bsql/storage/page"
	"bsql/table"
)

// Metadata region layout of a database page: the length prefixed
// database name, then the length prefixed list of table manager page
// ids.
const (
	DATABASE_NAME_START = 0
	DATABASE_NAME_CAP   = 64
	TABLE_LIST_START    = DATABASE_NAME_CAP
)

// NewDatabase allocates a catalog page for a new, empty database.
func NewDatabase(pm *page.PageManager, name string) (*Database, error) {
	database := &Database{pm: pm, pageId: pm.CreatePage()}
	if err := database.storeMeta(&databaseMeta{name: name}); err != nil {
		return nil, err
	}

	return database, nil
}

// LoadDatabase wraps an existing database page. Every fact is
// re-derived from page bytes on each access.
func LoadDatabase(pm *page.PageManager, pageId page.PageId) *Database {
	return &Database{pm: pm, pageId: pageId}
}

func (d *Database) PageID() page.PageId {
	return d.pageId
}

func (d *Database) Name() (string, error) {
	meta, err := d.loadMeta()
	if err != nil {
		return "", err
	}

	return meta.name, nil
}

func (d *Database) TableNames() ([]string, error) {
	meta, err := d.loadMeta()
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, pageId := range meta.tableIds {
		name, err := table.LoadTableManager(d.pm, pageId).Name()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, nil
}

// CreateTable allocates a table manager page, runs every initial
// column through AddColumn and records the new page id in the database
// page.
func (d *Database) CreateTable(tableName string, columns []record.ColumnInfo) error {
	meta, err := d.loadMeta()
	if err != nil {
		return err
	}

	for _, pageId := range meta.tableIds {
		name, err := table.LoadTableManager(d.pm, pageId).Name()
		if err != nil {
			return err
		}
		if name == tableName {
			return fmt.Errorf("%w: %q", ErrTableAlreadyExists, tableName)
		}
	}

	manager, err := table.NewTableManager(d.pm, tableName)
	if err != nil {
		return err
	}

	for _, column := range columns {
		if err := manager.AddColumn(column.Name, column.DataType); err != nil {
			return err
		}
	}

	meta.tableIds = append(meta.tableIds, manager.PageID())
	return d.storeMeta(meta)
}

func (d *Database) ColumnDefinitions(tableName string) ([]record.ColumnDefinition, error) {
	manager, err := d.findTable(tableName)
	if err != nil {
		return nil, err
	}

	return manager.ColumnDefinitions()
}

func (d *Database) AddColumn(tableName, columnName string, dataType record.DataType) error {
	manager, err := d.findTable(tableName)
	if err != nil {
		return err
	}

	return manager.AddColumn(columnName, dataType)
}

func (d *Database) InsertRow(tableName string, values []record.Value) (table.RecordId, error) {
	manager, err := d.findTable(tableName)
	if err != nil {
		return 0, err
	}

	return manager.InsertRecord(values)
}

func (d *Database) SelectAllColumns(tableName string) (record.RowResult, error) {
	manager, err := d.findTable(tableName)
	if err != nil {
		return record.RowResult{}, err
	}

	return manager.GetRecords()
}

func (d *Database) SelectColumnsByName(tableName string, columnNames []string) (record.RowResult, error) {
	manager, err := d.findTable(tableName)
	if err != nil {
		return record.RowResult{}, err
	}

	return manager.GetRecordsForColumns(columnNames)
}

// findTable reloads the table managers from the stored page ids and
// picks the one with the given name.
func (d *Database) findTable(tableName string) (*table.TableManager, error) {
	meta, err := d.loadMeta()
	if err != nil {
		return nil, err
	}

	for _, pageId := range meta.tableIds {
		manager := table.LoadTableManager(d.pm, pageId)

		name, err := manager.Name()
		if err != nil {
			return nil, err
		}
		if name == tableName {
			return manager, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrTableDoesNotExist, tableName)
}

func (d *Database) loadMeta() (*databaseMeta, error) {
	guard, err := d.pm.Read(d.pageId)
	if err != nil {
		return nil, err
	}
	defer guard.Drop()

	metadata := guard.Metadata()
	nameLen := int(metadata[DATABASE_NAME_START])
	if nameLen >= DATABASE_NAME_CAP {
		return nil, fmt.Errorf("corrupt database name length %d", nameLen)
	}

	tableIds, err := decodePageIdList(metadata[TABLE_LIST_START:])
	if err != nil {
		return nil, err
	}

	return &databaseMeta{
		name:     string(metadata[DATABASE_NAME_START+1 : DATABASE_NAME_START+1+nameLen]),
		tableIds: tableIds,
	}, nil
}

func (d *Database) storeMeta(meta *databaseMeta) error {
	guard, err := d.pm.Write(d.pageId)
	if err != nil {
		return err
	}
	defer guard.Drop()

	metadata := guard.Metadata()
	clear(metadata)
	metadata[DATABASE_NAME_START] = byte(len(meta.name))
	copy(metadata[DATABASE_NAME_START+1:], meta.name)

	return encodePageIdList(metadata[TABLE_LIST_START:], meta.tableIds)
}

type databaseMeta struct {
	name     string
	tableIds []page.PageId
}

// Database is the per database catalog: the database name and the list
// of table manager page ids.
type Database struct {
	pm     *page.PageManager
	pageId page.PageId
}
