package catalog

import (
	"fmt"
	"slices"

	"bsql/query"
	"bsql/record"
	"bsql/storage/page"
	"bsql/table"
)

// ROOT_PAGE_ID is where the root catalog lives: a page id list naming
// every database page.
const ROOT_PAGE_ID page.PageId = 0

// MAX_DATABASE_NAME_LEN bounds database names; longer names fail with
// ErrDatabaseNameTooLong.
const MAX_DATABASE_NAME_LEN = 62

// NewManager builds the root catalog over the given page manager. On
// an empty arena the root page is allocated, otherwise page 0 is
// assumed to hold the root directory written by an earlier run.
func NewManager(pm *page.PageManager) (*Manager, error) {
	if pm.PageCount() == 0 {
		if pageId := pm.CreatePage(); pageId != ROOT_PAGE_ID {
			return nil, fmt.Errorf("root catalog got page %d instead of %d", pageId, ROOT_PAGE_ID)
		}
	}

	return &Manager{pm: pm}, nil
}

// CreateDatabase allocates a database page and records it in the root
// catalog.
func (m *Manager) CreateDatabase(name string) error {
	databaseIds, err := m.databaseIds()
	if err != nil {
		return err
	}

	for _, pageId := range databaseIds {
		existing, err := LoadDatabase(m.pm, pageId).Name()
		if err != nil {
			return err
		}
		if existing == name {
			return fmt.Errorf("%w: %q", ErrDatabaseAlreadyExists, name)
		}
	}

	if len(name) > MAX_DATABASE_NAME_LEN {
		return fmt.Errorf("%w: %q", ErrDatabaseNameTooLong, name)
	}

	database, err := NewDatabase(m.pm, name)
	if err != nil {
		return err
	}

	return m.storeDatabaseIds(append(databaseIds, database.PageID()))
}

func (m *Manager) DatabaseNames() ([]string, error) {
	databaseIds, err := m.databaseIds()
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, pageId := range databaseIds {
		name, err := LoadDatabase(m.pm, pageId).Name()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, nil
}

func (m *Manager) DatabaseExists(name string) bool {
	_, err := m.findDatabase(name)
	return err == nil
}

func (m *Manager) DatabaseTableNames(databaseName string) ([]string, error) {
	database, err := m.findDatabase(databaseName)
	if err != nil {
		return nil, err
	}

	return database.TableNames()
}

func (m *Manager) TableDefinition(databaseName, tableName string) ([]record.ColumnDefinition, error) {
	database, err := m.findDatabase(databaseName)
	if err != nil {
		return nil, err
	}

	return database.ColumnDefinitions(tableName)
}

func (m *Manager) CreateTable(databaseName, tableName string, columns []record.ColumnInfo) error {
	database, err := m.findDatabase(databaseName)
	if err != nil {
		return err
	}

	return database.CreateTable(tableName, columns)
}

func (m *Manager) AddColumn(databaseName, tableName, columnName string, dataType record.DataType) error {
	database, err := m.findDatabase(databaseName)
	if err != nil {
		return err
	}

	return database.AddColumn(tableName, columnName, dataType)
}

func (m *Manager) InsertRow(databaseName, tableName string, values []record.Value) (table.RecordId, error) {
	database, err := m.findDatabase(databaseName)
	if err != nil {
		return 0, err
	}

	recordId, err := database.InsertRow(tableName, values)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInsertFailed, err)
	}

	return recordId, nil
}

func (m *Manager) SelectAll(databaseName, tableName string) (record.RowResult, error) {
	database, err := m.findDatabase(databaseName)
	if err != nil {
		return record.RowResult{}, err
	}

	return database.SelectAllColumns(tableName)
}

func (m *Manager) Select(databaseName, tableName string, columnNames []string) (record.RowResult, error) {
	database, err := m.findDatabase(databaseName)
	if err != nil {
		return record.RowResult{}, err
	}

	return database.SelectColumnsByName(tableName, columnNames)
}

// Execute parses one statement and dispatches it against the active
// database.
func (m *Manager) Execute(databaseName, input string) (QueryResult, error) {
	command, err := query.Parse(input)
	if err != nil {
		return nil, err
	}

	switch cmd := command.(type) {
	case query.CreateDatabase:
		if err := m.CreateDatabase(cmd.DatabaseName); err != nil {
			return nil, err
		}
		return CommandSuccessMessage("CREATE DATABASE"), nil

	case query.CreateTable:
		if err := m.CreateTable(databaseName, cmd.TableName, cmd.Columns); err != nil {
			return nil, err
		}
		return CommandSuccessMessage("CREATE TABLE"), nil

	case query.InsertInto:
		if _, err := m.InsertRow(databaseName, cmd.TableName, cmd.Values); err != nil {
			return nil, err
		}
		return InsertSuccess{Count: 1}, nil

	case query.Select:
		return m.executeSelect(databaseName, cmd)

	default:
		return nil, fmt.Errorf("unsupported command %T", command)
	}
}

func (m *Manager) executeSelect(databaseName string, cmd query.Select) (QueryResult, error) {
	database, err := m.findDatabase(databaseName)
	if err != nil {
		return nil, err
	}

	selectAll := slices.Equal(cmd.Identifiers, []string{"*"})

	if len(cmd.Where) == 0 {
		var result record.RowResult
		if selectAll {
			result, err = database.SelectAllColumns(cmd.TableName)
		} else {
			result, err = database.SelectColumnsByName(cmd.TableName, cmd.Identifiers)
		}
		if err != nil {
			return nil, err
		}

		return RowResult{result}, nil
	}

	// Conditions may reference columns outside the projection, so
	// filter the full row set first and project afterwards.
	full, err := database.SelectAllColumns(cmd.TableName)
	if err != nil {
		return nil, err
	}

	filtered, err := filterRows(full, cmd.Where)
	if err != nil {
		return nil, err
	}

	if selectAll {
		return RowResult{filtered}, nil
	}

	projected, err := projectRows(filtered, cmd.Identifiers)
	if err != nil {
		return nil, err
	}

	return RowResult{projected}, nil
}

// filterRows keeps the rows matching every equality condition. Rows
// from epochs without the condition's column never match.
func filterRows(result record.RowResult, conditions []query.Condition) (record.RowResult, error) {
	positions := make([]int, 0, len(conditions))
	for _, condition := range conditions {
		position := slices.Index(result.Columns(), condition.Column)
		if position < 0 {
			return record.RowResult{}, fmt.Errorf("%w: %q", table.ErrColumnDoesNotExist, condition.Column)
		}
		positions = append(positions, position)
	}

	rows := []record.RowValues{}
	for _, row := range result.Rows() {
		matches := true
		for i, condition := range conditions {
			value := row[positions[i]]
			if value == nil || !value.Equal(condition.Value) {
				matches = false
				break
			}
		}

		if matches {
			rows = append(rows, row)
		}
	}

	return record.NewRowResult(result.Columns(), rows), nil
}

func projectRows(result record.RowResult, columnNames []string) (record.RowResult, error) {
	positions := make([]int, 0, len(columnNames))
	for _, name := range columnNames {
		position := slices.Index(result.Columns(), name)
		if position < 0 {
			return record.RowResult{}, fmt.Errorf("%w: %q", table.ErrColumnDoesNotExist, name)
		}
		positions = append(positions, position)
	}

	rows := make([]record.RowValues, 0, result.Count())
	for _, row := range result.Rows() {
		values := make(record.RowValues, 0, len(positions))
		for _, position := range positions {
			values = append(values, row[position])
		}
		rows = append(rows, values)
	}

	return record.NewRowResult(slices.Clone(columnNames), rows), nil
}

func (m *Manager) findDatabase(name string) (*Database, error) {
	databaseIds, err := m.databaseIds()
	if err != nil {
		return nil, err
	}

	for _, pageId := range databaseIds {
		database := LoadDatabase(m.pm, pageId)

		existing, err := database.Name()
		if err != nil {
			return nil, err
		}
		if existing == name {
			return database, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrDatabaseDoesNotExist, name)
}

func (m *Manager) databaseIds() ([]page.PageId, error) {
	guard, err := m.pm.Read(ROOT_PAGE_ID)
	if err != nil {
		return nil, err
	}
	defer guard.Drop()

	return decodePageIdList(guard.Metadata())
}

func (m *Manager) storeDatabaseIds(databaseIds []page.PageId) error {
	guard, err := m.pm.Write(ROOT_PAGE_ID)
	if err != nil {
		return err
	}
	defer guard.Drop()

	return encodePageIdList(guard.Metadata(), databaseIds)
}

// Manager is the root catalog and command dispatcher. It holds no
// state beyond the page manager reference, the database list is read
// from the root page on every access.
type Manager struct {
	pm *page.PageManager
}
