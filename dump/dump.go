// Package dump writes and restores logical snapshots of a catalog. A
// snapshot is a msgpack stream holding every database, its table
// definitions and all rows, independent of the page layout, so it
// survives format changes that the raw database file would not.
package dump

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack"

	"bsql/catalog"
	"bsql/record"
)

// Write encodes the full contents of the catalog onto w.
func Write(w io.Writer, manager *catalog.Manager) error {
	databaseNames, err := manager.DatabaseNames()
	if err != nil {
		return fmt.Errorf("dumping databases: %w", err)
	}

	snap := snapshot{Databases: make([]databaseSnapshot, 0, len(databaseNames))}
	for _, databaseName := range databaseNames {
		databaseSnap, err := snapshotDatabase(manager, databaseName)
		if err != nil {
			return err
		}
		snap.Databases = append(snap.Databases, databaseSnap)
	}

	if err := msgpack.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// Restore replays the snapshot read from r into the catalog. Columns are
// re-added one at a time in their original order, and each row is inserted
// right after its last column appears, so rows keep the sparse shape they
// had when the snapshot was taken.
func Restore(r io.Reader, manager *catalog.Manager) error {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	for _, databaseSnap := range snap.Databases {
		if err := restoreDatabase(manager, databaseSnap); err != nil {
			return fmt.Errorf("restoring database %s: %w", databaseSnap.Name, err)
		}
	}
	return nil
}

func snapshotDatabase(manager *catalog.Manager, databaseName string) (databaseSnapshot, error) {
	tableNames, err := manager.DatabaseTableNames(databaseName)
	if err != nil {
		return databaseSnapshot{}, fmt.Errorf("dumping database %s: %w", databaseName, err)
	}

	databaseSnap := databaseSnapshot{
		Name:   databaseName,
		Tables: make([]tableSnapshot, 0, len(tableNames)),
	}
	for _, tableName := range tableNames {
		tableSnap, err := snapshotTable(manager, databaseName, tableName)
		if err != nil {
			return databaseSnapshot{}, fmt.Errorf("dumping table %s.%s: %w", databaseName, tableName, err)
		}
		databaseSnap.Tables = append(databaseSnap.Tables, tableSnap)
	}
	return databaseSnap, nil
}

func snapshotTable(manager *catalog.Manager, databaseName, tableName string) (tableSnapshot, error) {
	definition, err := manager.TableDefinition(databaseName, tableName)
	if err != nil {
		return tableSnapshot{}, err
	}

	tableSnap := tableSnapshot{Name: tableName}
	for _, column := range definition {
		tableSnap.Columns = append(tableSnap.Columns, columnSnapshot{
			Name:   column.Name(),
			TypeID: column.DataType().TypeID(),
		})
	}

	result, err := manager.SelectAll(databaseName, tableName)
	if err != nil {
		return tableSnapshot{}, err
	}
	for _, row := range result.Rows() {
		encoded := make([]*uint8, len(row))
		for i, value := range row {
			if value == nil {
				continue
			}
			integer := value.Integer()
			encoded[i] = &integer
		}
		tableSnap.Rows = append(tableSnap.Rows, encoded)
	}
	return tableSnap, nil
}

func restoreDatabase(manager *catalog.Manager, databaseSnap databaseSnapshot) error {
	if err := manager.CreateDatabase(databaseSnap.Name); err != nil {
		return err
	}

	for _, tableSnap := range databaseSnap.Tables {
		if err := restoreTable(manager, databaseSnap.Name, tableSnap); err != nil {
			return fmt.Errorf("table %s: %w", tableSnap.Name, err)
		}
	}
	return nil
}

// restoreTable rebuilds a table column by column. Rows are bucketed by the
// number of leading values they carry, which is exactly the column count
// the table had when the row was first inserted.
func restoreTable(manager *catalog.Manager, databaseName string, tableSnap tableSnapshot) error {
	if err := manager.CreateTable(databaseName, tableSnap.Name, nil); err != nil {
		return err
	}

	rowsByWidth := make(map[int][][]*uint8)
	for _, row := range tableSnap.Rows {
		width := rowWidth(row)
		rowsByWidth[width] = append(rowsByWidth[width], row)
	}

	for width, column := range tableSnap.Columns {
		dataType, err := record.DataTypeFromID(column.TypeID)
		if err != nil {
			return err
		}
		if err := manager.AddColumn(databaseName, tableSnap.Name, column.Name, dataType); err != nil {
			return err
		}

		for _, row := range rowsByWidth[width+1] {
			values := make([]record.Value, width+1)
			for i := 0; i < width+1; i++ {
				values[i] = record.NewInteger(*row[i])
			}
			if _, err := manager.InsertRow(databaseName, tableSnap.Name, values); err != nil {
				return err
			}
		}
	}
	return nil
}

// rowWidth is the index of the last set value plus one. Values past it are
// nil padding added when the row was normalized against newer columns.
func rowWidth(row []*uint8) int {
	for i := len(row) - 1; i >= 0; i-- {
		if row[i] != nil {
			return i + 1
		}
	}
	return 0
}

type snapshot struct {
	Databases []databaseSnapshot `msgpack:"databases"`
}

type databaseSnapshot struct {
	Name   string          `msgpack:"name"`
	Tables []tableSnapshot `msgpack:"tables"`
}

type tableSnapshot struct {
	Name    string           `msgpack:"name"`
	Columns []columnSnapshot `msgpack:"columns"`
	Rows    [][]*uint8       `msgpack:"rows"`
}

type columnSnapshot struct {
	Name   string `msgpack:"name"`
	TypeID uint8  `msgpack:"type_id"`
}
