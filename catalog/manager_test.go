package catalog

import (
	"fmt"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"bsql/record"
	"bsql/storage/page"
	"bsql/table"
)

func newMemoryManager(t *testing.T) *Manager {
	t.Helper()

	pm, err := page.Open(page.MEMORY)
	assert.NoError(t, err)

	manager, err := NewManager(pm)
	assert.NoError(t, err)
	return manager
}

func TestCreateDatabase(t *testing.T) {
	t.Run("creates and lists databases", func(t *testing.T) {
		manager := newMemoryManager(t)

		assert.NoError(t, manager.CreateDatabase("drinkr"))
		assert.NoError(t, manager.CreateDatabase("foodr"))

		names, err := manager.DatabaseNames()
		assert.NoError(t, err)
		assert.Equal(t, []string{"drinkr", "foodr"}, names)

		assert.True(t, manager.DatabaseExists("drinkr"))
		assert.False(t, manager.DatabaseExists("sleepr"))
	})

	t.Run("duplicate names fail", func(t *testing.T) {
		manager := newMemoryManager(t)

		assert.NoError(t, manager.CreateDatabase("drinkr"))
		assert.ErrorIs(t, manager.CreateDatabase("drinkr"), ErrDatabaseAlreadyExists)
	})

	t.Run("overlong names fail", func(t *testing.T) {
		manager := newMemoryManager(t)

		err := manager.CreateDatabase(strings.Repeat("d", MAX_DATABASE_NAME_LEN+1))
		assert.ErrorIs(t, err, ErrDatabaseNameTooLong)

		assert.NoError(t, manager.CreateDatabase(strings.Repeat("d", MAX_DATABASE_NAME_LEN)))
	})
}

func TestCreateTable(t *testing.T) {
	t.Run("creates a table with initial columns", func(t *testing.T) {
		manager := newMemoryManager(t)
		assert.NoError(t, manager.CreateDatabase("drinkr"))

		err := manager.CreateTable("drinkr", "brands", []record.ColumnInfo{
			{Name: "brand_id", DataType: record.Integer},
		})
		assert.NoError(t, err)

		names, err := manager.DatabaseTableNames("drinkr")
		assert.NoError(t, err)
		assert.Equal(t, []string{"brands"}, names)

		definition, err := manager.TableDefinition("drinkr", "brands")
		assert.NoError(t, err)
		assert.Equal(t, []record.ColumnDefinition{
			record.NewColumnDefinition(0, record.Integer, "brand_id"),
		}, definition)
	})

	t.Run("duplicate tables fail", func(t *testing.T) {
		manager := newMemoryManager(t)
		assert.NoError(t, manager.CreateDatabase("drinkr"))

		assert.NoError(t, manager.CreateTable("drinkr", "brands", nil))
		assert.ErrorIs(t, manager.CreateTable("drinkr", "brands", nil), ErrTableAlreadyExists)
	})

	t.Run("unknown databases fail", func(t *testing.T) {
		manager := newMemoryManager(t)

		err := manager.CreateTable("nope", "brands", nil)
		assert.ErrorIs(t, err, ErrDatabaseDoesNotExist)
	})
}

func TestExecute(t *testing.T) {
	t.Run("create insert select end to end", func(t *testing.T) {
		manager := newMemoryManager(t)

		result, err := manager.Execute("", "CREATE DATABASE d;")
		assert.NoError(t, err)
		assert.Equal(t, CommandSuccessMessage("CREATE DATABASE"), result)

		result, err = manager.Execute("d", "CREATE TABLE t (x integer);")
		assert.NoError(t, err)
		assert.Equal(t, CommandSuccessMessage("CREATE TABLE"), result)

		result, err = manager.Execute("d", "INSERT INTO t VALUES (5);")
		assert.NoError(t, err)
		assert.Equal(t, InsertSuccess{Count: 1}, result)

		result, err = manager.Execute("d", "SELECT * FROM t;")
		assert.NoError(t, err)

		rows, ok := result.(RowResult)
		assert.True(t, ok)
		assert.Equal(t, []string{"x"}, rows.Columns())
		assert.Equal(t, 1, rows.Count())
		assert.Equal(t, record.NewInteger(5), *rows.Rows()[0][0])
	})

	t.Run("inserting many rows and selecting them back", func(t *testing.T) {
		manager := newMemoryManager(t)

		_, err := manager.Execute("", "CREATE DATABASE drinkr;")
		assert.NoError(t, err)
		_, err = manager.Execute("drinkr", "CREATE TABLE brands (brand_id integer);")
		assert.NoError(t, err)

		numberOfBrands := 32
		for brandId := 0; brandId < numberOfBrands; brandId++ {
			_, err := manager.Execute("drinkr", fmt.Sprintf("INSERT INTO brands VALUES (%d);", brandId))
			assert.NoError(t, err)
		}

		result, err := manager.Execute("drinkr", "SELECT * FROM brands;")
		assert.NoError(t, err)

		rows, ok := result.(RowResult)
		assert.True(t, ok)
		assert.Equal(t, numberOfBrands, rows.Count())
	})

	t.Run("select projects named columns", func(t *testing.T) {
		manager := newMemoryManager(t)

		_, err := manager.Execute("", "CREATE DATABASE d;")
		assert.NoError(t, err)
		_, err = manager.Execute("d", "CREATE TABLE users (age integer, birthyear integer);")
		assert.NoError(t, err)
		_, err = manager.Execute("d", "INSERT INTO users VALUES (25, 99);")
		assert.NoError(t, err)

		result, err := manager.Execute("d", "SELECT birthyear FROM users;")
		assert.NoError(t, err)

		rows := result.(RowResult)
		assert.Equal(t, []string{"birthyear"}, rows.Columns())
		assert.Equal(t, record.NewInteger(99), *rows.Rows()[0][0])
	})

	t.Run("select with unknown columns fails without mutating state", func(t *testing.T) {
		manager := newMemoryManager(t)

		_, err := manager.Execute("", "CREATE DATABASE d;")
		assert.NoError(t, err)
		_, err = manager.Execute("d", "CREATE TABLE t (x integer);")
		assert.NoError(t, err)

		_, err = manager.Execute("d", "SELECT y FROM t;")
		assert.ErrorIs(t, err, table.ErrColumnDoesNotExist)

		definition, err := manager.TableDefinition("d", "t")
		assert.NoError(t, err)
		assert.Len(t, definition, 1)
	})

	t.Run("where filters on equality", func(t *testing.T) {
		manager := newMemoryManager(t)

		_, err := manager.Execute("", "CREATE DATABASE d;")
		assert.NoError(t, err)
		_, err = manager.Execute("d", "CREATE TABLE users (age integer, id integer);")
		assert.NoError(t, err)

		for i, age := range []int{25, 40, 25} {
			_, err = manager.Execute("d", fmt.Sprintf("INSERT INTO users VALUES (%d, %d);", age, i))
			assert.NoError(t, err)
		}

		result, err := manager.Execute("d", "SELECT id FROM users WHERE age = 25;")
		assert.NoError(t, err)

		rows := result.(RowResult)
		assert.Equal(t, []string{"id"}, rows.Columns())
		assert.Equal(t, 2, rows.Count())
		assert.Equal(t, record.NewInteger(0), *rows.Rows()[0][0])
		assert.Equal(t, record.NewInteger(2), *rows.Rows()[1][0])
	})

	t.Run("insert against a missing table fails typed", func(t *testing.T) {
		manager := newMemoryManager(t)

		_, err := manager.Execute("", "CREATE DATABASE d;")
		assert.NoError(t, err)

		_, err = manager.Execute("d", "INSERT INTO nope VALUES (1);")
		assert.ErrorIs(t, err, ErrInsertFailed)
		assert.ErrorIs(t, err, ErrTableDoesNotExist)
	})

	t.Run("schema evolution shows sparse rows through select star", func(t *testing.T) {
		manager := newMemoryManager(t)

		_, err := manager.Execute("", "CREATE DATABASE d;")
		assert.NoError(t, err)
		_, err = manager.Execute("d", "CREATE TABLE t (a integer);")
		assert.NoError(t, err)
		_, err = manager.Execute("d", "INSERT INTO t VALUES (1);")
		assert.NoError(t, err)

		assert.NoError(t, manager.AddColumn("d", "t", "b", record.Integer))
		_, err = manager.Execute("d", "INSERT INTO t VALUES (2, 3);")
		assert.NoError(t, err)

		result, err := manager.Execute("d", "SELECT * FROM t;")
		assert.NoError(t, err)

		rows := result.(RowResult)
		assert.Equal(t, []string{"a", "b"}, rows.Columns())
		assert.Equal(t, 2, rows.Count())
		assert.Nil(t, rows.Rows()[0][1])
		assert.Equal(t, record.NewInteger(3), *rows.Rows()[1][1])
	})
}

func TestPersistence(t *testing.T) {
	t.Run("commit and reload reproduces the whole catalog", func(t *testing.T) {
		dbFile := path.Join(t.TempDir(), "test.db")

		pm, err := page.Open(dbFile)
		assert.NoError(t, err)

		manager, err := NewManager(pm)
		assert.NoError(t, err)

		_, err = manager.Execute("", "CREATE DATABASE drinkr;")
		assert.NoError(t, err)
		_, err = manager.Execute("drinkr", "CREATE TABLE brands (brand_id integer, rating integer);")
		assert.NoError(t, err)
		_, err = manager.Execute("drinkr", "INSERT INTO brands VALUES (1, 5);")
		assert.NoError(t, err)
		_, err = manager.Execute("drinkr", "INSERT INTO brands VALUES (2, 3);")
		assert.NoError(t, err)

		assert.NoError(t, pm.Commit())
		assert.NoError(t, pm.Close())

		reopenedPm, err := page.Open(dbFile)
		assert.NoError(t, err)
		defer func() {
			_ = reopenedPm.Close()
		}()

		reopened, err := NewManager(reopenedPm)
		assert.NoError(t, err)

		names, err := reopened.DatabaseNames()
		assert.NoError(t, err)
		assert.Equal(t, []string{"drinkr"}, names)

		tableNames, err := reopened.DatabaseTableNames("drinkr")
		assert.NoError(t, err)
		assert.Equal(t, []string{"brands"}, tableNames)

		result, err := reopened.Execute("drinkr", "SELECT * FROM brands;")
		assert.NoError(t, err)

		rows := result.(RowResult)
		assert.Equal(t, []string{"brand_id", "rating"}, rows.Columns())
		assert.Equal(t, 2, rows.Count())
		assert.Equal(t, record.NewInteger(1), *rows.Rows()[0][0])
		assert.Equal(t, record.NewInteger(5), *rows.Rows()[0][1])
	})
}
