package page

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageManager(t *testing.T) {
	t.Run("create assigns sequential page ids", func(t *testing.T) {
		pm, err := Open(MEMORY)
		assert.NoError(t, err)

		assert.Equal(t, PageId(0), pm.CreatePage())
		assert.Equal(t, PageId(1), pm.CreatePage())
		assert.Equal(t, PageId(2), pm.CreatePage())
		assert.Equal(t, 3, pm.PageCount())
	})

	t.Run("reading a page that does not exist fails", func(t *testing.T) {
		pm, _ := Open(MEMORY)

		_, err := pm.Read(0)
		assert.Error(t, err)

		pm.CreatePage()
		guard, err := pm.Read(0)
		assert.NoError(t, err)
		guard.Drop()
	})

	t.Run("pages are zero initialized", func(t *testing.T) {
		pm, _ := Open(MEMORY)
		pageId := pm.CreatePage()

		guard, err := pm.Read(pageId)
		assert.NoError(t, err)
		defer guard.Drop()

		assert.Equal(t, make([]byte, PAGE_SIZE), guard.Metadata())
		assert.Equal(t, make([]byte, PAGE_SIZE), guard.Data())
	})

	t.Run("writes through a guard are visible to readers", func(t *testing.T) {
		pm, _ := Open(MEMORY)
		pageId := pm.CreatePage()

		writeGuard, err := pm.Write(pageId)
		assert.NoError(t, err)
		copy(writeGuard.Metadata(), []byte("meta"))
		copy(writeGuard.Data(), []byte("data"))
		writeGuard.Drop()

		readGuard, err := pm.Read(pageId)
		assert.NoError(t, err)
		defer readGuard.Drop()

		assert.Equal(t, []byte("meta"), readGuard.Metadata()[:4])
		assert.Equal(t, []byte("data"), readGuard.Data()[:4])
	})
}

func TestCommit(t *testing.T) {
	t.Run("commit then reopen reproduces every page", func(t *testing.T) {
		dbFile := path.Join(t.TempDir(), "test.db")

		pm, err := Open(dbFile)
		assert.NoError(t, err)

		for i := 0; i < 3; i++ {
			pageId := pm.CreatePage()
			guard, err := pm.Write(pageId)
			assert.NoError(t, err)

			guard.Metadata()[0] = byte(i + 1)
			guard.Data()[0] = byte(10 * (i + 1))
			guard.Drop()
		}

		assert.NoError(t, pm.Commit())
		assert.NoError(t, pm.Close())

		fileInfo, err := os.Stat(dbFile)
		assert.NoError(t, err)
		assert.Equal(t, int64(3*CHUNK_SIZE), fileInfo.Size())

		reopened, err := Open(dbFile)
		assert.NoError(t, err)
		defer func() {
			_ = reopened.Close()
		}()

		assert.Equal(t, 3, reopened.PageCount())
		for i := 0; i < 3; i++ {
			guard, err := reopened.Read(PageId(i))
			assert.NoError(t, err)

			assert.Equal(t, byte(i+1), guard.Metadata()[0])
			assert.Equal(t, byte(10*(i+1)), guard.Data()[0])
			guard.Drop()
		}
	})

	t.Run("commit is a no-op in memory mode", func(t *testing.T) {
		pm, err := Open(MEMORY)
		assert.NoError(t, err)

		pm.CreatePage()
		assert.NoError(t, pm.Commit())
	})

	t.Run("opening a truncated file fails", func(t *testing.T) {
		dbFile := path.Join(t.TempDir(), "test.db")
		assert.NoError(t, os.WriteFile(dbFile, make([]byte, CHUNK_SIZE-1), 0644))

		_, err := Open(dbFile)
		assert.Error(t, err)
	})
}
