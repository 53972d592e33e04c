package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := OpenBackend(file, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestOpenBackend_EmptyPath(t *testing.T) {
	_, err := OpenBackend("", false)
	require.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("successful transaction", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("failed transaction", func(t *testing.T) {
		testErr := assert.AnError
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return testErr
		})
		assert.Equal(t, testErr, err)
	})
}

func TestCountPrefix(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range []string{"a:1", "a:2", "b:1"} {
			if err := tx.Set([]byte(key), []byte("v")); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	n, err := backend.countPrefix([]byte("a:"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
