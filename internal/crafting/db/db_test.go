package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenAndInit(context.Background(), filepath.Join(t.TempDir(), "data", "crafting.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	_, ok, err := database.GetDocument(ctx, "professions")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, database.PutDocument(ctx, "professions", []byte(`{"Mining":{"1":"3"}}`)))
	require.NoError(t, database.PutDocument(ctx, "professions", []byte(`{"Mining":{"1":"4"}}`)))

	body, ok, err := database.GetDocument(ctx, "professions")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"Mining":{"1":"4"}}`, string(body))
}

func TestSyncMetadata(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	value, err := database.GetSyncMetadata(ctx, "catalog_count")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, database.SetSyncMetadata(ctx, "catalog_count", "12"))
	require.NoError(t, database.SetSyncMetadata(ctx, "catalog_count", "13"))

	value, err = database.GetSyncMetadata(ctx, "catalog_count")
	require.NoError(t, err)
	assert.Equal(t, "13", value)
}

func TestInMemory(t *testing.T) {
	database, err := OpenAndInit(context.Background(), MemoryPath)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	require.NoError(t, database.PutDocument(context.Background(), "k", []byte(`{}`)))
	_, ok, err := database.GetDocument(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	require.NoError(t, database.PutDocument(ctx, "market", []byte(`[]`)))

	errAbort := errors.New("abort")
	err := database.InTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE documents SET body = '[1]' WHERE key = 'market'`); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	body, ok, err := database.GetDocument(ctx, "market")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(body))
}
