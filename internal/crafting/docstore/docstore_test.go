package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Names []string `json:"names"`
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	ctx := context.Background()

	file, err := NewFile(filepath.Join(t.TempDir(), "docs"))
	require.NoError(t, err)

	sqlite, err := Open(ctx, Options{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "crafting.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	out := map[string]Backend{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": sqlite,
	}

	if addr := os.Getenv("CRAFTING_TEST_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		out["redis"] = NewRedis(client, "crafting-test:"+t.Name()+":")
		t.Cleanup(func() { _ = client.Close() })
	}
	return out
}

func TestBackends_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var got doc
			ok, err := LoadJSON(ctx, b, KeyProfiles, &got)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, SaveJSON(ctx, b, KeyProfiles, doc{Names: []string{"a"}}))
			require.NoError(t, SaveJSON(ctx, b, KeyProfiles, doc{Names: []string{"a", "b"}}))

			ok, err = LoadJSON(ctx, b, KeyProfiles, &got)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []string{"a", "b"}, got.Names)
		})
	}
}

func TestLoadJSON_Malformed(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	require.NoError(t, b.Save(ctx, KeyMarket, []byte(`{not json`)))

	var got []string
	_, err := LoadJSON(ctx, b, KeyMarket, &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding document market")
}

func TestFile_LeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.Save(ctx, KeyMarket, []byte(`[]`)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "market.json", entries[0].Name())
}

func TestFile_RejectsPathKeys(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../x", "a/b", ".hidden"} {
		err := f.Save(context.Background(), key, []byte(`{}`))
		assert.Error(t, err, "key %q", key)
	}
}

func TestSQLite_Metadata(t *testing.T) {
	ctx := context.Background()
	b, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "crafting.db"))
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	var rec MetadataRecorder = b
	require.NoError(t, rec.SetSyncMetadata(ctx, "catalog_count", "3"))
	value, err := rec.GetSyncMetadata(ctx, "catalog_count")
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd"})
	require.Error(t, err)
}
