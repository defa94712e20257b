package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
)

func loadedStore(t *testing.T, doc string) (*Store, *docstore.Memory) {
	t.Helper()
	backend := docstore.NewMemory()
	require.NoError(t, backend.Save(context.Background(), docstore.KeyProfiles, []byte(doc)))
	s := NewStore(backend)
	require.NoError(t, s.Load(context.Background()))
	return s, backend
}

func TestWishlistAndDisplayName(t *testing.T) {
	s, _ := loadedStore(t, `{
		"42": {"name": "Aria", "wishlist": ["Obsidian Dagger", "Iron Sword"]},
		"7": {"wishlist": "not a list"}
	}`)

	assert.Equal(t, []string{"Obsidian Dagger", "Iron Sword"}, s.Wishlist("42"))
	assert.Equal(t, "Aria", s.DisplayName("42"))
	assert.Empty(t, s.Wishlist("7"))
	assert.Equal(t, "7", s.DisplayName("7"))
	assert.Empty(t, s.Wishlist("missing"))
}

func TestAddWishlistItem(t *testing.T) {
	ctx := context.Background()
	s, backend := loadedStore(t, `{"42": {"name": "Aria", "guild": {"rank": 3}}}`)

	ok, err := s.AddWishlistItem(ctx, "42", "Iron Sword")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AddWishlistItem(ctx, "42", " Iron Sword ")
	require.NoError(t, err)
	assert.False(t, ok, "exact duplicate after trimming")

	ok, err = s.AddWishlistItem(ctx, "42", "iron sword")
	require.NoError(t, err)
	assert.True(t, ok, "dedup is case-sensitive")

	ok, err = s.AddWishlistItem(ctx, "42", "  ")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"Iron Sword", "iron sword"}, s.Wishlist("42"))

	raw, _, err := backend.Load(ctx, docstore.KeyProfiles)
	require.NoError(t, err)
	assert.JSONEq(t, `{"42": {"name": "Aria", "guild": {"rank": 3}, "wishlist": ["Iron Sword", "iron sword"]}}`, string(raw))
}

func TestAddWishlistItem_NewProfile(t *testing.T) {
	s := NewStore(docstore.NewMemory())
	ok, err := s.AddWishlistItem(context.Background(), "9", "Bronze Dagger")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Bronze Dagger"}, s.Wishlist("9"))
}

func TestRemoveWishlistItem(t *testing.T) {
	ctx := context.Background()
	s, _ := loadedStore(t, `{"42": {"wishlist": ["A", "B", "C"]}}`)

	ok, err := s.RemoveWishlistItem(ctx, "42", "B")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"A", "C"}, s.Wishlist("42"))

	ok, err = s.RemoveWishlistItem(ctx, "42", "b")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, it := range []string{"A", "C"} {
		_, err = s.RemoveWishlistItem(ctx, "42", it)
		require.NoError(t, err)
	}
	assert.Empty(t, s.Wishlist("42"))
}

func TestCanonicalUserIDs(t *testing.T) {
	ctx := context.Background()
	s, backend := loadedStore(t, `{"0042": {"name": "Aria", "wishlist": ["A"]}}`)

	assert.Equal(t, "Aria", s.DisplayName("42"))
	ok, err := s.AddWishlistItem(ctx, "042", "B")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, s.Wishlist("42"))

	body, _, err := backend.Load(ctx, docstore.KeyProfiles)
	require.NoError(t, err)
	assert.JSONEq(t, `{"42": {"name": "Aria", "wishlist": ["A", "B"]}}`, string(body))
}

var errDiskFull = errors.New("disk full")

type failingBackend struct {
	*docstore.Memory
	fail bool
}

func (f *failingBackend) Save(ctx context.Context, key string, body []byte) error {
	if f.fail {
		return errDiskFull
	}
	return f.Memory.Save(ctx, key, body)
}

func TestSaveFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	backend := &failingBackend{Memory: docstore.NewMemory()}
	s := NewStore(backend)

	ok, err := s.AddWishlistItem(ctx, "42", "A")
	require.NoError(t, err)
	require.True(t, ok)

	backend.fail = true
	ok, err = s.AddWishlistItem(ctx, "42", "B")
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, ok)
	ok, err = s.RemoveWishlistItem(ctx, "42", "A")
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, ok)
	ok, err = s.AddWishlistItem(ctx, "7", "C")
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, ok)

	assert.Equal(t, []string{"A"}, s.Wishlist("42"))
	assert.Empty(t, s.Wishlist("7"))
}
