package professions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

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

func newLedger(t *testing.T) (*Ledger, *failingBackend) {
	t.Helper()
	b := &failingBackend{Memory: docstore.NewMemory()}
	return NewLedger(b, DefaultAliases(), 0), b
}

func TestSetUserProfession_Cap(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t)

	ok, err := l.SetUserProfession(ctx, "42", "Mining", 2)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = l.SetUserProfession(ctx, "42", "weaponsmith", 3)
	require.NoError(t, err)
	require.True(t, ok)

	before := l.GetUserProfessions("42")

	ok, err = l.SetUserProfession(ctx, "42", "Tailoring", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, l.GetUserProfessions("42"))
	assert.Empty(t, l.Holders("Tailoring"))

	ok, err = l.SetUserProfession(ctx, "42", "Weapon Smithing", 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []crafting.HeldProfession{
		{Name: "Mining", Tier: "2"},
		{Name: "Weapon Smithing", Tier: "5"},
	}, l.GetUserProfessions("42"))
}

func TestSetUserProfession_TierRange(t *testing.T) {
	l, _ := newLedger(t)
	for _, tier := range []int{0, 6, -1} {
		ok, err := l.SetUserProfession(context.Background(), "1", "Mining", tier)
		require.NoError(t, err)
		assert.False(t, ok, "tier %d", tier)
	}
	assert.Empty(t, l.GetUserProfessions("1"))
}

func TestRemoveUserProfession(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t)

	ok, err := l.RemoveUserProfession(ctx, "7", "Mining")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.SetUserProfession(ctx, "7", "Mining", 1)
	require.NoError(t, err)
	_, err = l.SetUserProfession(ctx, "7", "Cooking", 1)
	require.NoError(t, err)

	ok, err = l.RemoveUserProfession(ctx, "7", "miner")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.SetUserProfession(ctx, "7", "Fishing", 4)
	require.NoError(t, err)
	assert.True(t, ok, "a freed slot can be reused")
}

func TestTiers(t *testing.T) {
	ctx := context.Background()
	b := docstore.NewMemory()
	require.NoError(t, b.Save(ctx, docstore.KeyProfessions, []byte(
		`{"Mining":{"1":"3","2":"grandmaster"},"weaponsmithing":{"1":4}}`,
	)))

	l := NewLedger(b, nil, 0)
	require.NoError(t, l.Load(ctx))

	tier, ok := l.GetUserTier("1", "Mining")
	assert.True(t, ok)
	assert.Equal(t, 3, tier)

	tier, ok = l.GetUserTier("1", "Weapon Smithing")
	assert.True(t, ok)
	assert.Equal(t, 4, tier)

	_, ok = l.GetUserTier("2", "Mining")
	assert.False(t, ok, "non-numeric tier")
	display, ok := l.DisplayTier("2", "Mining")
	assert.True(t, ok)
	assert.Equal(t, "grandmaster", display)

	assert.True(t, l.CanLearnRecipe("1", "Mining", 3))
	assert.False(t, l.CanLearnRecipe("1", "Mining", 4))
	assert.False(t, l.CanLearnRecipe("2", "Mining", 1))
	assert.False(t, l.CanLearnRecipe("3", "Mining", 1))

	assert.Equal(t, []crafting.ProfessionEntry{
		{UserID: "1", Tier: "3"},
		{UserID: "2", Tier: "grandmaster"},
	}, l.Holders("Mining"))
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	l, b := newLedger(t)

	_, err := l.SetUserProfession(ctx, "9", "Alchemy", 2)
	require.NoError(t, err)

	reloaded := NewLedger(b, nil, 0)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, l.GetUserProfessions("9"), reloaded.GetUserProfessions("9"))

	b.fail = true
	ok, err := l.SetUserProfession(ctx, "9", "Alchemy", 5)
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, ok)
	tier, _ := l.GetUserTier("9", "Alchemy")
	assert.Equal(t, 2, tier, "failed save leaves state untouched")

	_, err = l.RemoveUserProfession(ctx, "9", "Alchemy")
	require.ErrorIs(t, err, errDiskFull)
	assert.Len(t, l.GetUserProfessions("9"), 1)
}

func TestSetUserProfession_CapAcrossIDForms(t *testing.T) {
	ctx := context.Background()
	l, b := newLedger(t)

	for _, prof := range []string{"Mining", "Fishing"} {
		ok, err := l.SetUserProfession(ctx, "42", prof, 1)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := l.SetUserProfession(ctx, "042", "Cooking", 1)
	require.NoError(t, err)
	assert.False(t, ok, "042 is user 42")

	tier, ok := l.GetUserTier("0042", "Mining")
	require.True(t, ok)
	assert.Equal(t, 1, tier)

	require.NoError(t, b.Save(ctx, docstore.KeyProfessions, []byte(`{"Mining": {"0042": "3"}}`)))
	require.NoError(t, l.Load(ctx))
	assert.Equal(t, []crafting.HeldProfession{{Name: "Mining", Tier: "3"}}, l.GetUserProfessions("42"))
}
