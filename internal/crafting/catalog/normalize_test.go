package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

const flatCatalog = `[
	{"name": "Obsidian Dagger", "profession": "Weaponsmithing", "level": 3, "url": "https://x/obsidian"},
	{"name": "iron sword", "profession": "Weapon Smithing", "level": "2", "url": "https://x/iron"},
	{"name": "Bronze Dagger", "profession": "weapon-smithing", "level": "1"},
	{"name": "", "profession": "Mining"},
	{"profession": "Mining", "level": "1"},
	"not an object",
	42,
	{"name": "Copper Ingot", "level": "1", "link": "https://x/copper"},
	{"name": "Healing Draught", "profession": "Alchemist", "level": {"bad": true}}
]`

const groupedCatalog = `{
	"Weapon Smithing": [
		{"name": "Iron Sword", "level": "2", "url": "https://x/y"},
		{"name": "Apple Blade", "level": "1"}
	],
	"armoursmith": [{"name": "Iron Helm", "level": "2"}],
	"Cooking": "oops",
	"Mining": [null, {"level": "1"}]
}`

func TestNormalize_Flat(t *testing.T) {
	cat := Normalize([]byte(flatCatalog), nil)

	assert.Equal(t, []string{"Alchemy", "Unknown", "Weapon Smithing"}, cat.Professions)
	assert.Equal(t, 5, cat.Len())

	want := []crafting.RecipeRecord{
		{Name: "Bronze Dagger", Profession: "Weapon Smithing", Level: "1"},
		{Name: "iron sword", Profession: "Weapon Smithing", Level: "2", URL: "https://x/iron"},
		{Name: "Obsidian Dagger", Profession: "Weapon Smithing", Level: "3", URL: "https://x/obsidian"},
	}
	if diff := cmp.Diff(want, cat.Recipes["Weapon Smithing"]); diff != "" {
		t.Errorf("Weapon Smithing recipes mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []crafting.RecipeRecord{
		{Name: "Copper Ingot", Profession: "Unknown", Level: "1", URL: "https://x/copper"},
	}, cat.Recipes["Unknown"])
	assert.Equal(t, "", cat.Recipes["Alchemy"][0].Level)
}

func TestNormalize_Grouped(t *testing.T) {
	cat := Normalize([]byte(groupedCatalog), nil)

	assert.Equal(t, []string{"Armor Smithing", "Weapon Smithing"}, cat.Professions)
	assert.Equal(t, "Apple Blade", cat.Recipes["Weapon Smithing"][0].Name)
	assert.Equal(t, "Weapon Smithing", cat.Recipes["Weapon Smithing"][0].Profession)
	assert.Equal(t, "Armor Smithing", cat.Recipes["Armor Smithing"][0].Profession)
}

func TestNormalize_KeepsDuplicates(t *testing.T) {
	cat := Normalize([]byte(`[
		{"name": "Rope", "profession": "Weaving", "level": "1"},
		{"name": "rope", "profession": "Weaving", "level": "2"},
		{"name": "Rope", "profession": "Weaving", "level": "3"}
	]`), nil)

	levels := []string{}
	for _, r := range cat.Recipes["Weaving"] {
		levels = append(levels, r.Level)
	}
	assert.Equal(t, []string{"1", "2", "3"}, levels, "stable sort keeps source order")
}

func TestNormalize_Malformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "{", "[1,2", "null", "true", `"catalog"`} {
		cat := Normalize([]byte(raw), nil)
		assert.Zero(t, cat.Len(), "input %q", raw)
		assert.Empty(t, cat.Professions)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for name, raw := range map[string]string{"flat": flatCatalog, "grouped": groupedCatalog} {
		t.Run(name, func(t *testing.T) {
			first := Normalize([]byte(raw), nil)
			again := Normalize([]byte(raw), nil)
			if diff := cmp.Diff(first, again); diff != "" {
				t.Fatalf("repeat normalization differs:\n%s", diff)
			}

			encoded, err := json.Marshal(first)
			require.NoError(t, err)
			renormalized := Normalize(encoded, nil)
			if diff := cmp.Diff(first, renormalized); diff != "" {
				t.Fatalf("normalizing normalized output differs:\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	b := docstore.NewMemory()

	cat, err := Load(ctx, b, nil)
	require.NoError(t, err)
	assert.Zero(t, cat.Len())

	require.NoError(t, b.Save(ctx, docstore.KeyCatalog, []byte(groupedCatalog)))
	cat, err = Load(ctx, b, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())
}
