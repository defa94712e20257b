package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

const searchCatalog = `{
	"Weapon Smithing": [
		{"name": "Iron Sword", "level": "2", "url": "https://x/y"},
		{"name": "Obsidian Dagger", "level": "4"},
		{"name": "Bronze Dagger", "level": "1"},
		{"name": "Iron Dagger", "level": "2"}
	],
	"Jewelry Cutting": [
		{"name": "Dagger Pendant", "level": "3"},
		{"name": "Iron Sword", "level": "9"}
	],
	"Alchemy": [{"name": "Dagger Oil", "level": "1"}]
}`

func newSearchIndex(t *testing.T, cacheSize int) *Index {
	t.Helper()
	return NewIndex(Normalize([]byte(searchCatalog), nil), nil, cacheSize)
}

func TestExactLookup(t *testing.T) {
	idx := newSearchIndex(t, 0)

	rec, ok := idx.ExactLookup("iron sword")
	require.True(t, ok)
	assert.Equal(t, "Jewelry Cutting", rec.Profession, "first profession in sort order wins")
	assert.Equal(t, "9", rec.Level)

	_, ok = idx.ExactLookup("iron")
	assert.False(t, ok)
	_, ok = idx.ExactLookup("")
	assert.False(t, ok)
}

func TestSubstringSearchAndResolve(t *testing.T) {
	idx := newSearchIndex(t, 0)

	rec, ok := idx.SubstringSearch("DAGGER")
	require.True(t, ok)
	assert.Equal(t, "Dagger Oil", rec.Name)

	rec, exact, found := idx.Resolve("obsidian")
	require.True(t, found)
	assert.False(t, exact)
	assert.Equal(t, "Obsidian Dagger", rec.Name)

	rec, exact, found = idx.Resolve("Bronze Dagger")
	require.True(t, found)
	assert.True(t, exact)
	assert.Equal(t, "Weapon Smithing", rec.Profession)

	_, _, found = idx.Resolve("mithril")
	assert.False(t, found)
}

func TestSearch(t *testing.T) {
	for _, cacheSize := range []int{0, 8} {
		idx := newSearchIndex(t, cacheSize)

		hits := idx.Search("dagger", nil, 5)
		names := hitNames(hits)
		assert.Equal(t, []string{"Dagger Oil", "Dagger Pendant", "Bronze Dagger", "Iron Dagger", "Obsidian Dagger"}, names)

		for i := 0; i < 3; i++ {
			again := idx.Search("dagger", nil, 5)
			assert.Equal(t, hits, again, "search is deterministic")
			assert.LessOrEqual(t, len(again), 5)
		}

		assert.Len(t, idx.Search("dagger", nil, 2), 2)
		assert.Empty(t, idx.Search("", nil, 5))
		assert.Empty(t, idx.Search("   ", nil, 5))

		scoped := idx.Search("dagger", []string{"weaponsmith"}, 10)
		assert.Equal(t, []string{"Bronze Dagger", "Iron Dagger", "Obsidian Dagger"}, hitNames(scoped))

		first := idx.Search("iron sword", nil, 0)[1]
		assert.Equal(t, crafting.SearchHit{Name: "Iron Sword", Profession: "Weapon Smithing", Link: "https://x/y", Level: "2"}, first)
	}
}

func TestSearch_ResultsAreCopies(t *testing.T) {
	idx := newSearchIndex(t, 8)
	hits := idx.Search("dagger", nil, 5)
	hits[0].Name = "mutated"
	assert.Equal(t, "Dagger Oil", idx.Search("dagger", nil, 5)[0].Name)
}

func TestRebuild(t *testing.T) {
	idx := newSearchIndex(t, 8)
	require.NotEmpty(t, idx.Search("dagger", nil, 5))

	idx.Rebuild(Normalize([]byte(`[{"name": "Mithril Dagger", "profession": "Weapon Smithing"}]`), nil))

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, []string{"Mithril Dagger"}, hitNames(idx.Search("dagger", nil, 5)), "cache purged on rebuild")
	_, ok := idx.ExactLookup("Iron Sword")
	assert.False(t, ok)
}

func TestNames(t *testing.T) {
	idx := newSearchIndex(t, 0)
	assert.Equal(t, []string{"Iron Sword", "Iron Dagger"}, idx.Names("IRON"))
	assert.Nil(t, idx.Names(""))
}

func hitNames(hits []crafting.SearchHit) []string {
	names := make([]string, 0, len(hits))
	for _, h := range hits {
		names = append(names, h.Name)
	}
	return names
}
