package catalog

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/professions"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// DefaultSearchLimit caps Search when no limit is given.
const DefaultSearchLimit = 25

type indexEntry struct {
	record crafting.RecipeRecord
	lower  string
}

// Index is a flattened, case-insensitive view of a Catalog.
// Entries keep catalog order: profession-sorted, then name-sorted.
type Index struct {
	mu      sync.RWMutex
	aliases *professions.Aliases
	catalog crafting.Catalog
	entries []indexEntry
	cache   *lru.Cache[string, []crafting.SearchHit]
}

// NewIndex creates an index over cat. cacheSize <= 0 disables search memoization.
func NewIndex(cat crafting.Catalog, aliases *professions.Aliases, cacheSize int) *Index {
	if aliases == nil {
		aliases = professions.DefaultAliases()
	}
	idx := &Index{aliases: aliases}
	if cacheSize > 0 {
		// lru.New only fails for non-positive sizes.
		idx.cache, _ = lru.New[string, []crafting.SearchHit](cacheSize)
	}
	idx.Rebuild(cat)
	return idx
}

// Rebuild replaces the index contents with cat and drops memoized searches.
func (idx *Index) Rebuild(cat crafting.Catalog) {
	entries := make([]indexEntry, 0, cat.Len())
	for _, prof := range cat.Professions {
		for _, r := range cat.Recipes[prof] {
			entries = append(entries, indexEntry{record: r, lower: strings.ToLower(r.Name)})
		}
	}

	idx.mu.Lock()
	idx.catalog = cat
	idx.entries = entries
	if idx.cache != nil {
		idx.cache.Purge()
	}
	idx.mu.Unlock()
}

// Catalog returns the catalog the index was built from.
func (idx *Index) Catalog() crafting.Catalog {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.catalog
}

// Len returns the number of indexed recipes.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// ExactLookup finds the first recipe whose name equals name, ignoring case.
// Names are not unique across professions; the earliest profession wins.
func (idx *Index) ExactLookup(name string) (crafting.RecipeRecord, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return crafting.RecipeRecord{}, false
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, e := range idx.entries {
		if e.lower == q {
			return e.record, true
		}
	}
	return crafting.RecipeRecord{}, false
}

// SubstringSearch finds the first recipe whose name contains name, ignoring case.
func (idx *Index) SubstringSearch(name string) (crafting.RecipeRecord, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return crafting.RecipeRecord{}, false
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, e := range idx.entries {
		if strings.Contains(e.lower, q) {
			return e.record, true
		}
	}
	return crafting.RecipeRecord{}, false
}

// Resolve tries ExactLookup and falls back to SubstringSearch.
// exact reports which of the two matched.
func (idx *Index) Resolve(name string) (rec crafting.RecipeRecord, exact, found bool) {
	if rec, ok := idx.ExactLookup(name); ok {
		return rec, true, true
	}
	if rec, ok := idx.SubstringSearch(name); ok {
		return rec, false, true
	}
	return crafting.RecipeRecord{}, false, false
}

// Search returns up to limit recipes whose names contain query, ignoring
// case, in catalog order. A non-empty profs restricts results to those
// professions. limit <= 0 selects DefaultSearchLimit.
func (idx *Index) Search(query string, profs []string, limit int) []crafting.SearchHit {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var allowed map[string]bool
	if len(profs) > 0 {
		allowed = make(map[string]bool, len(profs))
		for _, p := range profs {
			allowed[idx.aliases.Canonical(p)] = true
		}
	}

	key := searchKey(q, allowed, limit)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.cache != nil {
		if hits, ok := idx.cache.Get(key); ok {
			return append([]crafting.SearchHit(nil), hits...)
		}
	}

	var hits []crafting.SearchHit
	for _, e := range idx.entries {
		if allowed != nil && !allowed[e.record.Profession] {
			continue
		}
		if !strings.Contains(e.lower, q) {
			continue
		}
		hits = append(hits, crafting.SearchHit{
			Name:       e.record.Name,
			Profession: e.record.Profession,
			Link:       e.record.URL,
			Level:      e.record.Level,
		})
		if len(hits) >= limit {
			break
		}
	}

	if idx.cache != nil {
		idx.cache.Add(key, hits)
	}
	return append([]crafting.SearchHit(nil), hits...)
}

// Names returns the distinct recipe names containing query, ignoring case.
func (idx *Index) Names(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, e := range idx.entries {
		if strings.Contains(e.lower, q) && !seen[e.record.Name] {
			seen[e.record.Name] = true
			names = append(names, e.record.Name)
		}
	}
	return names
}

// Canonical exposes the index's alias table.
func (idx *Index) Canonical(profession string) string {
	return idx.aliases.Canonical(profession)
}

func searchKey(q string, allowed map[string]bool, limit int) string {
	profs := make([]string, 0, len(allowed))
	for p := range allowed {
		profs = append(profs, p)
	}
	sort.Strings(profs)
	return q + "\x00" + strings.Join(profs, "\x1f") + "\x00" + strconv.Itoa(limit)
}
