// Package catalog normalizes raw recipe catalogs and indexes them for search.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/professions"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// Normalize converts a raw catalog document into a canonical Catalog.
//
// Two shapes are accepted: a flat list of {name, profession, level, url}
// records, or an object mapping profession -> [{name, level, url}].
// Malformed entries and entries without a name are skipped; undecodable
// input yields an empty catalog.
func Normalize(raw []byte, aliases *professions.Aliases) crafting.Catalog {
	if aliases == nil {
		aliases = professions.DefaultAliases()
	}
	grouped := make(map[string][]crafting.RecipeRecord)

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return build(grouped)
	}

	add := func(profession string, fields map[string]json.RawMessage) {
		name := strings.TrimSpace(stringField(fields, "name"))
		if name == "" {
			return
		}
		profession = aliases.Canonical(profession)
		grouped[profession] = append(grouped[profession], crafting.RecipeRecord{
			Name:       name,
			Profession: profession,
			Level:      strings.TrimSpace(stringField(fields, "level")),
			URL:        strings.TrimSpace(stringField(fields, "url", "link")),
		})
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return build(grouped)
		}
		for _, item := range items {
			fields, ok := objectFields(item)
			if !ok {
				continue
			}
			add(stringField(fields, "profession"), fields)
		}

	case '{':
		var groups map[string]json.RawMessage
		if err := json.Unmarshal(raw, &groups); err != nil {
			return build(grouped)
		}
		// Sorted so that keys folding to one profession append in a fixed order.
		keys := make([]string, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, prof := range keys {
			var items []json.RawMessage
			if err := json.Unmarshal(groups[prof], &items); err != nil {
				continue
			}
			for _, item := range items {
				fields, ok := objectFields(item)
				if !ok {
					continue
				}
				add(prof, fields)
			}
		}
	}

	return build(grouped)
}

// build sorts each profession's recipes and the profession keys.
func build(grouped map[string][]crafting.RecipeRecord) crafting.Catalog {
	cat := crafting.Catalog{
		Professions: make([]string, 0, len(grouped)),
		Recipes:     grouped,
	}
	for prof, recipes := range grouped {
		sort.SliceStable(recipes, func(i, j int) bool {
			return strings.ToLower(recipes[i].Name) < strings.ToLower(recipes[j].Name)
		})
		cat.Professions = append(cat.Professions, prof)
	}
	sort.Slice(cat.Professions, func(i, j int) bool {
		return lessFold(cat.Professions[i], cat.Professions[j])
	})
	return cat
}

// lessFold orders case-insensitively, breaking ties on the raw bytes.
func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

func objectFields(item json.RawMessage) (map[string]json.RawMessage, bool) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || item[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// stringField returns the first non-empty string or number among keys.
func stringField(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil && n != "" {
			return n.String()
		}
	}
	return ""
}

// Load reads and normalizes the catalog document from backend.
// A missing document yields an empty catalog.
func Load(ctx context.Context, backend docstore.Backend, aliases *professions.Aliases) (crafting.Catalog, error) {
	raw, _, err := backend.Load(ctx, docstore.KeyCatalog)
	if err != nil {
		return crafting.Catalog{}, fmt.Errorf("loading catalog: %w", err)
	}
	return Normalize(raw, aliases), nil
}
