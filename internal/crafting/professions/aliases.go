// Package professions tracks which users hold which professions at which tier.
package professions

import (
	"sort"
	"strings"

	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// Canonical profession names.
var canonicalNames = []string{
	// Gathering
	"Fishing", "Herbalism", "Hunting", "Lumberjacking", "Mining",
	// Processing
	"Alchemy", "Animal Husbandry", "Cooking", "Farming", "Lumber Milling",
	"Metalworking", "Stonemasonry", "Tanning", "Weaving",
	// Crafting
	"Arcane Engineering", "Armor Smithing", "Carpentry", "Jewelry Cutting",
	"Leatherworking", "Scribe", "Tailoring", "Weapon Smithing",
}

// Legacy and alternate spellings seen in scraped catalogs and old documents.
var defaultAliases = map[string]string{
	"weaponsmith":    "Weapon Smithing",
	"weaponsmithy":   "Weapon Smithing",
	"armorsmith":     "Armor Smithing",
	"armoursmith":    "Armor Smithing",
	"armoursmithing": "Armor Smithing",
	"jeweler":        "Jewelry Cutting",
	"jeweller":       "Jewelry Cutting",
	"jewelcrafting":  "Jewelry Cutting",
	"jewelcutting":   "Jewelry Cutting",
	"lumberjack":     "Lumberjacking",
	"logging":        "Lumberjacking",
	"lumbermill":     "Lumber Milling",
	"milling":        "Lumber Milling",
	"leatherworker":  "Leatherworking",
	"tailor":         "Tailoring",
	"carpenter":      "Carpentry",
	"scribing":       "Scribe",
	"engineering":    "Arcane Engineering",
	"arcaneengineer": "Arcane Engineering",
	"herbalist":      "Herbalism",
	"miner":          "Mining",
	"fisher":         "Fishing",
	"fisherman":      "Fishing",
	"hunter":         "Hunting",
	"cook":           "Cooking",
	"alchemist":      "Alchemy",
	"farmer":         "Farming",
	"husbandry":      "Animal Husbandry",
	"rancher":        "Animal Husbandry",
	"metalworker":    "Metalworking",
	"stonemason":     "Stonemasonry",
	"masonry":        "Stonemasonry",
	"tanner":         "Tanning",
	"weaver":         "Weaving",
}

// Aliases maps alternate profession spellings to canonical names.
type Aliases struct {
	byKey     map[string]string
	canonical []string
}

// DefaultAliases returns the built-in alias table.
func DefaultAliases() *Aliases {
	return NewAliases(nil)
}

// NewAliases returns the built-in table extended with extra
// (alias -> canonical). Extra canonical names become known professions.
func NewAliases(extra map[string]string) *Aliases {
	a := &Aliases{byKey: make(map[string]string)}
	seen := make(map[string]bool)
	addCanonical := func(name string) {
		if !seen[name] {
			seen[name] = true
			a.canonical = append(a.canonical, name)
		}
		a.byKey[aliasKey(name)] = name
	}

	for _, name := range canonicalNames {
		addCanonical(name)
	}
	for alias, name := range defaultAliases {
		a.byKey[aliasKey(alias)] = name
	}
	for alias, name := range extra {
		name = strings.TrimSpace(name)
		if name == "" || aliasKey(alias) == "" {
			continue
		}
		addCanonical(name)
		a.byKey[aliasKey(alias)] = name
	}
	sort.Strings(a.canonical)
	return a
}

// Canonical returns the canonical spelling of name. Blank names resolve to
// crafting.UnknownProfession and unknown names are returned trimmed.
func (a *Aliases) Canonical(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return crafting.UnknownProfession
	}
	if canon, ok := a.byKey[aliasKey(name)]; ok {
		return canon
	}
	return name
}

// Known returns the canonical profession names, sorted.
func (a *Aliases) Known() []string {
	return append([]string(nil), a.canonical...)
}

// aliasKey folds case and drops separators: "Weapon-Smithing" -> "weaponsmithing".
func aliasKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '_', '\'', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
