// Package registry maintains the inverted index from recipe name to the
// users able to craft it.
package registry

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/catalog"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/professions"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// ProfileSource supplies display names and wishlists.
type ProfileSource interface {
	DisplayName(userID crafting.UserID) string
	Wishlist(userID crafting.UserID) []string
}

type document map[string]crafting.CrafterEntry

func (d document) clone() document {
	out := make(document, len(d))
	for name, e := range d {
		out[name] = crafting.CrafterEntry{
			Profession: e.Profession,
			Users:      append([]crafting.Crafter(nil), e.Users...),
		}
	}
	return out
}

// Registry is the crafter registry.
type Registry struct {
	mu       sync.RWMutex
	backend  docstore.Backend
	index    *catalog.Index
	ledger   *professions.Ledger
	profiles ProfileSource
	doc      document
}

// New creates an empty registry persisted to backend.
func New(backend docstore.Backend, index *catalog.Index, ledger *professions.Ledger, profiles ProfileSource) *Registry {
	return &Registry{
		backend:  backend,
		index:    index,
		ledger:   ledger,
		profiles: profiles,
		doc:      make(document),
	}
}

// Load replaces the in-memory registry with the stored document.
// Entries without users are discarded.
func (r *Registry) Load(ctx context.Context) error {
	var doc document
	if _, err := docstore.LoadJSON(ctx, r.backend, docstore.KeyRegistry, &doc); err != nil {
		return err
	}

	loaded := make(document, len(doc))
	for name, e := range doc {
		if len(e.Users) == 0 {
			continue
		}
		sortCrafters(e.Users)
		loaded[name] = e
	}

	r.mu.Lock()
	r.doc = loaded
	r.mu.Unlock()
	return nil
}

func (r *Registry) commit(ctx context.Context, next document) error {
	if err := docstore.SaveJSON(ctx, r.backend, docstore.KeyRegistry, next); err != nil {
		return err
	}
	r.doc = next
	return nil
}

// resolveProfession canonicalizes profession, or looks the recipe up in the
// catalog when profession is blank.
func (r *Registry) resolveProfession(recipeName, profession string) string {
	if strings.TrimSpace(profession) != "" {
		return r.ledger.Canonical(profession)
	}
	if rec, _, found := r.index.Resolve(recipeName); found {
		return rec.Profession
	}
	return crafting.UnknownProfession
}

func (r *Registry) crafter(userID crafting.UserID, profession string) crafting.Crafter {
	userID = userID.Canonical()
	c := crafting.Crafter{ID: userID, Name: r.profiles.DisplayName(userID)}
	if tier, ok := r.ledger.DisplayTier(userID, profession); ok {
		c.Tier = tier
	}
	return c
}

// IndexLearn records userID as a crafter of recipeName. A blank profession
// is resolved from the catalog. The user's name and tier are re-derived on
// every call.
func (r *Registry) IndexLearn(ctx context.Context, userID crafting.UserID, recipeName, profession string) error {
	profession = r.resolveProfession(recipeName, profession)

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.doc.clone()
	entry, ok := next[recipeName]
	switch {
	case !ok:
		entry.Profession = profession
	case entry.Profession == crafting.UnknownProfession || profession != crafting.UnknownProfession:
		entry.Profession = profession
	}

	c := r.crafter(userID, entry.Profession)
	replaced := false
	for i, u := range entry.Users {
		if u.ID.Equal(userID) {
			entry.Users[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		entry.Users = append(entry.Users, c)
	}
	sortCrafters(entry.Users)
	next[recipeName] = entry

	return r.commit(ctx, next)
}

// UnindexLearn removes userID from recipeName's crafters, deleting the entry
// when no crafter is left. It returns false when the user was not listed.
func (r *Registry) UnindexLearn(ctx context.Context, userID crafting.UserID, recipeName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.doc[recipeName]
	if !ok {
		return false, nil
	}
	idx := -1
	for i, u := range entry.Users {
		if u.ID.Equal(userID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := r.doc.clone()
	entry = next[recipeName]
	entry.Users = append(entry.Users[:idx], entry.Users[idx+1:]...)
	if len(entry.Users) == 0 {
		delete(next, recipeName)
	} else {
		next[recipeName] = entry
	}

	if err := r.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// Lists reports whether userID is a crafter of recipeName.
func (r *Registry) Lists(userID crafting.UserID, recipeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.doc[recipeName].Users {
		if u.ID.Equal(userID) {
			return true
		}
	}
	return false
}

// Entry returns a copy of the crafter entry for the exact recipe name.
func (r *Registry) Entry(recipeName string) (crafting.CrafterEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.doc[recipeName]
	if !ok {
		return crafting.CrafterEntry{}, false
	}
	e.Users = append([]crafting.Crafter(nil), e.Users...)
	return e, true
}

// SearchRegistry returns every catalog or registry recipe name containing
// query, ignoring case, sorted alphabetically. Entry is nil for recipes
// nobody has learned.
func (r *Registry) SearchRegistry(query string) []crafting.RegistryHit {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	names := make(map[string]bool)
	for _, n := range r.index.Names(q) {
		names[n] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for n := range r.doc {
		if strings.Contains(strings.ToLower(n), q) {
			names[n] = true
		}
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Slice(sorted, func(i, j int) bool { return lessFold(sorted[i], sorted[j]) })

	hits := make([]crafting.RegistryHit, 0, len(sorted))
	for _, n := range sorted {
		hit := crafting.RegistryHit{Name: n}
		if e, ok := r.doc[n]; ok {
			e.Users = append([]crafting.Crafter(nil), e.Users...)
			hit.Entry = &e
		}
		hits = append(hits, hit)
	}
	return hits
}

// WishlistMatches returns the registry entries for the user's wishlist
// items, most crafters first, then by item name.
func (r *Registry) WishlistMatches(userID crafting.UserID) []crafting.WishlistMatch {
	wishlist := r.profiles.Wishlist(userID)

	r.mu.RLock()
	seen := make(map[string]bool, len(wishlist))
	var out []crafting.WishlistMatch
	for _, item := range wishlist {
		if seen[item] {
			continue
		}
		seen[item] = true
		e, ok := r.doc[item]
		if !ok || len(e.Users) == 0 {
			continue
		}
		e.Users = append([]crafting.Crafter(nil), e.Users...)
		out = append(out, crafting.WishlistMatch{Item: item, Entry: e})
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := len(out[i].Entry.Users), len(out[j].Entry.Users)
		if ni != nj {
			return ni > nj
		}
		return lessFold(out[i].Item, out[j].Item)
	})
	return out
}

// RefreshUser re-derives the user's name and tier on every entry that
// lists them. It saves only when something changed.
func (r *Registry) RefreshUser(ctx context.Context, userID crafting.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.doc.clone()
	changed := false
	for name, e := range next {
		for i, u := range e.Users {
			if !u.ID.Equal(userID) {
				continue
			}
			c := r.crafter(u.ID, e.Profession)
			if c != u {
				e.Users[i] = c
				changed = true
			}
		}
		sortCrafters(e.Users)
		next[name] = e
	}
	if !changed {
		return nil
	}
	return r.commit(ctx, next)
}

func sortCrafters(users []crafting.Crafter) {
	sort.SliceStable(users, func(i, j int) bool {
		return lessFold(users[i].Name, users[j].Name)
	})
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
