// Package learned records which recipes each user has marked as known.
package learned

import (
	"context"
	"sort"
	"sync"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/professions"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// document maps user -> profession -> recipes.
type document map[crafting.UserID]map[string][]crafting.LearnedRecipe

func (d document) clone() document {
	out := make(document, len(d))
	for id, profs := range d {
		inner := make(map[string][]crafting.LearnedRecipe, len(profs))
		for prof, recipes := range profs {
			inner[prof] = append([]crafting.LearnedRecipe(nil), recipes...)
		}
		out[id] = inner
	}
	return out
}

// Store is the learned-recipe store.
type Store struct {
	mu      sync.RWMutex
	backend docstore.Backend
	aliases *professions.Aliases
	doc     document
}

// NewStore creates an empty store persisted to backend.
func NewStore(backend docstore.Backend, aliases *professions.Aliases) *Store {
	if aliases == nil {
		aliases = professions.DefaultAliases()
	}
	return &Store{backend: backend, aliases: aliases, doc: make(document)}
}

// Load replaces the in-memory store with the stored document.
func (s *Store) Load(ctx context.Context) error {
	var doc document
	if _, err := docstore.LoadJSON(ctx, s.backend, docstore.KeyLearned, &doc); err != nil {
		return err
	}

	loaded := make(document, len(doc))
	for id, profs := range doc {
		if len(profs) == 0 {
			continue
		}
		inner := make(map[string][]crafting.LearnedRecipe, len(profs))
		for prof, recipes := range profs {
			canon := s.aliases.Canonical(prof)
			inner[canon] = append(inner[canon], recipes...)
		}
		loaded[id] = inner
	}

	s.mu.Lock()
	s.doc = loaded
	s.mu.Unlock()
	return nil
}

func (s *Store) commit(ctx context.Context, next document) error {
	if err := docstore.SaveJSON(ctx, s.backend, docstore.KeyLearned, next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// AddLearnedRecipe appends name to the user's bucket for profession.
// It returns false when the bucket already holds the exact same name.
func (s *Store) AddLearnedRecipe(ctx context.Context, userID crafting.UserID, profession, name, link string) (bool, error) {
	profession = s.aliases.Canonical(profession)
	userID = userID.Canonical()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.doc[userID][profession] {
		if r.Name == name {
			return false, nil
		}
	}

	next := s.doc.clone()
	if next[userID] == nil {
		next[userID] = make(map[string][]crafting.LearnedRecipe)
	}
	next[userID][profession] = append(next[userID][profession], crafting.LearnedRecipe{Name: name, Link: link})

	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveLearnedRecipe removes name from the user's bucket for profession.
// Empty buckets and users are dropped.
func (s *Store) RemoveLearnedRecipe(ctx context.Context, userID crafting.UserID, profession, name string) (bool, error) {
	profession = s.aliases.Canonical(profession)
	userID = userID.Canonical()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.doc[userID][profession] {
		if r.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := s.doc.clone()
	bucket := next[userID][profession]
	bucket = append(bucket[:idx], bucket[idx+1:]...)
	switch {
	case len(bucket) > 0:
		next[userID][profession] = bucket
	default:
		delete(next[userID], profession)
		if len(next[userID]) == 0 {
			delete(next, userID)
		}
	}

	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// RestoreUserRecipes replaces the user's buckets with recipes, as returned
// by GetUserRecipes. Empty buckets are dropped.
func (s *Store) RestoreUserRecipes(ctx context.Context, userID crafting.UserID, recipes map[string][]crafting.LearnedRecipe) error {
	userID = userID.Canonical()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	delete(next, userID)
	for prof, bucket := range recipes {
		if len(bucket) == 0 {
			continue
		}
		if next[userID] == nil {
			next[userID] = make(map[string][]crafting.LearnedRecipe, len(recipes))
		}
		next[userID][prof] = append([]crafting.LearnedRecipe(nil), bucket...)
	}
	return s.commit(ctx, next)
}

// GetUserRecipes returns a copy of the user's learned recipes by profession.
func (s *Store) GetUserRecipes(userID crafting.UserID) map[string][]crafting.LearnedRecipe {
	userID = userID.Canonical()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]crafting.LearnedRecipe, len(s.doc[userID]))
	for prof, recipes := range s.doc[userID] {
		out[prof] = append([]crafting.LearnedRecipe(nil), recipes...)
	}
	return out
}

// Professions returns the professions in which the user learned name, sorted.
func (s *Store) Professions(userID crafting.UserID, name string) []string {
	userID = userID.Canonical()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for prof, recipes := range s.doc[userID] {
		for _, r := range recipes {
			if r.Name == name {
				out = append(out, prof)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
