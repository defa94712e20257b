// Package profiles reads and edits the user profile document.
//
// Profiles belong to the chat layer; this package only touches the
// wishlist and keeps every other field verbatim.
package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

const (
	fieldWishlist = "wishlist"
	fieldName     = "name"
)

// profile is one user's raw profile object.
type profile map[string]json.RawMessage

func (p profile) wishlist() []string {
	var items []string
	if raw, ok := p[fieldWishlist]; ok {
		// A wishlist of the wrong type reads as empty.
		_ = json.Unmarshal(raw, &items)
	}
	return items
}

func (p profile) name() string {
	var name string
	if raw, ok := p[fieldName]; ok {
		_ = json.Unmarshal(raw, &name)
	}
	return strings.TrimSpace(name)
}

type document map[crafting.UserID]profile

// Store is the profile store.
type Store struct {
	mu      sync.RWMutex
	backend docstore.Backend
	doc     document
}

// NewStore creates an empty store persisted to backend.
func NewStore(backend docstore.Backend) *Store {
	return &Store{backend: backend, doc: make(document)}
}

// Load replaces the in-memory profiles with the stored document.
func (s *Store) Load(ctx context.Context) error {
	var doc document
	if _, err := docstore.LoadJSON(ctx, s.backend, docstore.KeyProfiles, &doc); err != nil {
		return err
	}
	if doc == nil {
		doc = make(document)
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// Wishlist returns the user's wishlist in insertion order.
func (s *Store) Wishlist(userID crafting.UserID) []string {
	userID = userID.Canonical()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc[userID].wishlist()
}

// DisplayName returns the profile name, falling back to the user id.
func (s *Store) DisplayName(userID crafting.UserID) string {
	userID = userID.Canonical()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name := s.doc[userID].name(); name != "" {
		return name
	}
	return userID.String()
}

// AddWishlistItem appends item to the user's wishlist, creating the profile
// if needed. It returns false for blank items and exact duplicates.
func (s *Store) AddWishlistItem(ctx context.Context, userID crafting.UserID, item string) (bool, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return false, nil
	}
	userID = userID.Canonical()

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.doc[userID].wishlist()
	for _, it := range items {
		if it == item {
			return false, nil
		}
	}
	return s.setWishlist(ctx, userID, append(items, item))
}

// RemoveWishlistItem removes the first exact occurrence of item.
func (s *Store) RemoveWishlistItem(ctx context.Context, userID crafting.UserID, item string) (bool, error) {
	item = strings.TrimSpace(item)
	userID = userID.Canonical()

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.doc[userID].wishlist()
	for i, it := range items {
		if it == item {
			return s.setWishlist(ctx, userID, append(items[:i:i], items[i+1:]...))
		}
	}
	return false, nil
}

// setWishlist persists a new wishlist for the user. Callers hold s.mu.
func (s *Store) setWishlist(ctx context.Context, userID crafting.UserID, items []string) (bool, error) {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("encoding wishlist: %w", err)
	}

	next := make(document, len(s.doc)+1)
	for id, p := range s.doc {
		next[id] = p
	}
	updated := make(profile, len(s.doc[userID])+1)
	for k, v := range s.doc[userID] {
		updated[k] = v
	}
	updated[fieldWishlist] = raw
	next[userID] = updated

	if err := docstore.SaveJSON(ctx, s.backend, docstore.KeyProfiles, next); err != nil {
		return false, err
	}
	s.doc = next
	return true, nil
}
