// Package market keeps the player market listings and matches them
// against wishlists.
package market

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// Ledger stores market listings in insertion order.
type Ledger struct {
	mu       sync.RWMutex
	backend  docstore.Backend
	listings []crafting.Listing
	now      func() time.Time
	newID    func() string
}

// NewLedger creates an empty ledger persisted to backend.
func NewLedger(backend docstore.Backend) *Ledger {
	return &Ledger{
		backend: backend,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Load replaces the in-memory listings with the stored document.
// Listings stored without an id are given one.
func (l *Ledger) Load(ctx context.Context) error {
	var listings []crafting.Listing
	if _, err := docstore.LoadJSON(ctx, l.backend, docstore.KeyMarket, &listings); err != nil {
		return err
	}
	for i := range listings {
		if listings[i].ID == "" {
			listings[i].ID = l.newID()
		}
	}

	l.mu.Lock()
	l.listings = listings
	l.mu.Unlock()
	return nil
}

func (l *Ledger) commit(ctx context.Context, next []crafting.Listing) error {
	if next == nil {
		next = []crafting.Listing{}
	}
	if err := docstore.SaveJSON(ctx, l.backend, docstore.KeyMarket, next); err != nil {
		return err
	}
	l.listings = next
	return nil
}

// AddListing appends a listing. Listings are never deduplicated.
func (l *Ledger) AddListing(ctx context.Context, sellerID crafting.UserID, item string, price crafting.Price, village, note string) (crafting.Listing, error) {
	listing := crafting.Listing{
		ID:        l.newID(),
		SellerID:  sellerID.Canonical(),
		Item:      strings.TrimSpace(item),
		Price:     price,
		Village:   strings.TrimSpace(village),
		Note:      strings.TrimSpace(note),
		CreatedAt: l.now().UTC(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := append(append([]crafting.Listing(nil), l.listings...), listing)
	if err := l.commit(ctx, next); err != nil {
		return crafting.Listing{}, err
	}
	return listing, nil
}

// RemoveListing removes the seller's first listing whose item equals item
// exactly.
func (l *Ledger) RemoveListing(ctx context.Context, sellerID crafting.UserID, item string) (bool, error) {
	return l.removeFirst(ctx, func(x crafting.Listing) bool {
		return x.SellerID.Equal(sellerID) && x.Item == item
	})
}

// RemoveListingByID removes the seller's listing with the given id.
func (l *Ledger) RemoveListingByID(ctx context.Context, sellerID crafting.UserID, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	return l.removeFirst(ctx, func(x crafting.Listing) bool {
		return x.SellerID.Equal(sellerID) && x.ID == id
	})
}

func (l *Ledger) removeFirst(ctx context.Context, match func(crafting.Listing) bool) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, x := range l.listings {
		if !match(x) {
			continue
		}
		next := make([]crafting.Listing, 0, len(l.listings)-1)
		next = append(next, l.listings[:i]...)
		next = append(next, l.listings[i+1:]...)
		if err := l.commit(ctx, next); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// GetUserListings returns the seller's listings in insertion order.
func (l *Ledger) GetUserListings(sellerID crafting.UserID) []crafting.Listing {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []crafting.Listing
	for _, x := range l.listings {
		if x.SellerID.Equal(sellerID) {
			out = append(out, x)
		}
	}
	return out
}

// FindMatchesForWishlist returns the listings whose item equals a wishlist
// entry, ignoring case and surrounding space.
func (l *Ledger) FindMatchesForWishlist(wishlist []string) []crafting.Listing {
	wanted := make(map[string]bool, len(wishlist))
	for _, w := range wishlist {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			wanted[w] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []crafting.Listing
	for _, x := range l.listings {
		if wanted[strings.ToLower(strings.TrimSpace(x.Item))] {
			out = append(out, x)
		}
	}
	return out
}
