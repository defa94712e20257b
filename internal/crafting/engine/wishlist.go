package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// WishlistAdd appends an item to the user's wishlist.
func (e *Engine) WishlistAdd(ctx context.Context, req crafting.WishlistRequest) (*crafting.WishlistResponse, error) {
	ok, err := e.profiles.AddWishlistItem(ctx, req.UserID, req.Item)
	if err != nil {
		return nil, fmt.Errorf("adding wishlist item: %w", err)
	}
	return e.wishlistResponse(req.UserID, ok), nil
}

// WishlistRemove removes an item from the user's wishlist.
func (e *Engine) WishlistRemove(ctx context.Context, req crafting.WishlistRequest) (*crafting.WishlistResponse, error) {
	ok, err := e.profiles.RemoveWishlistItem(ctx, req.UserID, req.Item)
	if err != nil {
		return nil, fmt.Errorf("removing wishlist item: %w", err)
	}
	return e.wishlistResponse(req.UserID, ok), nil
}

func (e *Engine) wishlistResponse(userID crafting.UserID, ok bool) *crafting.WishlistResponse {
	items := e.profiles.Wishlist(userID)
	if items == nil {
		items = []string{}
	}
	return &crafting.WishlistResponse{OK: ok, Wishlist: items}
}

// WishlistMatches returns the crafters and the other sellers' listings for
// every item on the user's wishlist.
func (e *Engine) WishlistMatches(ctx context.Context, req crafting.UserRequest) (*crafting.WishlistMatchesResponse, error) {
	resp := &crafting.WishlistMatchesResponse{
		Crafters: e.registry.WishlistMatches(req.UserID),
		Listings: []crafting.MarketMatch{},
	}
	if resp.Crafters == nil {
		resp.Crafters = []crafting.WishlistMatch{}
	}

	wishlist := e.profiles.Wishlist(req.UserID)
	byKey := make(map[string]string, len(wishlist))
	for _, item := range wishlist {
		key := strings.ToLower(strings.TrimSpace(item))
		if _, ok := byKey[key]; !ok {
			byKey[key] = item
		}
	}

	for _, l := range e.market.FindMatchesForWishlist(wishlist) {
		if l.SellerID.Equal(req.UserID) {
			continue
		}
		resp.Listings = append(resp.Listings, crafting.MarketMatch{
			Item:    byKey[strings.ToLower(strings.TrimSpace(l.Item))],
			Listing: l,
		})
	}
	return resp, nil
}
