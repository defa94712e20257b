package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/market"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// AddListing executes the market_add_listing tool logic. A price string
// takes precedence over the gold/silver/copper fields.
func (e *Engine) AddListing(ctx context.Context, req crafting.ListingRequest) (*crafting.ListingsResponse, error) {
	if strings.TrimSpace(req.Item) == "" || req.SellerID == "" {
		return e.listingsResponse(req.SellerID, false), nil
	}

	var price crafting.Price
	if strings.TrimSpace(req.Price) != "" {
		price = market.ParsePrice(req.Price)
	} else {
		copper, err := market.CheckedMinorUnits(req.Gold, req.Silver, req.Copper)
		if err != nil {
			return e.listingsResponse(req.SellerID, false), nil
		}
		price = crafting.CopperPrice(copper)
	}

	listing, err := e.market.AddListing(ctx, req.SellerID, req.Item, price, req.Village, req.Note)
	if err != nil {
		return nil, fmt.Errorf("adding listing: %w", err)
	}
	e.logger.Info("listing added",
		zap.String("seller", req.SellerID.String()),
		zap.String("item", listing.Item),
		zap.String("price", market.DisplayPrice(listing.Price)))
	return e.listingsResponse(req.SellerID, true), nil
}

// RemoveListing removes a listing by id, or else the first listing whose
// item matches exactly.
func (e *Engine) RemoveListing(ctx context.Context, req crafting.RemoveListingRequest) (*crafting.ListingsResponse, error) {
	var (
		ok  bool
		err error
	)
	if req.ID != "" {
		ok, err = e.market.RemoveListingByID(ctx, req.SellerID, req.ID)
	} else {
		ok, err = e.market.RemoveListing(ctx, req.SellerID, req.Item)
	}
	if err != nil {
		return nil, fmt.Errorf("removing listing: %w", err)
	}
	return e.listingsResponse(req.SellerID, ok), nil
}

// Listings returns the user's listings.
func (e *Engine) Listings(ctx context.Context, req crafting.UserRequest) (*crafting.ListingsResponse, error) {
	return e.listingsResponse(req.UserID, true), nil
}

func (e *Engine) listingsResponse(sellerID crafting.UserID, ok bool) *crafting.ListingsResponse {
	listings := e.market.GetUserListings(sellerID)
	if listings == nil {
		listings = []crafting.Listing{}
	}
	return &crafting.ListingsResponse{OK: ok, Listings: listings}
}

// FormatPrice executes the format_price tool logic.
func (e *Engine) FormatPrice(ctx context.Context, req crafting.FormatPriceRequest) (*crafting.FormatPriceResponse, error) {
	copper, err := market.CheckedMinorUnits(req.Gold, req.Silver, req.Copper)
	if err != nil {
		return nil, fmt.Errorf("formatting price: %w", err)
	}
	return &crafting.FormatPriceResponse{
		Copper:    copper,
		Formatted: market.FormatPrice(copper),
	}, nil
}
