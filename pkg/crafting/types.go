// Package crafting contains the core types shared by the crafting companion.
package crafting

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// UnknownProfession is used when a recipe's profession cannot be resolved.
const UnknownProfession = "Unknown"

// ============================================
// USER TYPES
// ============================================

// UserID identifies a chat platform user. Platform ids are numeric but
// documents store them as strings (map keys) or numbers (registry entries).
// Decoded ids are canonical: trimmed, and numeric ids lose leading zeros.
type UserID string

// Canonical returns the id in the form every store keys users by.
func (u UserID) Canonical() UserID {
	s := strings.TrimSpace(string(u))
	if !isDigits(s) {
		return UserID(s)
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return UserID(s)
}

// Numeric reports whether the id is a non-empty run of decimal digits.
func (u UserID) Numeric() bool { return isDigits(string(u)) }

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID(s).Canonical()
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*u = UserID(n.String()).Canonical()
	return nil
}

// UnmarshalText canonicalizes ids used as document map keys.
func (u *UserID) UnmarshalText(text []byte) error {
	*u = UserID(text).Canonical()
	return nil
}

// Equal compares canonical forms, so "0042" equals "42".
func (u UserID) Equal(other UserID) bool {
	return u.Canonical() == other.Canonical()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (u UserID) String() string { return string(u) }

// ============================================
// CATALOG TYPES
// ============================================

// RecipeRecord is one recipe of the catalog.
type RecipeRecord struct {
	Name       string `json:"name"`
	Profession string `json:"profession"`
	Level      string `json:"level"`
	URL        string `json:"url,omitempty"`
}

// Catalog is the canonical, profession-grouped recipe catalog.
// Professions lists the keys of Recipes in iteration order.
type Catalog struct {
	Professions []string
	Recipes     map[string][]RecipeRecord
}

// catalogEntry is the grouped document form of a recipe.
type catalogEntry struct {
	Name  string `json:"name"`
	Level string `json:"level"`
	URL   string `json:"url,omitempty"`
}

// MarshalJSON writes the catalog in its grouped form
// (profession -> [{name, level, url}]).
func (c Catalog) MarshalJSON() ([]byte, error) {
	grouped := make(map[string][]catalogEntry, len(c.Recipes))
	for prof, recipes := range c.Recipes {
		entries := make([]catalogEntry, 0, len(recipes))
		for _, r := range recipes {
			entries = append(entries, catalogEntry{Name: r.Name, Level: r.Level, URL: r.URL})
		}
		grouped[prof] = entries
	}
	return json.Marshal(grouped)
}

// Len returns the total number of recipes.
func (c Catalog) Len() int {
	n := 0
	for _, recipes := range c.Recipes {
		n += len(recipes)
	}
	return n
}

// SearchHit is a lightweight recipe match for search results.
type SearchHit struct {
	Name       string `json:"name"`
	Profession string `json:"profession"`
	Link       string `json:"link,omitempty"`
	Level      string `json:"level,omitempty"`
}

// ============================================
// PROFESSION TYPES
// ============================================

// MinTier and MaxTier bound a profession tier.
const (
	MinTier = 1
	MaxTier = 5
)

// ProfessionEntry is a user's membership in a profession bucket.
// Tier is kept as stored; documents hold tiers as strings.
type ProfessionEntry struct {
	UserID UserID `json:"user_id"`
	Tier   string `json:"tier"`
}

// HeldProfession is a profession held by a user.
type HeldProfession struct {
	Name string `json:"name"`
	Tier string `json:"tier"`
}

// LearnedRecipe is a recipe a user recorded as known.
type LearnedRecipe struct {
	Name string `json:"name"`
	Link string `json:"link,omitempty"`
}

// ============================================
// REGISTRY TYPES
// ============================================

// Crafter is a user able to craft a recipe.
type Crafter struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier,omitempty"`
}

// MarshalJSON writes numeric ids as JSON numbers, matching the registry
// documents written by the chat layer.
func (c Crafter) MarshalJSON() ([]byte, error) {
	type plain Crafter
	var id json.RawMessage
	if canon := c.ID.Canonical(); canon.Numeric() {
		id = json.RawMessage(canon)
	} else {
		raw, err := json.Marshal(string(c.ID))
		if err != nil {
			return nil, err
		}
		id = raw
	}
	return json.Marshal(struct {
		ID json.RawMessage `json:"id"`
		plain
	}{ID: id, plain: plain(c)})
}

// CrafterEntry lists the crafters of one recipe.
type CrafterEntry struct {
	Profession string    `json:"profession"`
	Users      []Crafter `json:"users"`
}

// RegistryHit is a recipe name found by a registry search.
// Entry is nil when nobody has learned the recipe yet.
type RegistryHit struct {
	Name  string        `json:"name"`
	Entry *CrafterEntry `json:"entry,omitempty"`
}

// WishlistMatch pairs a wishlist item with its crafters.
type WishlistMatch struct {
	Item  string       `json:"item"`
	Entry CrafterEntry `json:"entry"`
}

// ============================================
// MARKET TYPES
// ============================================

// Listing is a player market listing.
type Listing struct {
	ID        string    `json:"id,omitempty"`
	SellerID  UserID    `json:"seller_id"`
	Item      string    `json:"item"`
	Price     Price     `json:"price"`
	Village   string    `json:"village,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Price is either a number of copper or a display string that could not be parsed.
type Price struct {
	Copper  int64
	Display string
	Parsed  bool
}

// CopperPrice returns a parsed price.
func CopperPrice(copper int64) Price {
	return Price{Copper: copper, Parsed: true}
}

// MarshalJSON writes parsed prices as numbers and unparsed ones as strings.
func (p Price) MarshalJSON() ([]byte, error) {
	if p.Parsed {
		return []byte(strconv.FormatInt(p.Copper, 10)), nil
	}
	return json.Marshal(p.Display)
}

// UnmarshalJSON reads a JSON number as copper and a JSON string as display text.
// Negative or fractional numbers are kept as unparsed display text.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price{Display: s}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil || n < 0 {
		*p = Price{Display: string(data)}
		return nil
	}
	*p = CopperPrice(n)
	return nil
}

// MarketMatch is a listing matching one of a user's wishlist items.
type MarketMatch struct {
	Item    string  `json:"item"`
	Listing Listing `json:"listing"`
}

// ============================================
// TOOL REQUEST/RESPONSE TYPES
// ============================================

// RecipeSearchRequest is the input for the recipe_search tool.
type RecipeSearchRequest struct {
	Query       string   `json:"query"`
	Professions []string `json:"professions,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

// RecipeSearchResponse is the output for the recipe_search tool.
type RecipeSearchResponse struct {
	Results []SearchHit `json:"results"`
}

// RecipeLookupRequest is the input for the recipe_lookup tool.
type RecipeLookupRequest struct {
	Name string `json:"name"`
}

// RecipeLookupResponse is the output for the recipe_lookup tool.
type RecipeLookupResponse struct {
	Recipe   *RecipeRecord `json:"recipe,omitempty"`
	Exact    bool          `json:"exact"`
	Crafters *CrafterEntry `json:"crafters,omitempty"`
}

// ProfessionRequest is the input for the profession tools.
type ProfessionRequest struct {
	UserID     UserID `json:"user_id"`
	Profession string `json:"profession"`
	Tier       int    `json:"tier,omitempty"`
}

// ProfessionResponse reports the result of a profession change.
type ProfessionResponse struct {
	OK          bool             `json:"ok"`
	Professions []HeldProfession `json:"professions"`
}

// ProfessionMembersRequest is the input for the profession_members tool.
type ProfessionMembersRequest struct {
	Profession string `json:"profession"`
}

// ProfessionMembersResponse lists the holders of a profession.
// Known is false for professions outside the alias table.
type ProfessionMembersResponse struct {
	Profession string            `json:"profession"`
	Known      bool              `json:"known"`
	Members    []ProfessionEntry `json:"members"`
}

// LearnRequest is the input for learn_recipe and unlearn_recipe.
type LearnRequest struct {
	UserID     UserID `json:"user_id"`
	Recipe     string `json:"recipe"`
	Profession string `json:"profession,omitempty"`
}

// LearnResponse is the output for learn_recipe and unlearn_recipe.
type LearnResponse struct {
	OK         bool   `json:"ok"`
	Reason     string `json:"reason,omitempty"`
	Recipe     string `json:"recipe"`
	Profession string `json:"profession"`
	Link       string `json:"link,omitempty"`
}

// UserRequest is the input for tools that take only a user.
type UserRequest struct {
	UserID UserID `json:"user_id"`
}

// LearnedResponse is the output for the list_learned tool.
type LearnedResponse struct {
	Recipes map[string][]LearnedRecipe `json:"recipes"`
}

// CrafterSearchRequest is the input for the crafter_search tool.
type CrafterSearchRequest struct {
	Query string `json:"query"`
}

// CrafterSearchResponse is the output for the crafter_search tool.
type CrafterSearchResponse struct {
	Results []RegistryHit `json:"results"`
}

// WishlistRequest is the input for wishlist_add and wishlist_remove.
type WishlistRequest struct {
	UserID UserID `json:"user_id"`
	Item   string `json:"item"`
}

// WishlistResponse is the output for the wishlist tools.
type WishlistResponse struct {
	OK       bool     `json:"ok"`
	Wishlist []string `json:"wishlist"`
}

// WishlistMatchesResponse is the output for the wishlist_matches tool.
type WishlistMatchesResponse struct {
	Crafters []WishlistMatch `json:"crafters"`
	Listings []MarketMatch   `json:"listings"`
}

// ListingRequest is the input for market_add_listing.
// Price may be given as a display string or as gold/silver/copper.
type ListingRequest struct {
	SellerID UserID `json:"seller_id"`
	Item     string `json:"item"`
	Price    string `json:"price,omitempty"`
	Gold     int64  `json:"gold,omitempty"`
	Silver   int64  `json:"silver,omitempty"`
	Copper   int64  `json:"copper,omitempty"`
	Village  string `json:"village,omitempty"`
	Note     string `json:"note,omitempty"`
}

// RemoveListingRequest is the input for market_remove_listing.
type RemoveListingRequest struct {
	SellerID UserID `json:"seller_id"`
	Item     string `json:"item,omitempty"`
	ID       string `json:"id,omitempty"`
}

// ListingsResponse is the output for the market tools.
type ListingsResponse struct {
	OK       bool      `json:"ok"`
	Listings []Listing `json:"listings"`
}

// FormatPriceRequest is the input for the format_price tool.
type FormatPriceRequest struct {
	Gold   int64 `json:"gold"`
	Silver int64 `json:"silver"`
	Copper int64 `json:"copper"`
}

// FormatPriceResponse is the output for the format_price tool.
type FormatPriceResponse struct {
	Copper    int64  `json:"copper"`
	Formatted string `json:"formatted"`
}

// ReloadResponse is the output for the reload_catalog tool.
type ReloadResponse struct {
	Professions int `json:"professions"`
	Recipes     int `json:"recipes"`
}
