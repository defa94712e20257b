package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Default     any       `json:"default,omitempty"`
	Minimum     *float64  `json:"minimum,omitempty"`
	Maximum     *float64  `json:"maximum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

type toolHandler func(ctx context.Context, args json.RawMessage) (any, error)

// bind decodes the tool arguments into Req and calls fn.
func bind[Req, Resp any](fn func(context.Context, Req) (*Resp, error)) toolHandler {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		var req Req
		if len(args) > 0 && string(args) != "null" {
			if err := json.Unmarshal(args, &req); err != nil {
				return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
			}
		}
		return fn(ctx, req)
	}
}

func (s *Server) toolHandlers() map[string]toolHandler {
	e := s.engine
	return map[string]toolHandler{
		"recipe_search":         bind(e.RecipeSearch),
		"recipe_lookup":         bind(e.RecipeLookup),
		"set_profession":        bind(e.SetProfession),
		"remove_profession":     bind(e.RemoveProfession),
		"list_professions":      bind(e.ListProfessions),
		"profession_members":    bind(e.ProfessionMembers),
		"learn_recipe":          bind(e.LearnRecipe),
		"unlearn_recipe":        bind(e.UnlearnRecipe),
		"list_learned":          bind(e.ListLearned),
		"crafter_search":        bind(e.CrafterSearch),
		"wishlist_add":          bind(e.WishlistAdd),
		"wishlist_remove":       bind(e.WishlistRemove),
		"wishlist_matches":      bind(e.WishlistMatches),
		"market_add_listing":    bind(e.AddListing),
		"market_remove_listing": bind(e.RemoveListing),
		"market_listings":       bind(e.Listings),
		"format_price":          bind(e.FormatPrice),
		"reload_catalog": func(ctx context.Context, _ json.RawMessage) (any, error) {
			return e.ReloadCatalog(ctx)
		},
	}
}

var (
	userIDProp = Property{Type: "string", Description: "Chat platform user ID"}
	recipeProp = Property{Type: "string", Description: "Recipe name; matched exactly, then by substring, ignoring case"}
	profProp   = Property{Type: "string", Description: "Profession name or alias (e.g. \"weaponsmith\")"}
	itemProp   = Property{Type: "string", Description: "Item name"}
)

func userOnly(name, description string) ToolDefinition {
	return ToolDefinition{
		Name:        name,
		Description: description,
		InputSchema: JSONSchema{
			Type:       "object",
			Properties: map[string]Property{"user_id": userIDProp},
			Required:   []string{"user_id"},
		},
	}
}

// GetToolDefinitions returns all tool definitions.
func GetToolDefinitions() []ToolDefinition {
	minLimit, maxLimit := 1.0, 100.0
	minTier, maxTier := float64(crafting.MinTier), float64(crafting.MaxTier)
	zero := 0.0

	return []ToolDefinition{
		{
			Name:        "recipe_search",
			Description: "Search the recipe catalog by case-insensitive name substring, optionally restricted to professions.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"query": {Type: "string", Description: "Text contained in the recipe name"},
					"professions": {
						Type:        "array",
						Description: "Only return recipes of these professions",
						Items:       &Property{Type: "string"},
					},
					"limit": {Type: "integer", Description: "Max results", Default: 25, Minimum: &minLimit, Maximum: &maxLimit},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "recipe_lookup",
			Description: "Look up one recipe by name and list the users who can craft it.",
			InputSchema: JSONSchema{
				Type:       "object",
				Properties: map[string]Property{"name": recipeProp},
				Required:   []string{"name"},
			},
		},
		{
			Name:        "set_profession",
			Description: "Assign a profession at a tier to a user. Fails when the user already holds the maximum number of other professions.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"user_id":    userIDProp,
					"profession": profProp,
					"tier":       {Type: "integer", Description: "Skill tier", Minimum: &minTier, Maximum: &maxTier},
				},
				Required: []string{"user_id", "profession", "tier"},
			},
		},
		{
			Name:        "remove_profession",
			Description: "Remove a profession from a user.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"user_id":    userIDProp,
					"profession": profProp,
				},
				Required: []string{"user_id", "profession"},
			},
		},
		userOnly("list_professions", "List a user's professions and tiers."),
		{
			Name:        "profession_members",
			Description: "List the users holding a profession, highest tier first.",
			InputSchema: JSONSchema{
				Type:       "object",
				Properties: map[string]Property{"profession": profProp},
				Required:   []string{"profession"},
			},
		},
		{
			Name:        "learn_recipe",
			Description: "Record a recipe as learned by a user and list them as a crafter of it.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"user_id":    userIDProp,
					"recipe":     recipeProp,
					"profession": {Type: "string", Description: "Profession override; resolved from the catalog when omitted"},
				},
				Required: []string{"user_id", "recipe"},
			},
		},
		{
			Name:        "unlearn_recipe",
			Description: "Remove a learned recipe from a user.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"user_id":    userIDProp,
					"recipe":     recipeProp,
					"profession": profProp,
				},
				Required: []string{"user_id", "recipe"},
			},
		},
		userOnly("list_learned", "List a user's learned recipes grouped by profession."),
		{
			Name:        "crafter_search",
			Description: "Find recipes by name substring together with the users who can craft them.",
			InputSchema: JSONSchema{
				Type:       "object",
				Properties: map[string]Property{"query": {Type: "string", Description: "Text contained in the recipe name"}},
				Required:   []string{"query"},
			},
		},
		{
			Name:        "wishlist_add",
			Description: "Add an item to a user's wishlist.",
			InputSchema: JSONSchema{
				Type:       "object",
				Properties: map[string]Property{"user_id": userIDProp, "item": itemProp},
				Required:   []string{"user_id", "item"},
			},
		},
		{
			Name:        "wishlist_remove",
			Description: "Remove an item from a user's wishlist.",
			InputSchema: JSONSchema{
				Type:       "object",
				Properties: map[string]Property{"user_id": userIDProp, "item": itemProp},
				Required:   []string{"user_id", "item"},
			},
		},
		userOnly("wishlist_matches", "Find crafters and market listings for the items on a user's wishlist."),
		{
			Name:        "market_add_listing",
			Description: "List an item on the player market. Give either a price string or gold/silver/copper.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"seller_id": userIDProp,
					"item":      itemProp,
					"price":     {Type: "string", Description: "Price such as \"1g 50s\" or free text"},
					"gold":      {Type: "integer", Minimum: &zero},
					"silver":    {Type: "integer", Minimum: &zero},
					"copper":    {Type: "integer", Minimum: &zero},
					"village":   {Type: "string", Description: "Where the item can be picked up"},
					"note":      {Type: "string"},
				},
				Required: []string{"seller_id", "item"},
			},
		},
		{
			Name:        "market_remove_listing",
			Description: "Remove a listing by id, or the seller's first listing of an item.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"seller_id": userIDProp,
					"id":        {Type: "string", Description: "Listing ID"},
					"item":      {Type: "string", Description: "Exact item name"},
				},
				Required: []string{"seller_id"},
			},
		},
		userOnly("market_listings", "List a user's market listings."),
		{
			Name:        "format_price",
			Description: "Convert gold/silver/copper into copper and its display form.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"gold":   {Type: "integer"},
					"silver": {Type: "integer"},
					"copper": {Type: "integer"},
				},
			},
		},
		{
			Name:        "reload_catalog",
			Description: "Re-read the stored recipe catalog and rebuild the search index.",
			InputSchema: JSONSchema{Type: "object"},
		},
	}
}
