package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// Reasons reported by LearnRecipe and UnlearnRecipe.
const (
	ReasonMissingRecipe  = "recipe name is required"
	ReasonMissingUser    = "user id is required"
	ReasonAlreadyLearned = "recipe already learned"
	ReasonNotLearned     = "recipe not learned"
	ReasonTierTooLow     = "profession tier too low"
)

// LearnRecipe records a recipe as known by the user and adds the user to
// the recipe's crafters. Catalog names and links are resolved exactly
// first, then by substring; unknown recipes are kept as typed.
func (e *Engine) LearnRecipe(ctx context.Context, req crafting.LearnRequest) (*crafting.LearnResponse, error) {
	name := strings.TrimSpace(req.Recipe)
	resp := &crafting.LearnResponse{Recipe: name}
	switch {
	case req.UserID == "":
		resp.Reason = ReasonMissingUser
		return resp, nil
	case name == "":
		resp.Reason = ReasonMissingRecipe
		return resp, nil
	}

	profession := crafting.UnknownProfession
	if strings.TrimSpace(req.Profession) != "" {
		profession = e.aliases.Canonical(req.Profession)
	}

	rec, _, found := e.index.Resolve(name)
	if found {
		name = rec.Name
		resp.Link = rec.URL
		if strings.TrimSpace(req.Profession) == "" {
			profession = rec.Profession
		}
	}
	resp.Recipe = name
	resp.Profession = profession

	if e.enforceTiers && found {
		if level, err := strconv.Atoi(strings.TrimSpace(rec.Level)); err == nil && level > 0 {
			if !e.ledger.CanLearnRecipe(req.UserID, profession, level) {
				resp.Reason = fmt.Sprintf("%s: %s requires tier %d", ReasonTierTooLow, profession, level)
				return resp, nil
			}
		}
	}

	e.learnMu.Lock()
	defer e.learnMu.Unlock()

	before := e.learned.GetUserRecipes(req.UserID)
	added, err := e.learned.AddLearnedRecipe(ctx, req.UserID, profession, name, resp.Link)
	if err != nil {
		return nil, fmt.Errorf("learning recipe: %w", err)
	}
	if !added {
		resp.Reason = ReasonAlreadyLearned
		if !e.registry.Lists(req.UserID, name) {
			if err := e.registry.IndexLearn(ctx, req.UserID, name, profession); err != nil {
				return nil, fmt.Errorf("indexing crafter: %w", err)
			}
		}
		return resp, nil
	}

	if err := e.registry.IndexLearn(ctx, req.UserID, name, profession); err != nil {
		return nil, e.restoreLearned(ctx, req.UserID, before, fmt.Errorf("indexing crafter: %w", err))
	}

	e.logger.Info("recipe learned",
		zap.String("user", req.UserID.String()),
		zap.String("recipe", name),
		zap.String("profession", profession))
	resp.OK = true
	return resp, nil
}

// UnlearnRecipe removes a learned recipe. Without a profession the first
// profession the user learned it in is used. The user stays listed as a
// crafter while any profession bucket still holds the recipe.
func (e *Engine) UnlearnRecipe(ctx context.Context, req crafting.LearnRequest) (*crafting.LearnResponse, error) {
	name := strings.TrimSpace(req.Recipe)
	resp := &crafting.LearnResponse{Recipe: name}
	if name == "" {
		resp.Reason = ReasonMissingRecipe
		return resp, nil
	}

	held := e.learned.Professions(req.UserID, name)
	if len(held) == 0 {
		if rec, _, found := e.index.Resolve(name); found {
			name = rec.Name
			held = e.learned.Professions(req.UserID, name)
		}
	}
	resp.Recipe = name

	profession := ""
	if strings.TrimSpace(req.Profession) != "" {
		profession = e.aliases.Canonical(req.Profession)
	} else if len(held) > 0 {
		profession = held[0]
	}
	resp.Profession = profession
	if profession == "" {
		resp.Reason = ReasonNotLearned
		return resp, nil
	}

	e.learnMu.Lock()
	defer e.learnMu.Unlock()

	before := e.learned.GetUserRecipes(req.UserID)
	removed, err := e.learned.RemoveLearnedRecipe(ctx, req.UserID, profession, name)
	if err != nil {
		return nil, fmt.Errorf("unlearning recipe: %w", err)
	}
	if !removed {
		resp.Reason = ReasonNotLearned
		return resp, nil
	}

	if len(e.learned.Professions(req.UserID, name)) == 0 {
		if _, err := e.registry.UnindexLearn(ctx, req.UserID, name); err != nil {
			return nil, e.restoreLearned(ctx, req.UserID, before, fmt.Errorf("unindexing crafter: %w", err))
		}
	}

	e.logger.Info("recipe unlearned",
		zap.String("user", req.UserID.String()),
		zap.String("recipe", name),
		zap.String("profession", profession))
	resp.OK = true
	return resp, nil
}

// restoreLearned puts the user's learned recipes back after a failed
// registry write and returns cause, joined with any restore failure.
func (e *Engine) restoreLearned(ctx context.Context, userID crafting.UserID, before map[string][]crafting.LearnedRecipe, cause error) error {
	if err := e.learned.RestoreUserRecipes(ctx, userID, before); err != nil {
		e.logger.Error("learned recipes left out of sync with crafter registry",
			zap.String("user", userID.String()),
			zap.Error(err))
		return errors.Join(cause, fmt.Errorf("restoring learned recipes: %w", err))
	}
	return cause
}

// ListLearned returns the user's learned recipes grouped by profession.
func (e *Engine) ListLearned(ctx context.Context, req crafting.UserRequest) (*crafting.LearnedResponse, error) {
	return &crafting.LearnedResponse{Recipes: e.learned.GetUserRecipes(req.UserID)}, nil
}

// CrafterSearch executes the crafter_search tool logic.
func (e *Engine) CrafterSearch(ctx context.Context, req crafting.CrafterSearchRequest) (*crafting.CrafterSearchResponse, error) {
	hits := e.registry.SearchRegistry(req.Query)
	if hits == nil {
		hits = []crafting.RegistryHit{}
	}
	return &crafting.CrafterSearchResponse{Results: hits}, nil
}
