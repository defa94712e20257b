package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// SetProfession assigns a profession tier and refreshes the tier shown in
// the crafter registry.
func (e *Engine) SetProfession(ctx context.Context, req crafting.ProfessionRequest) (*crafting.ProfessionResponse, error) {
	ok, err := e.ledger.SetUserProfession(ctx, req.UserID, req.Profession, req.Tier)
	if err != nil {
		return nil, fmt.Errorf("setting profession: %w", err)
	}
	return e.afterProfessionChange(ctx, req, ok, "profession set")
}

// RemoveProfession drops a profession and refreshes the crafter registry.
func (e *Engine) RemoveProfession(ctx context.Context, req crafting.ProfessionRequest) (*crafting.ProfessionResponse, error) {
	ok, err := e.ledger.RemoveUserProfession(ctx, req.UserID, req.Profession)
	if err != nil {
		return nil, fmt.Errorf("removing profession: %w", err)
	}
	return e.afterProfessionChange(ctx, req, ok, "profession removed")
}

func (e *Engine) afterProfessionChange(ctx context.Context, req crafting.ProfessionRequest, ok bool, msg string) (*crafting.ProfessionResponse, error) {
	if ok {
		if err := e.registry.RefreshUser(ctx, req.UserID); err != nil {
			return nil, fmt.Errorf("refreshing crafter registry: %w", err)
		}
		e.logger.Info(msg,
			zap.String("user", req.UserID.String()),
			zap.String("profession", e.aliases.Canonical(req.Profession)),
			zap.Int("tier", req.Tier))
	}
	return &crafting.ProfessionResponse{
		OK:          ok,
		Professions: e.ledger.GetUserProfessions(req.UserID),
	}, nil
}

// ProfessionMembers lists who holds a profession, highest tier first.
func (e *Engine) ProfessionMembers(ctx context.Context, req crafting.ProfessionMembersRequest) (*crafting.ProfessionMembersResponse, error) {
	name := e.aliases.Canonical(req.Profession)
	known := false
	for _, k := range e.aliases.Known() {
		if k == name {
			known = true
			break
		}
	}
	return &crafting.ProfessionMembersResponse{
		Profession: name,
		Known:      known,
		Members:    e.ledger.Holders(name),
	}, nil
}

// ListProfessions returns the user's professions.
func (e *Engine) ListProfessions(ctx context.Context, req crafting.UserRequest) (*crafting.ProfessionResponse, error) {
	return &crafting.ProfessionResponse{
		OK:          true,
		Professions: e.ledger.GetUserProfessions(req.UserID),
	}, nil
}
