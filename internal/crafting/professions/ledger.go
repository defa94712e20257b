package professions

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// DefaultMaxPerUser is how many professions a user may hold at once.
const DefaultMaxPerUser = 2

// tierValue is a tier as stored in the ledger document.
// Older documents hold numbers, newer ones strings.
type tierValue string

func (t *tierValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = tierValue(s)
		return nil
	}
	*t = tierValue(string(data))
	return nil
}

// buckets maps profession -> user -> tier.
type buckets map[string]map[crafting.UserID]tierValue

func (b buckets) clone() buckets {
	out := make(buckets, len(b))
	for prof, users := range b {
		inner := make(map[crafting.UserID]tierValue, len(users))
		for id, tier := range users {
			inner[id] = tier
		}
		out[prof] = inner
	}
	return out
}

// held returns the professions a user holds.
func (b buckets) held(userID crafting.UserID) []string {
	var out []string
	for prof, users := range b {
		if _, ok := users[userID]; ok {
			out = append(out, prof)
		}
	}
	sort.Strings(out)
	return out
}

// Ledger stores profession memberships.
type Ledger struct {
	mu         sync.RWMutex
	backend    docstore.Backend
	aliases    *Aliases
	maxPerUser int
	buckets    buckets
}

// NewLedger creates an empty ledger persisted to backend.
// maxPerUser <= 0 selects DefaultMaxPerUser.
func NewLedger(backend docstore.Backend, aliases *Aliases, maxPerUser int) *Ledger {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	if maxPerUser <= 0 {
		maxPerUser = DefaultMaxPerUser
	}
	return &Ledger{
		backend:    backend,
		aliases:    aliases,
		maxPerUser: maxPerUser,
		buckets:    make(buckets),
	}
}

// Load replaces the in-memory ledger with the stored document.
// Bucket keys are canonicalized; a missing document yields an empty ledger.
func (l *Ledger) Load(ctx context.Context) error {
	var doc buckets
	if _, err := docstore.LoadJSON(ctx, l.backend, docstore.KeyProfessions, &doc); err != nil {
		return err
	}

	loaded := make(buckets, len(doc))
	for prof, users := range doc {
		canon := l.aliases.Canonical(prof)
		if loaded[canon] == nil {
			loaded[canon] = make(map[crafting.UserID]tierValue, len(users))
		}
		for id, tier := range users {
			loaded[canon][id] = tier
		}
	}

	l.mu.Lock()
	l.buckets = loaded
	l.mu.Unlock()
	return nil
}

// commit persists next and makes it current. Callers hold l.mu.
func (l *Ledger) commit(ctx context.Context, next buckets) error {
	if err := docstore.SaveJSON(ctx, l.backend, docstore.KeyProfessions, next); err != nil {
		return err
	}
	l.buckets = next
	return nil
}

// SetUserProfession assigns profession at tier to the user. It returns false
// without changing anything when the tier is out of range or the user would
// exceed the profession cap. Re-assigning a held profession always succeeds.
func (l *Ledger) SetUserProfession(ctx context.Context, userID crafting.UserID, profession string, tier int) (bool, error) {
	if tier < crafting.MinTier || tier > crafting.MaxTier {
		return false, nil
	}
	profession = l.aliases.Canonical(profession)
	userID = userID.Canonical()

	l.mu.Lock()
	defer l.mu.Unlock()

	held := l.buckets.held(userID)
	alreadyHeld := false
	for _, p := range held {
		if p == profession {
			alreadyHeld = true
			break
		}
	}
	if !alreadyHeld && len(held) >= l.maxPerUser {
		return false, nil
	}

	next := l.buckets.clone()
	if next[profession] == nil {
		next[profession] = make(map[crafting.UserID]tierValue)
	}
	next[profession][userID] = tierValue(strconv.Itoa(tier))

	if err := l.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveUserProfession drops the user from the profession's bucket.
// It returns false when the user does not hold the profession.
func (l *Ledger) RemoveUserProfession(ctx context.Context, userID crafting.UserID, profession string) (bool, error) {
	profession = l.aliases.Canonical(profession)
	userID = userID.Canonical()

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.buckets[profession][userID]; !ok {
		return false, nil
	}

	next := l.buckets.clone()
	delete(next[profession], userID)
	if len(next[profession]) == 0 {
		delete(next, profession)
	}

	if err := l.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// GetUserProfessions returns the user's professions sorted by name.
func (l *Ledger) GetUserProfessions(userID crafting.UserID) []crafting.HeldProfession {
	userID = userID.Canonical()
	l.mu.RLock()
	defer l.mu.RUnlock()

	held := l.buckets.held(userID)
	out := make([]crafting.HeldProfession, 0, len(held))
	for _, prof := range held {
		out = append(out, crafting.HeldProfession{
			Name: prof,
			Tier: string(l.buckets[prof][userID]),
		})
	}
	return out
}

// DisplayTier returns the tier exactly as stored.
func (l *Ledger) DisplayTier(userID crafting.UserID, profession string) (string, bool) {
	profession = l.aliases.Canonical(profession)
	userID = userID.Canonical()

	l.mu.RLock()
	defer l.mu.RUnlock()

	tier, ok := l.buckets[profession][userID]
	return string(tier), ok
}

// GetUserTier returns the user's numeric tier in profession. It reports
// false when the profession is not held or the stored tier is not a number.
func (l *Ledger) GetUserTier(userID crafting.UserID, profession string) (int, bool) {
	raw, ok := l.DisplayTier(userID, profession)
	if !ok {
		return 0, false
	}
	tier, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return tier, true
}

// CanLearnRecipe reports whether the user holds profession at requiredTier or above.
func (l *Ledger) CanLearnRecipe(userID crafting.UserID, profession string, requiredTier int) bool {
	tier, ok := l.GetUserTier(userID, profession)
	return ok && tier >= requiredTier
}

// Holders lists the members of a profession, highest tier first.
// Non-numeric tiers sort last; ties break on user id.
func (l *Ledger) Holders(profession string) []crafting.ProfessionEntry {
	profession = l.aliases.Canonical(profession)

	l.mu.RLock()
	users := l.buckets[profession]
	out := make([]crafting.ProfessionEntry, 0, len(users))
	for id, tier := range users {
		out = append(out, crafting.ProfessionEntry{UserID: id, Tier: string(tier)})
	}
	l.mu.RUnlock()

	numeric := func(s string) int {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return -1
		}
		return n
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := numeric(out[i].Tier), numeric(out[j].Tier)
		if ti != tj {
			return ti > tj
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Canonical exposes the ledger's alias table.
func (l *Ledger) Canonical(profession string) string {
	return l.aliases.Canonical(profession)
}
