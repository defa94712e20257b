// Package docstore persists whole JSON documents by key.
//
// Every store of the companion owns one document and rewrites it in full
// after each mutation. Backends guarantee that a Save either replaces the
// previous document completely or leaves it untouched.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document keys used by the stores.
const (
	KeyCatalog     = "catalog"
	KeyProfessions = "professions"
	KeyLearned     = "learned_recipes"
	KeyRegistry    = "crafter_registry"
	KeyMarket      = "market"
	KeyProfiles    = "profiles"
)

// Backend loads and saves raw documents.
type Backend interface {
	// Load returns the document body; the boolean is false when it does not exist.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	// Save atomically replaces the document.
	Save(ctx context.Context, key string, body []byte) error
	Close() error
}

// MetadataRecorder is implemented by backends that keep sync metadata.
type MetadataRecorder interface {
	SetSyncMetadata(ctx context.Context, key, value string) error
	GetSyncMetadata(ctx context.Context, key string) (string, error)
}

// LoadJSON decodes the document stored under key into v.
// It reports false, leaving v untouched, when the document does not exist.
func LoadJSON(ctx context.Context, b Backend, key string, v any) (bool, error) {
	body, ok, err := b.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("loading document %s: %w", key, err)
	}
	if !ok || len(body) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return false, fmt.Errorf("decoding document %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and replaces the document stored under key.
func SaveJSON(ctx context.Context, b Backend, key string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", key, err)
	}
	if err := b.Save(ctx, key, body); err != nil {
		return fmt.Errorf("saving document %s: %w", key, err)
	}
	return nil
}
