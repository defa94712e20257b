package docstore

import (
	"context"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/db"
)

// SQLite stores documents in the documents table.
type SQLite struct {
	db *db.DB
}

// NewSQLite wraps an initialized database.
func NewSQLite(database *db.DB) *SQLite {
	return &SQLite{db: database}
}

// OpenSQLite opens and initializes the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	database, err := db.OpenAndInit(ctx, path)
	if err != nil {
		return nil, err
	}
	return &SQLite{db: database}, nil
}

func (s *SQLite) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return s.db.GetDocument(ctx, key)
}

func (s *SQLite) Save(ctx context.Context, key string, body []byte) error {
	return s.db.PutDocument(ctx, key, body)
}

func (s *SQLite) SetSyncMetadata(ctx context.Context, key, value string) error {
	return s.db.SetSyncMetadata(ctx, key, value)
}

func (s *SQLite) GetSyncMetadata(ctx context.Context, key string) (string, error) {
	return s.db.GetSyncMetadata(ctx, key)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
