package docstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string       `mapstructure:"backend"`
	SQLitePath string       `mapstructure:"sqlite_path"`
	Dir        string       `mapstructure:"dir"`
	Redis      RedisOptions `mapstructure:"redis"`
}

// RedisOptions holds Redis connection details.
type RedisOptions struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", "sqlite":
		return OpenSQLite(ctx, opts.SQLitePath)
	case "file":
		return NewFile(opts.Dir)
	case "memory":
		return NewMemory(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     opts.Redis.Addr,
			Password: opts.Redis.Password,
			DB:       opts.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return NewRedis(client, opts.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
