package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisOptions tunes the client for the caller. The API server holds the
// hub subscription and the kv watch open; the desk CLI needs a couple of
// connections for one command.
type RedisOptions struct {
	PoolSize     int
	MinIdleConns int
}

// ServerRedis is sized for cmd/api.
var ServerRedis = RedisOptions{PoolSize: 20, MinIdleConns: 4}

// CLIRedis is sized for cmd/desk.
var CLIRedis = RedisOptions{PoolSize: 2}

// NewRedis returns nil, nil when redisURL is empty: Redis is optional and
// callers fall back to the file store and a single-instance hub.
func NewRedis(ctx context.Context, redisURL string, opts RedisOptions) (*redis.Client, error) {
	if redisURL == "" {
		log.Debug().Msg("Redis URL not configured, running without Redis")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if opts.PoolSize > 0 {
		opt.PoolSize = opts.PoolSize
	}
	opt.MinIdleConns = opts.MinIdleConns
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	log.Info().Str("addr", opt.Addr).Msg("Connected to Redis")
	return client, nil
}

// CloseRedis closes client; nil is ignored.
func CloseRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Redis connection")
		return
	}
	log.Info().Msg("Redis connection closed")
}
