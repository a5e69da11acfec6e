package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Addr       string
	Password   string
	MaxRetries int
}

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = "localhost:6379"
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	return o
}

// ConnectRedis pings the server with exponential backoff until it answers or
// the attempts run out.
func ConnectRedis(ctx context.Context, opts Options) (*redis.Client, error) {
	opts = opts.withDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:            opts.Addr,
		Password:        opts.Password,
		DB:              0,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	})

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 16 * time.Second

	attempt := 0
	op := func() error {
		attempt++
		log.Info().Int("attempt", attempt).Int("max_retries", opts.MaxRetries).Str("addr", opts.Addr).Msg("Connecting to Redis")
		return client.Ping(ctx).Err()
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", wait).Msg("Redis ping failed")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(opts.MaxRetries-1)), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", attempt, err)
	}

	log.Info().Int("attempts_needed", attempt).Msg("Redis connected")
	return client, nil
}
