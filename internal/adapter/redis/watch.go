package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const maxWatchRetries = 5

// watchAndSet rewrites key with the value computed from its current contents.
// The write is discarded and recomputed when key changes in between, so it
// never resurrects a value that a concurrent GETDEL already consumed. Errors
// returned by compute are passed through unwrapped.
func watchAndSet(ctx context.Context, client *redis.Client, key string, ttl time.Duration, compute func(current []byte) ([]byte, error)) error {
	var computeErr error
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		next, err := compute(current)
		if err != nil {
			computeErr = err
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if computeErr != nil {
			return computeErr
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("failed to update %s: %w", key, err)
		}
	}
	return fmt.Errorf("%s kept changing after %d attempts: %w", key, maxWatchRetries, repository.ErrOptimisticLock)
}
