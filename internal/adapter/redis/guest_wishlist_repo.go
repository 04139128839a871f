package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	guestWishlistKeyPrefix = "wishlist:guest:"
)

type guestWishlistRepository struct {
	client *redis.Client
}

func NewGuestWishlistRepository(client *redis.Client) repository.GuestWishlistRepository {
	return &guestWishlistRepository{client: client}
}

func (r *guestWishlistRepository) key(guestID string) string {
	return guestWishlistKeyPrefix + guestID
}

func (r *guestWishlistRepository) Get(ctx context.Context, guestID string) ([]string, error) {
	val, err := r.client.Get(ctx, r.key(guestID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to get guest wishlist %s from redis: %w", guestID, err)
	}
	return decodeIDs(guestID, val)
}

func (r *guestWishlistRepository) Update(ctx context.Context, guestID string, ttl time.Duration, fn func([]string) ([]string, error)) ([]string, error) {
	if guestID == "" {
		return nil, errors.New("cannot update guest wishlist with empty guestID")
	}

	var updated []string
	err := watchAndSet(ctx, r.client, r.key(guestID), ttl, func(current []byte) ([]byte, error) {
		ids := []string{}
		if current != nil {
			decoded, err := decodeIDs(guestID, current)
			if err != nil {
				return nil, err
			}
			ids = decoded
		}

		next, err := fn(ids)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []string{}
		}
		data, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal guest wishlist %s: %w", guestID, err)
		}
		updated = next
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *guestWishlistRepository) Claim(ctx context.Context, guestID string) ([]string, error) {
	val, err := r.client.GetDel(ctx, r.key(guestID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to claim guest wishlist %s from redis: %w", guestID, err)
	}
	return decodeIDs(guestID, val)
}

func decodeIDs(guestID string, data []byte) ([]string, error) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guest wishlist %s: %w", guestID, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
