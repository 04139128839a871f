package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	guestCartKeyPrefix = "cart:guest:"
)

type guestCartRepository struct {
	client *redis.Client
}

func NewGuestCartRepository(client *redis.Client) repository.GuestCartRepository {
	return &guestCartRepository{
		client: client,
	}
}

func (r *guestCartRepository) key(guestID string) string {
	return guestCartKeyPrefix + guestID
}

func (r *guestCartRepository) Get(ctx context.Context, guestID string) ([]entity.CartLine, error) {
	val, err := r.client.Get(ctx, r.key(guestID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []entity.CartLine{}, nil
		}
		return nil, fmt.Errorf("failed to get guest cart %s from redis: %w", guestID, err)
	}
	return decodeLines(guestID, val)
}

func (r *guestCartRepository) Update(ctx context.Context, guestID string, ttl time.Duration, fn func([]entity.CartLine) ([]entity.CartLine, error)) ([]entity.CartLine, error) {
	if guestID == "" {
		return nil, errors.New("cannot update guest cart with empty guestID")
	}

	var updated []entity.CartLine
	err := watchAndSet(ctx, r.client, r.key(guestID), ttl, func(current []byte) ([]byte, error) {
		lines := []entity.CartLine{}
		if current != nil {
			decoded, err := decodeLines(guestID, current)
			if err != nil {
				return nil, err
			}
			lines = decoded
		}

		next, err := fn(lines)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []entity.CartLine{}
		}
		data, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal guest cart %s: %w", guestID, err)
		}
		updated = next
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *guestCartRepository) Claim(ctx context.Context, guestID string) ([]entity.CartLine, error) {
	val, err := r.client.GetDel(ctx, r.key(guestID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []entity.CartLine{}, nil
		}
		return nil, fmt.Errorf("failed to claim guest cart %s from redis: %w", guestID, err)
	}
	return decodeLines(guestID, val)
}

func decodeLines(guestID string, data []byte) ([]entity.CartLine, error) {
	var lines []entity.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guest cart %s: %w", guestID, err)
	}
	if lines == nil {
		lines = []entity.CartLine{}
	}
	return lines, nil
}
