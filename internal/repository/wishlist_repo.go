package repository

import (
	"context"
	"time"
)

type WishlistRepository interface {
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	// ListByUserID returns product ids in the order they were added.
	ListByUserID(ctx context.Context, userID string) ([]string, error)
}

type GuestWishlistRepository interface {
	Get(ctx context.Context, guestID string) ([]string, error)
	// Update has the same guarantees as GuestCartRepository.Update.
	Update(ctx context.Context, guestID string, ttl time.Duration, fn func([]string) ([]string, error)) ([]string, error)
	Claim(ctx context.Context, guestID string) ([]string, error)
}
