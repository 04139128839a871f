package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
)

// GuestCartRepository stores anonymous carts as a plain sequence of lines.
// A missing cart reads as an empty one.
type GuestCartRepository interface {
	Get(ctx context.Context, guestID string) ([]entity.CartLine, error)
	// Update stores fn applied to the current lines. It is atomic with
	// respect to Claim: a cart claimed while fn runs is never written back,
	// fn is re-run on the fresh contents instead. Errors from fn are returned
	// unchanged.
	Update(ctx context.Context, guestID string, ttl time.Duration, fn func([]entity.CartLine) ([]entity.CartLine, error)) ([]entity.CartLine, error)
	// Claim reads and deletes the cart in one step.
	Claim(ctx context.Context, guestID string) ([]entity.CartLine, error)
}

// UserCartRepository stores the cart field of a user record. SaveCart only
// succeeds when cart.Version still matches the stored version and returns
// ErrOptimisticLock otherwise; on success cart.Version is advanced.
type UserCartRepository interface {
	GetCart(ctx context.Context, userID string) (*entity.Cart, error)
	SaveCart(ctx context.Context, cart *entity.Cart) error
}
