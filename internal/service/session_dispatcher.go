package service

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
)

// SessionResult is the state a visitor ends up with after an
// authentication change. Cart and Wishlist are nil after sign-out.
type SessionResult struct {
	UserID   string           `json:"user_id,omitempty"`
	Cart     *CartView        `json:"cart,omitempty"`
	Wishlist *entity.Wishlist `json:"wishlist,omitempty"`
}

type SessionDispatcher interface {
	Dispatch(ctx context.Context, event entity.AuthStateChanged) (*SessionResult, error)
}

type sessionDispatcher struct {
	carts     CartService
	wishlists WishlistService
	publisher EventPublisher
	log       logger.Logger
}

func NewSessionDispatcher(carts CartService, wishlists WishlistService, publisher EventPublisher, log logger.Logger) SessionDispatcher {
	return &sessionDispatcher{
		carts:     carts,
		wishlists: wishlists,
		publisher: publisher,
		log:       log.Named("SessionDispatcher"),
	}
}

func (d *sessionDispatcher) Dispatch(ctx context.Context, event entity.AuthStateChanged) (*SessionResult, error) {
	if !event.SignedIn() {
		d.log.Debugf("Dispatch: guest %s signed out, nothing to merge", event.GuestID)
		return &SessionResult{}, nil
	}

	d.log.Infof("Dispatch: user %s signed in with guest id %q", event.UserID, event.GuestID)

	reconciliation, err := d.carts.Reconcile(ctx, event.UserID, event.GuestID)
	if err != nil {
		d.log.Errorf("Dispatch: cart reconciliation for user %s failed: %v", event.UserID, err)
		return nil, err
	}

	wishlist, err := d.wishlists.Merge(ctx, event.UserID, event.GuestID)
	if err != nil {
		d.log.Errorf("Dispatch: wishlist merge for user %s failed: %v", event.UserID, err)
		return nil, err
	}

	if reconciliation.GuestLines > 0 && d.publisher != nil {
		payload := entity.CartReconciled{
			UserID:      event.UserID,
			GuestID:     event.GuestID,
			MergedLines: reconciliation.GuestLines,
			TotalLines:  len(reconciliation.Cart.Items),
			ItemCount:   reconciliation.Cart.ItemCount,
			OccurredAt:  time.Now().UTC(),
		}
		if err := d.publisher.Publish(ctx, SubjectCartReconciled, payload); err != nil {
			d.log.Warnf("Failed to publish %s for user %s: %v", SubjectCartReconciled, event.UserID, err)
		}
	}

	return &SessionResult{
		UserID:   event.UserID,
		Cart:     reconciliation.Cart,
		Wishlist: wishlist,
	}, nil
}
