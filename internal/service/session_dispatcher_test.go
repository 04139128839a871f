package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessionDispatcher_SignedInMergesAndPublishes(t *testing.T) {
	carts := new(MockCartService)
	wishlists := new(MockWishlistService)
	publisher := new(MockEventPublisher)
	d := NewSessionDispatcher(carts, wishlists, publisher, logger.NewNop())

	cart := &CartView{OwnerID: "user-1", Items: []entity.CartLine{line("1", 3), line("2", 3)}, ItemCount: 6}
	wishlist := &entity.Wishlist{OwnerID: "user-1", ProductIDs: []string{"4"}}

	carts.On("Reconcile", mock.Anything, "user-1", "guest-1").Return(&Reconciliation{Cart: cart, GuestLines: 2}, nil).Once()
	wishlists.On("Merge", mock.Anything, "user-1", "guest-1").Return(wishlist, nil).Once()
	publisher.On("Publish", mock.Anything, SubjectCartReconciled, mock.MatchedBy(func(e entity.CartReconciled) bool {
		return e.UserID == "user-1" && e.MergedLines == 2 && e.TotalLines == 2 && e.ItemCount == 6
	})).Return(nil).Once()

	result, err := d.Dispatch(context.Background(), entity.AuthStateChanged{UserID: "user-1", GuestID: "guest-1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.UserID)
	assert.Equal(t, cart, result.Cart)
	assert.Equal(t, wishlist, result.Wishlist)

	carts.AssertExpectations(t)
	wishlists.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSessionDispatcher_NoGuestLinesDoesNotPublish(t *testing.T) {
	carts := new(MockCartService)
	wishlists := new(MockWishlistService)
	publisher := new(MockEventPublisher)
	d := NewSessionDispatcher(carts, wishlists, publisher, logger.NewNop())

	carts.On("Reconcile", mock.Anything, "user-1", "").Return(&Reconciliation{Cart: &CartView{OwnerID: "user-1"}}, nil).Once()
	wishlists.On("Merge", mock.Anything, "user-1", "").Return(&entity.Wishlist{OwnerID: "user-1"}, nil).Once()

	_, err := d.Dispatch(context.Background(), entity.AuthStateChanged{UserID: "user-1"})
	require.NoError(t, err)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionDispatcher_PublishFailureIsNotFatal(t *testing.T) {
	carts := new(MockCartService)
	wishlists := new(MockWishlistService)
	publisher := new(MockEventPublisher)
	d := NewSessionDispatcher(carts, wishlists, publisher, logger.NewNop())

	carts.On("Reconcile", mock.Anything, "user-1", "guest-1").
		Return(&Reconciliation{Cart: &CartView{OwnerID: "user-1", Items: []entity.CartLine{line("1", 1)}}, GuestLines: 1}, nil).Once()
	wishlists.On("Merge", mock.Anything, "user-1", "guest-1").Return(&entity.Wishlist{OwnerID: "user-1"}, nil).Once()
	publisher.On("Publish", mock.Anything, SubjectCartReconciled, mock.Anything).Return(errors.New("nats down")).Once()

	result, err := d.Dispatch(context.Background(), entity.AuthStateChanged{UserID: "user-1", GuestID: "guest-1"})
	require.NoError(t, err)
	assert.NotNil(t, result.Cart)
}

func TestSessionDispatcher_SignedOutIsNoop(t *testing.T) {
	carts := new(MockCartService)
	wishlists := new(MockWishlistService)
	d := NewSessionDispatcher(carts, wishlists, nil, logger.NewNop())

	result, err := d.Dispatch(context.Background(), entity.AuthStateChanged{GuestID: "guest-1"})
	require.NoError(t, err)
	assert.Nil(t, result.Cart)
	carts.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything)
	wishlists.AssertNotCalled(t, "Merge", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionDispatcher_ReconcileFailure(t *testing.T) {
	carts := new(MockCartService)
	wishlists := new(MockWishlistService)
	d := NewSessionDispatcher(carts, wishlists, nil, logger.NewNop())

	carts.On("Reconcile", mock.Anything, "user-1", "guest-1").Return(nil, errors.New("boom")).Once()

	_, err := d.Dispatch(context.Background(), entity.AuthStateChanged{UserID: "user-1", GuestID: "guest-1"})
	assert.Error(t, err)
	wishlists.AssertNotCalled(t, "Merge", mock.Anything, mock.Anything, mock.Anything)
}
