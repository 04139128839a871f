package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
)

type WishlistService interface {
	// Toggle adds the product when absent and removes it when present. The
	// returned flag reports whether the product is in the wishlist afterwards.
	Toggle(ctx context.Context, owner Owner, productID string) (*entity.Wishlist, bool, error)
	List(ctx context.Context, owner Owner) (*entity.Wishlist, error)
	Merge(ctx context.Context, userID, guestID string) (*entity.Wishlist, error)
}

type wishlistService struct {
	wishlists      repository.WishlistRepository
	guestWishlists repository.GuestWishlistRepository
	catalog        CatalogService
	log            logger.Logger
	metrics        *metrics.Metrics
	guestTTL       time.Duration
}

func NewWishlistService(
	wishlists repository.WishlistRepository,
	guestWishlists repository.GuestWishlistRepository,
	catalog CatalogService,
	log logger.Logger,
	m *metrics.Metrics,
	guestTTL time.Duration,
) WishlistService {
	if guestTTL <= 0 {
		guestTTL = defaultGuestCartTTL
	}
	return &wishlistService{
		wishlists:      wishlists,
		guestWishlists: guestWishlists,
		catalog:        catalog,
		log:            log.Named("WishlistService"),
		metrics:        m,
		guestTTL:       guestTTL,
	}
}

func (s *wishlistService) Toggle(ctx context.Context, owner Owner, productID string) (*entity.Wishlist, bool, error) {
	s.log.Infof("Toggle: owner=%s, productID=%s", owner.ID(), productID)
	if err := owner.validate(); err != nil {
		return nil, false, err
	}

	var (
		wishlist *entity.Wishlist
		added    bool
		err      error
	)
	if owner.IsGuest() {
		wishlist, added, err = s.toggleGuest(ctx, owner.GuestID, productID)
	} else {
		wishlist, added, err = s.toggleUser(ctx, owner.UserID, productID)
	}
	if err != nil {
		s.log.Errorf("Toggle: owner=%s, productID=%s: %v", owner.ID(), productID, err)
		return nil, false, err
	}

	s.metrics.ObserveWishlistToggle(added)
	return wishlist, added, nil
}

func (s *wishlistService) toggleGuest(ctx context.Context, guestID, productID string) (*entity.Wishlist, bool, error) {
	var (
		added     bool
		toggleErr error
	)
	ids, err := s.guestWishlists.Update(ctx, guestID, s.guestTTL, func(current []string) ([]string, error) {
		wishlist := &entity.Wishlist{OwnerID: guestID, ProductIDs: append(make([]string, 0, len(current)+1), current...)}
		if !wishlist.Contains(productID) {
			if toggleErr = s.ensureProduct(ctx, productID); toggleErr != nil {
				return nil, toggleErr
			}
		}
		added = wishlist.Toggle(productID)
		return wishlist.ProductIDs, nil
	})
	if toggleErr != nil {
		return nil, false, toggleErr
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to update wishlist of %s: %w", guestID, err)
	}
	return &entity.Wishlist{OwnerID: guestID, ProductIDs: nonNil(ids)}, added, nil
}

func (s *wishlistService) toggleUser(ctx context.Context, userID, productID string) (*entity.Wishlist, bool, error) {
	wishlist, err := s.List(ctx, Owner{UserID: userID})
	if err != nil {
		return nil, false, err
	}
	if !wishlist.Contains(productID) {
		if err := s.ensureProduct(ctx, productID); err != nil {
			return nil, false, err
		}
	}

	added := wishlist.Toggle(productID)
	if added {
		err = s.wishlists.Add(ctx, userID, productID)
		if errors.Is(err, repository.ErrAlreadyExists) {
			err = nil
		}
	} else {
		err = s.wishlists.Remove(ctx, userID, productID)
		if errors.Is(err, repository.ErrNotFound) {
			err = nil
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to update wishlist of %s: %w", userID, err)
	}
	return wishlist, added, nil
}

func (s *wishlistService) ensureProduct(ctx context.Context, productID string) error {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
		}
		return err
	}
	return nil
}

func (s *wishlistService) List(ctx context.Context, owner Owner) (*entity.Wishlist, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	var (
		ids []string
		err error
	)
	if owner.IsGuest() {
		ids, err = s.guestWishlists.Get(ctx, owner.GuestID)
	} else {
		ids, err = s.wishlists.ListByUserID(ctx, owner.UserID)
	}
	if err != nil {
		s.log.Errorf("List: owner=%s: %v", owner.ID(), err)
		return nil, fmt.Errorf("failed to get wishlist of %s: %w", owner.ID(), err)
	}
	if ids == nil {
		ids = make([]string, 0)
	}
	return &entity.Wishlist{OwnerID: owner.ID(), ProductIDs: ids}, nil
}

func (s *wishlistService) Merge(ctx context.Context, userID, guestID string) (*entity.Wishlist, error) {
	s.log.Infof("Merge: userID=%s, guestID=%s", userID, guestID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	userIDs, err := s.wishlists.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist of user %s: %w", userID, err)
	}
	if guestID == "" {
		return &entity.Wishlist{OwnerID: userID, ProductIDs: nonNil(userIDs)}, nil
	}

	guestIDs, err := s.guestWishlists.Claim(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim guest wishlist %s: %w", guestID, err)
	}

	merged := entity.MergeWishlists(userIDs, guestIDs)
	for _, productID := range merged[len(userIDs):] {
		if err := s.wishlists.Add(ctx, userID, productID); err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
			s.restoreGuestWishlist(ctx, guestID, guestIDs)
			return nil, fmt.Errorf("failed to merge wishlist for user %s: %w", userID, err)
		}
	}

	if len(guestIDs) > 0 {
		s.log.Infof("Merge: moved %d guest wishlist entries to user %s", len(merged)-len(userIDs), userID)
	}
	return &entity.Wishlist{OwnerID: userID, ProductIDs: merged}, nil
}

func (s *wishlistService) restoreGuestWishlist(ctx context.Context, guestID string, productIDs []string) {
	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()

	_, err := s.guestWishlists.Update(restoreCtx, guestID, s.guestTTL, func(current []string) ([]string, error) {
		return entity.MergeWishlists(productIDs, current), nil
	})
	if err != nil {
		s.log.Errorf("Failed to restore guest wishlist %s: %v", guestID, err)
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return make([]string, 0)
	}
	return ids
}
