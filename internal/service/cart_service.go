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
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultGuestCartTTL     = 30 * 24 * time.Hour
	defaultMaxMergeAttempts = 3
	restoreTimeout          = 5 * time.Second
)

var tracer = otel.Tracer("storefront-service/service")

// CartView is a cart as returned to clients.
type CartView struct {
	OwnerID   string            `json:"owner_id"`
	Items     []entity.CartLine `json:"items"`
	ItemCount int               `json:"item_count"`
	Total     decimal.Decimal   `json:"total"`
}

// Reconciliation is the outcome of merging a guest cart into a user cart.
// GuestLines is the number of lines claimed from the guest cart.
type Reconciliation struct {
	Cart       *CartView
	GuestLines int
}

type CartService interface {
	AddItem(ctx context.Context, owner Owner, productID string, quantity int) (*CartView, error)
	UpdateItemQuantity(ctx context.Context, owner Owner, productID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, owner Owner, productID string) (*CartView, error)
	GetCart(ctx context.Context, owner Owner) (*CartView, error)
	// Reconcile moves the guest cart into the user cart. The guest cart is
	// consumed exactly once; if the merged cart cannot be saved it is put back.
	Reconcile(ctx context.Context, userID, guestID string) (*Reconciliation, error)
}

type CartServiceConfig struct {
	GuestTTL         time.Duration
	MaxMergeAttempts int
}

type cartService struct {
	guestCarts       repository.GuestCartRepository
	userCarts        repository.UserCartRepository
	catalog          CatalogService
	log              logger.Logger
	metrics          *metrics.Metrics
	guestTTL         time.Duration
	maxMergeAttempts int
}

func NewCartService(
	guestCarts repository.GuestCartRepository,
	userCarts repository.UserCartRepository,
	catalog CatalogService,
	log logger.Logger,
	m *metrics.Metrics,
	cfg CartServiceConfig,
) CartService {
	guestTTL := cfg.GuestTTL
	if guestTTL <= 0 {
		guestTTL = defaultGuestCartTTL
	}
	maxMergeAttempts := cfg.MaxMergeAttempts
	if maxMergeAttempts <= 0 {
		maxMergeAttempts = defaultMaxMergeAttempts
	}

	return &cartService{
		guestCarts:       guestCarts,
		userCarts:        userCarts,
		catalog:          catalog,
		log:              log.Named("CartService"),
		metrics:          m,
		guestTTL:         guestTTL,
		maxMergeAttempts: maxMergeAttempts,
	}
}

func newCartView(cart *entity.Cart) *CartView {
	items := cart.Lines
	if items == nil {
		items = make([]entity.CartLine, 0)
	}
	return &CartView{
		OwnerID:   cart.OwnerID,
		Items:     items,
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
	}
}

func (s *cartService) AddItem(ctx context.Context, owner Owner, productID string, quantity int) (*CartView, error) {
	s.log.Infof("AddItem: owner=%s, productID=%s, quantity=%d", owner.ID(), productID, quantity)
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if productID == "" || quantity <= 0 {
		return nil, fmt.Errorf("%w: product id and a positive quantity are required", ErrInvalidInput)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warnf("AddItem: product %s does not exist", productID)
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
		}
		return nil, err
	}

	line := product.CartLine(quantity)
	cart, err := s.mutate(ctx, owner, func(c *entity.Cart) error {
		return c.AddLine(line)
	})
	if err != nil {
		s.log.Errorf("AddItem: owner=%s, productID=%s: %v", owner.ID(), productID, err)
		return nil, err
	}

	s.metrics.ObserveItemsAdded(quantity)
	s.log.Infof("AddItem: Successfully added product %s to cart of %s", productID, owner.ID())
	return newCartView(cart), nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, owner Owner, productID string, quantity int) (*CartView, error) {
	s.log.Infof("UpdateItemQuantity: owner=%s, productID=%s, quantity=%d", owner.ID(), productID, quantity)
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}

	cart, err := s.mutate(ctx, owner, func(c *entity.Cart) error {
		return c.UpdateQuantity(productID, quantity)
	})
	if err != nil {
		s.log.Errorf("UpdateItemQuantity: owner=%s, productID=%s: %v", owner.ID(), productID, err)
		return nil, err
	}
	return newCartView(cart), nil
}

func (s *cartService) RemoveItem(ctx context.Context, owner Owner, productID string) (*CartView, error) {
	s.log.Infof("RemoveItem: owner=%s, productID=%s", owner.ID(), productID)
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}

	cart, err := s.mutate(ctx, owner, func(c *entity.Cart) error {
		return c.RemoveLine(productID)
	})
	if err != nil {
		s.log.Errorf("RemoveItem: owner=%s, productID=%s: %v", owner.ID(), productID, err)
		return nil, err
	}
	return newCartView(cart), nil
}

func (s *cartService) GetCart(ctx context.Context, owner Owner) (*CartView, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	cart, err := s.load(ctx, owner)
	if err != nil {
		s.log.Errorf("GetCart: owner=%s: %v", owner.ID(), err)
		return nil, err
	}
	return newCartView(cart), nil
}

func (s *cartService) Reconcile(ctx context.Context, userID, guestID string) (*Reconciliation, error) {
	ctx, span := tracer.Start(ctx, "CartService.Reconcile", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("guest.id", guestID),
	))
	defer span.End()

	s.log.Infof("Reconcile: userID=%s, guestID=%s", userID, guestID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var guestLines []entity.CartLine
	if guestID != "" {
		claimed, err := s.guestCarts.Claim(ctx, guestID)
		if err != nil {
			s.metrics.ObserveReconciliation(metrics.OutcomeFailed)
			span.RecordError(err)
			span.SetStatus(codes.Error, "claim guest cart failed")
			return nil, fmt.Errorf("failed to claim guest cart %s: %w", guestID, err)
		}
		guestLines = claimed
	}

	if len(guestLines) == 0 {
		cart, err := s.userCarts.GetCart(ctx, userID)
		if err != nil {
			s.metrics.ObserveReconciliation(metrics.OutcomeFailed)
			span.RecordError(err)
			span.SetStatus(codes.Error, "load user cart failed")
			return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
		}
		s.metrics.ObserveReconciliation(metrics.OutcomeNoop)
		s.log.Debugf("Reconcile: guest cart of %s is empty, nothing to merge", guestID)
		return &Reconciliation{Cart: newCartView(cart)}, nil
	}

	span.SetAttributes(attribute.Int("cart.guest_lines", len(guestLines)))
	cart, err := s.mutateUserCart(ctx, userID, func(c *entity.Cart) error {
		c.Lines = entity.MergeCarts(c.Lines, guestLines)
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		s.metrics.ObserveReconciliation(metrics.OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "save merged cart failed")
		s.restoreGuestCart(ctx, guestID, guestLines)
		return nil, fmt.Errorf("failed to reconcile cart for user %s: %w", userID, err)
	}

	s.metrics.ObserveReconciliation(metrics.OutcomeMerged)
	span.SetAttributes(attribute.Int("cart.total_lines", len(cart.Lines)))
	s.log.Infof("Reconcile: merged %d guest lines into cart of user %s (%d lines)", len(guestLines), userID, len(cart.Lines))
	return &Reconciliation{Cart: newCartView(cart), GuestLines: len(guestLines)}, nil
}

// restoreGuestCart puts a claimed guest cart back so a failed login loses
// nothing. Lines the guest added after the claim are kept after the restored ones.
func (s *cartService) restoreGuestCart(ctx context.Context, guestID string, lines []entity.CartLine) {
	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()

	_, err := s.guestCarts.Update(restoreCtx, guestID, s.guestTTL, func(current []entity.CartLine) ([]entity.CartLine, error) {
		return entity.MergeCarts(lines, current), nil
	})
	if err != nil {
		s.log.Errorf("Failed to restore guest cart %s after failed reconciliation: %v", guestID, err)
		return
	}
	s.log.Warnf("Restored guest cart %s after failed reconciliation", guestID)
}

func (s *cartService) load(ctx context.Context, owner Owner) (*entity.Cart, error) {
	if owner.IsGuest() {
		lines, err := s.guestCarts.Get(ctx, owner.GuestID)
		if err != nil {
			return nil, fmt.Errorf("failed to get guest cart %s: %w", owner.GuestID, err)
		}
		cart := entity.NewCart(owner.GuestID)
		cart.Lines = append(cart.Lines, lines...)
		return cart, nil
	}

	cart, err := s.userCarts.GetCart(ctx, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart for user %s: %w", owner.UserID, err)
	}
	return cart, nil
}

func (s *cartService) mutate(ctx context.Context, owner Owner, apply func(*entity.Cart) error) (*entity.Cart, error) {
	if owner.IsGuest() {
		return s.mutateGuestCart(ctx, owner.GuestID, apply)
	}
	return s.mutateUserCart(ctx, owner.UserID, apply)
}

func (s *cartService) mutateGuestCart(ctx context.Context, guestID string, apply func(*entity.Cart) error) (*entity.Cart, error) {
	var (
		cart     *entity.Cart
		applyErr error
	)
	_, err := s.guestCarts.Update(ctx, guestID, s.guestTTL, func(current []entity.CartLine) ([]entity.CartLine, error) {
		cart = entity.NewCart(guestID)
		cart.Lines = append(cart.Lines, current...)
		if applyErr = apply(cart); applyErr != nil {
			return nil, applyErr
		}
		return cart.Lines, nil
	})
	if applyErr != nil {
		return nil, applyErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save guest cart %s: %w", guestID, err)
	}
	return cart, nil
}

// mutateUserCart applies a change to the stored user cart with a versioned
// save, re-reading and re-applying it when another writer got there first.
func (s *cartService) mutateUserCart(ctx context.Context, userID string, apply func(*entity.Cart) error) (*entity.Cart, error) {
	for attempt := 1; attempt <= s.maxMergeAttempts; attempt++ {
		cart, err := s.userCarts.GetCart(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
		}
		if err := apply(cart); err != nil {
			return nil, err
		}

		err = s.userCarts.SaveCart(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repository.ErrOptimisticLock) {
			return nil, fmt.Errorf("failed to save cart for user %s: %w", userID, err)
		}

		s.metrics.ObserveMergeConflict()
		s.log.Warnf("Cart of user %s changed concurrently (attempt %d/%d), retrying", userID, attempt, s.maxMergeAttempts)
	}
	return nil, fmt.Errorf("failed to save cart for user %s after %d attempts: %w", userID, s.maxMergeAttempts, repository.ErrOptimisticLock)
}
