package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
)

const defaultProductCacheTTL = 5 * time.Minute

type CatalogService interface {
	ListProducts(ctx context.Context, category string) ([]entity.Product, error)
	SearchProducts(ctx context.Context, term string) ([]entity.Product, error)
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
	// SeedSampleProducts fills an empty catalog and reports how many products were inserted.
	SeedSampleProducts(ctx context.Context) (int, error)
}

type catalogService struct {
	products        repository.ProductRepository
	cache           repository.ProductCache
	log             logger.Logger
	productCacheTTL time.Duration
}

func NewCatalogService(
	products repository.ProductRepository,
	cache repository.ProductCache,
	log logger.Logger,
	productCacheTTL time.Duration,
) CatalogService {
	if productCacheTTL <= 0 {
		productCacheTTL = defaultProductCacheTTL
	}
	return &catalogService{
		products:        products,
		cache:           cache,
		log:             log.Named("CatalogService"),
		productCacheTTL: productCacheTTL,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, category string) ([]entity.Product, error) {
	c, err := entity.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	products, err := s.products.List(ctx, c)
	if err != nil {
		s.log.Errorf("ListProducts: category=%q: %v", c, err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *catalogService) SearchProducts(ctx context.Context, term string) ([]entity.Product, error) {
	products, err := s.products.Search(ctx, term)
	if err != nil {
		s.log.Errorf("SearchProducts: term=%q: %v", term, err)
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}

	cached, err := s.cache.Get(ctx, productID)
	if err == nil && cached != nil {
		s.log.Debugf("Product %s found in cache", productID)
		return cached, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warnf("Error getting product %s from cache: %v. Fetching from store.", productID, err)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, repository.ErrNotFound)
		}
		s.log.Errorf("GetProduct: productID=%s: %v", productID, err)
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}

	if err := s.cache.Set(ctx, product, s.productCacheTTL); err != nil {
		s.log.Warnf("Failed to set product %s to cache: %v", productID, err)
	}
	return product, nil
}

func (s *catalogService) SeedSampleProducts(ctx context.Context) (int, error) {
	count, err := s.products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products before seeding: %w", err)
	}
	if count > 0 {
		s.log.Debugf("Catalog already holds %d products, skipping seed", count)
		return 0, nil
	}

	samples := entity.SampleProducts()
	if err := s.products.InsertMany(ctx, samples); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			s.log.Infof("Sample products were seeded concurrently by another instance")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to seed sample products: %w", err)
	}

	s.log.Infof("Seeded %d sample products", len(samples))
	return len(samples), nil
}
