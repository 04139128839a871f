package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
)

type ProductRepository interface {
	// List returns every product when category is empty.
	List(ctx context.Context, category entity.Category) ([]entity.Product, error)
	Search(ctx context.Context, term string) ([]entity.Product, error)
	GetByID(ctx context.Context, productID string) (*entity.Product, error)
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, products []entity.Product) error
}

type ProductCache interface {
	Get(ctx context.Context, productID string) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product, ttl time.Duration) error
	Delete(ctx context.Context, productID string) error
}
