package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollection = "products"

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{collection: db.Collection(productsCollection)}
}

func (r *ProductRepository) List(ctx context.Context, category entity.Category) ([]entity.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = string(category)
	}
	return r.find(ctx, filter)
}

func (r *ProductRepository) Search(ctx context.Context, term string) ([]entity.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return r.find(ctx, bson.M{})
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"description": pattern},
	}}
	return r.find(ctx, filter)
}

func (r *ProductRepository) GetByID(ctx context.Context, productID string) (*entity.Product, error) {
	var doc productDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product %s: %w", productID, err)
	}
	return doc.toEntity()
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// InsertMany stores products keeping their slice order as catalog order.
func (r *ProductRepository) InsertMany(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}

	base := time.Now().UTC()
	docs := make([]interface{}, 0, len(products))
	for i := range products {
		doc, err := fromProductEntity(&products[i], base.Add(time.Duration(i)*time.Millisecond))
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert products: %w", err)
	}
	return nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M) ([]entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]entity.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toEntity()
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}
