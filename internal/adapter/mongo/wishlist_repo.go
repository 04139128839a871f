package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const wishlistsCollection = "wishlists"

type WishlistRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

func NewWishlistRepository(ctx context.Context, db *mongo.Database, log logger.Logger) *WishlistRepository {
	collection := db.Collection(wishlistsCollection)

	indexCtx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := collection.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Warnf("Failed to create index for wishlists collection (may already exist): %v", err)
	}

	return &WishlistRepository{
		collection: collection,
		log:        log.Named("WishlistRepository"),
	}
}

func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) error {
	if userID == "" || productID == "" {
		return errors.New("userID and productID cannot be empty for a wishlist entry")
	}

	doc := wishlistDocument{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to add product %s to wishlist of %s: %w", productID, userID, err)
	}
	r.log.Debugf("Product %s added to wishlist of user %s", productID, userID)
	return nil
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		return fmt.Errorf("failed to remove product %s from wishlist of %s: %w", productID, userID, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	r.log.Debugf("Product %s removed from wishlist of user %s", productID, userID)
	return nil
}

func (r *WishlistRepository) ListByUserID(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist of %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var docs []wishlistDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist of %s: %w", userID, err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ProductID)
	}
	return ids, nil
}
