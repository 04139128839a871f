package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const subscribersCollection = "newsletter_subscribers"

type NewsletterRepository struct {
	collection *mongo.Collection
}

func NewNewsletterRepository(ctx context.Context, db *mongo.Database, log logger.Logger) *NewsletterRepository {
	collection := db.Collection(subscribersCollection)

	indexCtx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := collection.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Warnf("Failed to create email index for %s (may already exist): %v", subscribersCollection, err)
	}

	return &NewsletterRepository{collection: collection}
}

func (r *NewsletterRepository) Subscribe(ctx context.Context, email string, at time.Time) error {
	_, err := r.collection.InsertOne(ctx, subscriberDocument{Email: email, SubscribedAt: at})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to store newsletter subscriber: %w", err)
	}
	return nil
}
