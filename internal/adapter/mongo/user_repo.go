package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// UserRepository persists user records, including the per-user cart field.
// It serves both repository.UserRepository and repository.UserCartRepository.
type UserRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

func NewUserRepository(ctx context.Context, db *mongo.Database, log logger.Logger) *UserRepository {
	collection := db.Collection(usersCollection)

	indexCtx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := collection.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Warnf("Failed to create email index for users collection (may already exist): %v", err)
	}

	return &UserRepository{
		collection: collection,
		log:        log.Named("UserRepository"),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) (string, error) {
	doc, err := fromUserEntity(user)
	if err != nil {
		return "", fmt.Errorf("failed to prepare user for database: %w", err)
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.Cart == nil {
		doc.Cart = []cartLineDocument{}
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.log.Warnf("User with email %s already exists", user.Email)
			return "", repository.ErrAlreadyExists
		}
		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = doc.ID.Hex()
	r.log.Debugf("User %s created", user.ID)
	return user.ID, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toEntity()
}

func (r *UserRepository) GetCart(ctx context.Context, userID string) (*entity.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	opts := options.FindOne().SetProjection(bson.M{"cart": 1, "cart_version": 1, "updated_at": 1})
	var doc userDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}

	lines, err := toCartLines(doc.Cart)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cart for user %s: %w", userID, err)
	}
	return &entity.Cart{
		OwnerID:   userID,
		Lines:     lines,
		Version:   doc.CartVersion,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *UserRepository) SaveCart(ctx context.Context, cart *entity.Cart) error {
	if cart == nil || cart.OwnerID == "" {
		return errors.New("cannot save nil cart or cart with empty owner")
	}
	oid, err := primitive.ObjectIDFromHex(cart.OwnerID)
	if err != nil {
		return repository.ErrNotFound
	}

	lines, err := toCartLineDocuments(cart.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart for user %s: %w", cart.OwnerID, err)
	}

	now := time.Now().UTC()
	filter := bson.M{"_id": oid, "cart_version": cart.Version}
	update := bson.M{
		"$set": bson.M{"cart": lines, "updated_at": now},
		"$inc": bson.M{"cart_version": 1},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save cart for user %s: %w", cart.OwnerID, err)
	}
	if res.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("failed to check user %s after cart save miss: %w", cart.OwnerID, err)
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		r.log.Debugf("Cart version %d for user %s is stale", cart.Version, cart.OwnerID)
		return repository.ErrOptimisticLock
	}

	cart.Version++
	cart.UpdatedAt = now
	return nil
}
