package subscriptionRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"keja/database"
	"keja/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSubscriptionRepo implements SubscriptionRepository using MongoDB.
type MongoSubscriptionRepo struct {
	coll *mongo.Collection
}

// NewMongoSubscriptionRepo constructs a new instance of MongoSubscriptionRepo.
func NewMongoSubscriptionRepo() SubscriptionRepository {
	return &MongoSubscriptionRepo{
		coll: database.DB().Collection("subscriptions"),
	}
}

// GetByLandlordID retrieves a landlord's subscription.
func (repo *MongoSubscriptionRepo) GetByLandlordID(ctx context.Context, landlordID string) (*models.Subscription, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var sub models.Subscription
	filter := bson.M{"landlord_id": landlordID}
	if err := repo.coll.FindOne(ctxWithTimeout, filter).Decode(&sub); err != nil {
		return nil, fmt.Errorf("subscription not found for landlord %s: %w", landlordID, err)
	}
	return &sub, nil
}

// Create inserts a new subscription document.
func (repo *MongoSubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctxWithTimeout, sub); err != nil {
		return fmt.Errorf("error creating subscription: %w", err)
	}
	return nil
}

// Update applies field updates to a landlord's subscription.
func (repo *MongoSubscriptionRepo) Update(ctx context.Context, landlordID string, fields map[string]interface{}) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}
	filter := bson.M{"landlord_id": landlordID}
	res, err := repo.coll.UpdateOne(ctxWithTimeout, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("error updating subscription for landlord %s: %w", landlordID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("subscription not found for landlord %s: %w", landlordID, mongo.ErrNoDocuments)
	}
	return nil
}

// EnsureIndexes creates the subscription collection indexes. One subscription
// per landlord is enforced here.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coll := database.DB().Collection("subscriptions")
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "landlord_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create subscription indexes: %w", err)
	}
	return nil
}

// IsNotFound reports whether the error is a missing-document lookup failure.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
