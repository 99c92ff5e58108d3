package propertyRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"keja/database"
	"keja/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PropertyRepository is the booking core's view of the property catalog.
// Catalog CRUD itself lives outside this service; the core only needs a
// lookup and the completed-booking analytics counters.
type PropertyRepository interface {
	GetByID(ctx context.Context, id string) (*models.Property, error)
	IncrementBookingStats(ctx context.Context, id string, amount float64) error
}

// MongoPropertyRepo implements PropertyRepository using MongoDB.
type MongoPropertyRepo struct {
	coll *mongo.Collection
}

// NewMongoPropertyRepo constructs a new instance of MongoPropertyRepo.
func NewMongoPropertyRepo() PropertyRepository {
	return &MongoPropertyRepo{
		coll: database.DB().Collection("properties"),
	}
}

// GetByID retrieves a property by its ID.
func (repo *MongoPropertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var property models.Property
	if err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&property); err != nil {
		return nil, fmt.Errorf("property not found: %w", err)
	}
	return &property, nil
}

// IncrementBookingStats bumps the completed-booking and revenue counters.
func (repo *MongoPropertyRepo) IncrementBookingStats(ctx context.Context, id string, amount float64) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$inc": bson.M{
		"completed_bookings": 1,
		"total_revenue":      amount,
	}}
	if _, err := repo.coll.UpdateOne(ctxWithTimeout, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("error incrementing booking stats for property %s: %w", id, err)
	}
	return nil
}

// IsNotFound reports whether the error is a missing-document lookup failure.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
