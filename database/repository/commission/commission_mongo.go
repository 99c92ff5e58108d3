package commissionRepo

import (
	"context"
	"fmt"
	"time"

	"keja/database"
	"keja/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CommissionRepository defines the interface for commission ledger access.
type CommissionRepository interface {
	Create(ctx context.Context, entry *models.Commission) error
	GetByBookingID(ctx context.Context, bookingID string) (*models.Commission, error)
	ListByLandlord(ctx context.Context, landlordID string) ([]models.Commission, error)
	MonthlySummary(ctx context.Context, landlordID string, year int) ([]models.CommissionSummary, error)
	MarkRefunded(ctx context.Context, bookingID string) error
}

// MongoCommissionRepo implements CommissionRepository using MongoDB.
type MongoCommissionRepo struct {
	coll *mongo.Collection
}

// NewMongoCommissionRepo constructs a new instance of MongoCommissionRepo.
func NewMongoCommissionRepo() CommissionRepository {
	return &MongoCommissionRepo{
		coll: database.DB().Collection("commissions"),
	}
}

// Create inserts a ledger entry.
func (repo *MongoCommissionRepo) Create(ctx context.Context, entry *models.Commission) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctxWithTimeout, entry); err != nil {
		return fmt.Errorf("error creating commission entry: %w", err)
	}
	return nil
}

// GetByBookingID retrieves the ledger entry for a booking.
func (repo *MongoCommissionRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Commission, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.Commission
	filter := bson.M{"booking_id": bookingID}
	if err := repo.coll.FindOne(ctxWithTimeout, filter).Decode(&entry); err != nil {
		return nil, fmt.Errorf("commission entry not found for booking %s: %w", bookingID, err)
	}
	return &entry, nil
}

// ListByLandlord retrieves all ledger entries for a landlord.
func (repo *MongoCommissionRepo) ListByLandlord(ctx context.Context, landlordID string) ([]models.Commission, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctxWithTimeout, bson.M{"landlord_id": landlordID})
	if err != nil {
		return nil, fmt.Errorf("error fetching commission entries: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var entries []models.Commission
	for cursor.Next(ctxWithTimeout) {
		var e models.Commission
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("error decoding commission entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return entries, nil
}

// MonthlySummary aggregates collected commissions per month for a landlord.
func (repo *MongoCommissionRepo) MonthlySummary(ctx context.Context, landlordID string, year int) ([]models.CommissionSummary, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"landlord_id": landlordID,
			"year":        year,
			"status":      models.CommissionStatusCollected,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          bson.M{"month": "$month", "year": "$year"},
			"total_amount": bson.M{"$sum": "$amount"},
			"count":        bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"month":        "$_id.month",
			"year":         "$_id.year",
			"total_amount": 1,
			"count":        1,
			"_id":          0,
		}}},
		{{Key: "$sort", Value: bson.M{"month": 1}}},
	}

	cursor, err := repo.coll.Aggregate(ctxWithTimeout, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating commission summary: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var summaries []models.CommissionSummary
	if err := cursor.All(ctxWithTimeout, &summaries); err != nil {
		return nil, fmt.Errorf("error decoding commission summary: %w", err)
	}
	return summaries, nil
}

// MarkRefunded transitions a ledger entry to refunded.
func (repo *MongoCommissionRepo) MarkRefunded(ctx context.Context, bookingID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"booking_id": bookingID, "status": models.CommissionStatusCollected}
	update := bson.M{"$set": bson.M{"status": models.CommissionStatusRefunded}}
	if _, err := repo.coll.UpdateOne(ctxWithTimeout, filter, update); err != nil {
		return fmt.Errorf("error refunding commission for booking %s: %w", bookingID, err)
	}
	return nil
}
