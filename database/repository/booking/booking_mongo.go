package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() BookingRepository {
	return &MongoBookingRepo{
		coll: database.DB().Collection("bookings"),
	}
}

// Create inserts a new booking document.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.coll.InsertOne(ctxWithTimeout, booking)
	if err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("booking not found: %w", err)
	}
	return &booking, nil
}

// GetByCheckoutRequestID retrieves the booking tied to a gateway session.
func (repo *MongoBookingRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	filter := bson.M{"checkout_request_id": checkoutRequestID}
	if err := repo.coll.FindOne(ctxWithTimeout, filter).Decode(&booking); err != nil {
		return nil, fmt.Errorf("booking not found for checkout request %s: %w", checkoutRequestID, err)
	}
	return &booking, nil
}

// ListByLandlord retrieves all bookings owned by a landlord.
func (repo *MongoBookingRepo) ListByLandlord(ctx context.Context, landlordID string) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{"landlord_id": landlordID})
}

// ListByTenantEmail retrieves all bookings submitted with a tenant email.
func (repo *MongoBookingRepo) ListByTenantEmail(ctx context.Context, email string) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{"user_email": email})
}

// ListStalePayments retrieves confirmed bookings whose payment is still
// pending with a gateway session opened before the cutoff.
func (repo *MongoBookingRepo) ListStalePayments(ctx context.Context, olderThan time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":              models.BookingStatusConfirmed,
		"payment_status":      models.PaymentStatusPending,
		"checkout_request_id": bson.M{"$ne": ""},
		"updated_at":          bson.M{"$lt": olderThan},
	}
	return repo.list(ctx, filter)
}

func (repo *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctxWithTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	for cursor.Next(ctxWithTimeout) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

// UpdateStatusIf applies a guarded lifecycle transition.
func (repo *MongoBookingRepo) UpdateStatusIf(ctx context.Context, id, fromStatus, toStatus string, fields map[string]interface{}) error {
	return repo.conditionalUpdate(ctx, bson.M{"id": id, "status": fromStatus}, "status", toStatus, fields)
}

// UpdatePaymentStatusIf applies a guarded payment transition.
func (repo *MongoBookingRepo) UpdatePaymentStatusIf(ctx context.Context, id, fromStatus, toStatus string, fields map[string]interface{}) error {
	return repo.conditionalUpdate(ctx, bson.M{"id": id, "payment_status": fromStatus}, "payment_status", toStatus, fields)
}

func (repo *MongoBookingRepo) conditionalUpdate(ctx context.Context, filter bson.M, statusField, toStatus string, fields map[string]interface{}) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{statusField: toStatus, "updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	res, err := repo.coll.UpdateOne(ctxWithTimeout, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("error updating booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}

// SetPaymentSession records the gateway correlation id for a payment attempt.
func (repo *MongoBookingRepo) SetPaymentSession(ctx context.Context, id, checkoutRequestID, method string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"checkout_request_id": checkoutRequestID,
		"payment_method":      method,
		"updated_at":          time.Now(),
	}}
	res, err := repo.coll.UpdateOne(ctxWithTimeout, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error recording payment session for booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}

// Delete removes a booking record from the database.
func (repo *MongoBookingRepo) Delete(ctx context.Context, id string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.coll.DeleteOne(ctxWithTimeout, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting booking %s: %w", id, err)
	}
	return nil
}

// IsNotFound reports whether the error is a missing-document lookup failure.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
