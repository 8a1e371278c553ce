package schedulerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solobuddy/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetBooking retrieves a booking by its ID.
func (repo *MongoSchedulerRepo) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctx, bson.M{"id": bookingID}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

// AttachCheckoutSession records the hosted checkout and moves a created
// booking to pending_payment.
func (repo *MongoSchedulerRepo) AttachCheckoutSession(ctx context.Context, bookingID, sessionID, url string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "status": models.StatusCreated}
	update := bson.M{"$set": bson.M{
		"checkoutSessionId": sessionID,
		"checkoutUrl":       url,
		"status":            models.StatusPendingPayment,
		"updatedAt":         time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := repo.bookingColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repo.missOrMismatch(ctx, bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("error attaching checkout session to %s: %w", bookingID, err)
	}
	return &booking, nil
}

// missOrMismatch tells a missing booking apart from one in the wrong state
// after a status-filtered write matched nothing.
func (repo *MongoSchedulerRepo) missOrMismatch(ctx context.Context, bookingID string) error {
	n, err := repo.bookingColl.CountDocuments(ctx, bson.M{"id": bookingID})
	if err != nil {
		return fmt.Errorf("error checking booking %s: %w", bookingID, err)
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return ErrStatusMismatch
}
