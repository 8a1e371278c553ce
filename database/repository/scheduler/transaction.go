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

// withTransaction runs fn in a multi-document transaction. The driver retries
// fn on transient errors such as write conflicts on the guide document.
func (repo *MongoSchedulerRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// CreateBooking bumps the guide's booking sequence under the expected
// schedule version, claims every day, and inserts the booking, all or nothing.
// Two writers on the same guide conflict on the guide document, so claims for
// one guide are serialized.
func (repo *MongoSchedulerRepo) CreateBooking(ctx context.Context, b *models.Booking, scheduleVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	claims := make([]interface{}, 0, len(b.Days()))
	for _, day := range b.Days() {
		claims = append(claims, dayClaim{GuideID: b.GuideID, Day: day, BookingID: b.ID})
	}

	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := repo.guideColl.UpdateOne(sc,
			bson.M{"id": b.GuideID, "schedule.version": scheduleVersion},
			bson.M{"$inc": bson.M{"bookingSeq": 1}},
		)
		if err != nil {
			return fmt.Errorf("guard guide schedule: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrScheduleChanged
		}

		if _, err := repo.dayColl.InsertMany(sc, claims); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDayTaken
			}
			return fmt.Errorf("claim booking days: %w", err)
		}

		if _, err := repo.bookingColl.InsertOne(sc, b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDayTaken) || errors.Is(err, ErrScheduleChanged) {
			return err
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

// TransitionBooking applies a compare-and-set on status. A move to cancelled
// also drops the booking's day claims in the same transaction.
func (repo *MongoSchedulerRepo) TransitionBooking(ctx context.Context, bookingID string, from []models.BookingStatus, to models.BookingStatus) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		err := repo.bookingColl.FindOneAndUpdate(sc, filter, update, opts).Decode(&booking)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repo.missOrMismatch(sc, bookingID)
		}
		if err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}
		if to == models.StatusCancelled {
			if _, err := repo.dayColl.DeleteMany(sc, bson.M{"bookingId": bookingID}); err != nil {
				return fmt.Errorf("release booking days: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// DeleteBookingIfStatus removes an unpaid booking and frees its days. It
// reports false when the booking is gone or has moved to another state.
func (repo *MongoSchedulerRepo) DeleteBookingIfStatus(ctx context.Context, bookingID string, statuses []models.BookingStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	deleted := false
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		deleted = false
		res, err := repo.bookingColl.DeleteOne(sc, bson.M{"id": bookingID, "status": bson.M{"$in": statuses}})
		if err != nil {
			return fmt.Errorf("delete booking: %w", err)
		}
		if res.DeletedCount == 0 {
			return nil
		}
		if _, err := repo.dayColl.DeleteMany(sc, bson.M{"bookingId": bookingID}); err != nil {
			return fmt.Errorf("release booking days: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// ReplaceSchedule writes a new schedule if the stored version still equals
// expectedVersion and the guard holds against current day claims.
func (repo *MongoSchedulerRepo) ReplaceSchedule(ctx context.Context, guideID string, expectedVersion int64, schedule models.Schedule, guard ScheduleGuard) (*models.Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	schedule.Version = expectedVersion + 1
	schedule.UpdatedAt = time.Now().UTC()

	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		booked, err := repo.guardViolations(sc, guideID, schedule, guard)
		if err != nil {
			return err
		}
		if len(booked) > 0 {
			return &DatesBookedError{Dates: booked}
		}

		res, err := repo.guideColl.UpdateOne(sc,
			bson.M{"id": guideID, "schedule.version": expectedVersion},
			bson.M{"$set": bson.M{"schedule": schedule, "updatedAt": schedule.UpdatedAt}},
		)
		if err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrScheduleChanged
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (repo *MongoSchedulerRepo) guardViolations(sc mongo.SessionContext, guideID string, schedule models.Schedule, guard ScheduleGuard) ([]models.Date, error) {
	var booked []models.Date

	if len(guard.Dates) > 0 {
		claims, err := repo.findClaims(sc, bson.M{"guideId": guideID, "day": bson.M{"$in": guard.Dates}})
		if err != nil {
			return nil, err
		}
		for _, c := range claims {
			booked = append(booked, c.Day)
		}
	}

	if guard.RequireWorkableFrom != "" {
		claims, err := repo.findClaims(sc, bson.M{"guideId": guideID, "day": bson.M{"$gte": guard.RequireWorkableFrom}})
		if err != nil {
			return nil, err
		}
		for _, c := range claims {
			if !schedule.IsWorkableDay(c.Day) {
				booked = append(booked, c.Day)
			}
		}
	}
	return models.UniqueSortedDates(booked), nil
}

func (repo *MongoSchedulerRepo) findClaims(sc mongo.SessionContext, filter bson.M) ([]dayClaim, error) {
	cursor, err := repo.dayColl.Find(sc, filter)
	if err != nil {
		return nil, fmt.Errorf("find booking days: %w", err)
	}
	defer cursor.Close(sc)

	var claims []dayClaim
	if err := cursor.All(sc, &claims); err != nil {
		return nil, fmt.Errorf("decode booking days: %w", err)
	}
	return claims, nil
}
