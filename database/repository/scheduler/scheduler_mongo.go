package schedulerRepo

import (
	"context"
	"fmt"
	"time"

	"solobuddy/config"
	"solobuddy/database"
	"solobuddy/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSchedulerRepo implements SchedulerRepository using MongoDB.
// booking_days holds one document per (guide, day) claimed by an active booking.
type MongoSchedulerRepo struct {
	guideColl   *mongo.Collection
	bookingColl *mongo.Collection
	dayColl     *mongo.Collection
}

type dayClaim struct {
	GuideID   string      `bson:"guideId"`
	Day       models.Date `bson:"day"`
	BookingID string      `bson:"bookingId"`
}

// NewMongoSchedulerRepo constructs a new instance of MongoSchedulerRepo.
func NewMongoSchedulerRepo() SchedulerRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoSchedulerRepo{
		guideColl:   db.Collection(database.GuidesCollection),
		bookingColl: db.Collection(database.BookingsCollection),
		dayColl:     db.Collection(database.BookingDaysCollection),
	}
}

// EnsureIndexes creates the unique day claim index and the booking lookups.
func (repo *MongoSchedulerRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bookingIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_booking_id")},
		{Keys: bson.D{{Key: "guideId", Value: 1}, {Key: "fromDate", Value: 1}, {Key: "toDate", Value: 1}}, Options: options.Index().SetName("guide_range")},
		{Keys: bson.D{{Key: "travelerId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("traveler_recent")},
	}
	if _, err := repo.bookingColl.Indexes().CreateMany(ctx, bookingIdx); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	dayIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "guideId", Value: 1}, {Key: "day", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_guide_day")},
		{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetName("claim_booking")},
	}
	if _, err := repo.dayColl.Indexes().CreateMany(ctx, dayIdx); err != nil {
		return fmt.Errorf("failed to create booking day indexes: %w", err)
	}
	return nil
}

// FindOverlappingBookings returns guide bookings with fromDate <= to and
// toDate >= from whose status is not in exclude.
func (repo *MongoSchedulerRepo) FindOverlappingBookings(ctx context.Context, guideID string, from, to models.Date, exclude []models.BookingStatus) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"guideId":  guideID,
		"fromDate": bson.M{"$lte": to},
		"toDate":   bson.M{"$gte": from},
	}
	if len(exclude) > 0 {
		filter["status"] = bson.M{"$nin": exclude}
	}
	cursor, err := repo.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// ListBookings pages bookings newest first.
func (repo *MongoSchedulerRepo) ListBookings(ctx context.Context, q BookingQuery) (models.Page[models.Booking], error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	page, limit := models.NormalizePage(q.Page, q.Limit)
	filter := bson.M{}
	if q.TravelerID != "" {
		filter["travelerId"] = q.TravelerID
	}
	if q.GuideID != "" {
		filter["guideId"] = q.GuideID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	total, err := repo.bookingColl.CountDocuments(ctx, filter)
	if err != nil {
		return models.Page[models.Booking]{}, fmt.Errorf("error counting bookings: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return models.Page[models.Booking]{}, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.Booking{}
	if err := cursor.All(ctx, &results); err != nil {
		return models.Page[models.Booking]{}, fmt.Errorf("error decoding bookings: %w", err)
	}
	return models.Page[models.Booking]{
		Results:      results,
		Page:         page,
		Limit:        limit,
		TotalPages:   models.TotalPages(total, limit),
		TotalResults: total,
	}, nil
}
