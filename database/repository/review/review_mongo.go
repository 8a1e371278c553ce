package reviewRepo

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

// MongoReviewRepo implements ReviewRepository using MongoDB.
type MongoReviewRepo struct {
	coll *mongo.Collection
}

func NewMongoReviewRepo() ReviewRepository {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection(database.ReviewsCollection)
	return &MongoReviewRepo{coll: coll}
}

// EnsureIndexes makes bookingId unique so one booking gets at most one review.
func (r *MongoReviewRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_review_id")},
		{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_review_booking")},
		{Keys: bson.D{{Key: "guideId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) Create(ctx context.Context, review *models.Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("error creating review: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) ListByGuide(ctx context.Context, guideID string, page, limit int) (models.Page[models.Review], error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	page, limit = models.NormalizePage(page, limit)
	filter := bson.M{"guideId": guideID}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return models.Page[models.Review]{}, fmt.Errorf("error counting reviews: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return models.Page[models.Review]{}, fmt.Errorf("error listing reviews: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.Review{}
	if err := cursor.All(ctx, &results); err != nil {
		return models.Page[models.Review]{}, fmt.Errorf("error decoding reviews: %w", err)
	}
	return models.Page[models.Review]{
		Results:      results,
		Page:         page,
		Limit:        limit,
		TotalPages:   models.TotalPages(total, limit),
		TotalResults: total,
	}, nil
}
