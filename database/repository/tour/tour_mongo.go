package tourRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solobuddy/config"
	"solobuddy/database"
	"solobuddy/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTourRepo implements TourRepository using MongoDB.
type MongoTourRepo struct {
	coll *mongo.Collection
}

func NewMongoTourRepo() TourRepository {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection(database.ToursCollection)
	return &MongoTourRepo{coll: coll}
}

func (r *MongoTourRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_tour_id")},
		{Keys: bson.D{{Key: "guideId", Value: 1}, {Key: "deleted", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create tour indexes: %w", err)
	}
	return nil
}

func (r *MongoTourRepo) Create(ctx context.Context, tour *models.Tour) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, tour); err != nil {
		return fmt.Errorf("error creating tour: %w", err)
	}
	return nil
}

func (r *MongoTourRepo) GetByID(ctx context.Context, id string) (*models.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tour models.Tour
	err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted": bson.M{"$ne": true}}).Decode(&tour)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTourNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching tour %s: %w", id, err)
	}
	return &tour, nil
}

func (r *MongoTourRepo) ListByGuide(ctx context.Context, guideID string, page, limit int) (models.Page[models.Tour], error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	page, limit = models.NormalizePage(page, limit)
	filter := bson.M{"guideId": guideID, "deleted": bson.M{"$ne": true}}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return models.Page[models.Tour]{}, fmt.Errorf("error counting tours: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return models.Page[models.Tour]{}, fmt.Errorf("error listing tours: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.Tour{}
	if err := cursor.All(ctx, &results); err != nil {
		return models.Page[models.Tour]{}, fmt.Errorf("error decoding tours: %w", err)
	}
	return models.Page[models.Tour]{
		Results:      results,
		Page:         page,
		Limit:        limit,
		TotalPages:   models.TotalPages(total, limit),
		TotalResults: total,
	}, nil
}

func (r *MongoTourRepo) UpdateFields(ctx context.Context, id, guideID string, set bson.M) (*models.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "guideId": guideID, "deleted": bson.M{"$ne": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var tour models.Tour
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&tour)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTourNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating tour %s: %w", id, err)
	}
	return &tour, nil
}

func (r *MongoTourRepo) SoftDelete(ctx context.Context, id, guideID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "guideId": guideID, "deleted": bson.M{"$ne": true}}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"deleted": true}})
	if err != nil {
		return fmt.Errorf("error deleting tour %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrTourNotFound
	}
	return nil
}
