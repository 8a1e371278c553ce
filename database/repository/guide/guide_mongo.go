package guideRepo

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

// MongoGuideRepo implements GuideRepository using MongoDB.
type MongoGuideRepo struct {
	coll *mongo.Collection
}

// NewMongoGuideRepo creates a new instance of GuideRepository using MongoDB.
func NewMongoGuideRepo() GuideRepository {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection(database.GuidesCollection)
	return &MongoGuideRepo{coll: coll}
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (r *MongoGuideRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_guide_id")},
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_guide_user")},
		{Keys: bson.D{{Key: "location", Value: 1}, {Key: "ratingAvg", Value: -1}}},
		{Keys: bson.D{{Key: "languages", Value: 1}}},
		{Keys: bson.D{{Key: "dailyRate", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create guide indexes: %w", err)
	}
	return nil
}

func (r *MongoGuideRepo) findOne(ctx context.Context, filter bson.M) (*models.TourGuide, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var guide models.TourGuide
	err := r.coll.FindOne(ctx, filter).Decode(&guide)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGuideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tour guide: %w", err)
	}
	return &guide, nil
}

func (r *MongoGuideRepo) GetByID(ctx context.Context, id string) (*models.TourGuide, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoGuideRepo) GetByUserID(ctx context.Context, userID string) (*models.TourGuide, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *MongoGuideRepo) UpdateFields(ctx context.Context, id string, set bson.M) (*models.TourGuide, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var guide models.TourGuide
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&guide)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGuideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update tour guide %s: %w", id, err)
	}
	return &guide, nil
}

// Search returns guides matching filter, best rated first.
func (r *MongoGuideRepo) Search(ctx context.Context, filter bson.M, page, limit int) (models.Page[models.TourGuide], error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	page, limit = models.NormalizePage(page, limit)
	if filter == nil {
		filter = bson.M{}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return models.Page[models.TourGuide]{}, fmt.Errorf("failed to count tour guides: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "ratingAvg", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return models.Page[models.TourGuide]{}, fmt.Errorf("failed to search tour guides: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.TourGuide{}
	if err := cursor.All(ctx, &results); err != nil {
		return models.Page[models.TourGuide]{}, fmt.Errorf("failed to decode tour guides: %w", err)
	}
	return models.Page[models.TourGuide]{
		Results:      results,
		Page:         page,
		Limit:        limit,
		TotalPages:   models.TotalPages(total, limit),
		TotalResults: total,
	}, nil
}

// AddRating uses an update pipeline so the new average is computed from the
// stored values in a single write.
func (r *MongoGuideRepo) AddRating(ctx context.Context, id string, rating int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "ratingAvg", Value: bson.D{{Key: "$divide", Value: bson.A{
				bson.D{{Key: "$add", Value: bson.A{
					bson.D{{Key: "$multiply", Value: bson.A{
						bson.D{{Key: "$ifNull", Value: bson.A{"$ratingAvg", 0}}},
						bson.D{{Key: "$ifNull", Value: bson.A{"$ratingCount", 0}}},
					}}},
					rating,
				}}},
				bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$ratingCount", 0}}}, 1}}},
			}}}},
			{Key: "ratingCount", Value: bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$ratingCount", 0}}}, 1}}}},
		}}},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to update rating of tour guide %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrGuideNotFound
	}
	return nil
}
