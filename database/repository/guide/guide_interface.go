package guideRepo

import (
	"context"
	"errors"

	"solobuddy/models"

	"go.mongodb.org/mongo-driver/bson"
)

var ErrGuideNotFound = errors.New("tour guide not found")

// GuideRepository defines methods for tour guide data access.
type GuideRepository interface {
	// GetByID retrieves a guide by its unique ID.
	GetByID(ctx context.Context, id string) (*models.TourGuide, error)
	// GetByUserID retrieves the guide profile owned by a user account.
	GetByUserID(ctx context.Context, userID string) (*models.TourGuide, error)
	// UpdateFields sets the given fields and returns the updated guide.
	UpdateFields(ctx context.Context, id string, set bson.M) (*models.TourGuide, error)
	// Search runs a whitelisted filter with fixed page/limit pagination.
	Search(ctx context.Context, filter bson.M, page, limit int) (models.Page[models.TourGuide], error)
	// AddRating folds one rating into ratingAvg and ratingCount atomically.
	AddRating(ctx context.Context, id string, rating int) error
	EnsureIndexes() error
}
