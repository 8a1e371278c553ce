package tourRepo

import (
	"context"
	"errors"

	"solobuddy/models"

	"go.mongodb.org/mongo-driver/bson"
)

var ErrTourNotFound = errors.New("tour not found")

// TourRepository defines methods for tour data access. Soft-deleted tours
// behave as missing for every read.
type TourRepository interface {
	Create(ctx context.Context, tour *models.Tour) error
	GetByID(ctx context.Context, id string) (*models.Tour, error)
	ListByGuide(ctx context.Context, guideID string, page, limit int) (models.Page[models.Tour], error)
	// UpdateFields sets fields on a live tour owned by guideID.
	UpdateFields(ctx context.Context, id, guideID string, set bson.M) (*models.Tour, error)
	SoftDelete(ctx context.Context, id, guideID string) error
	EnsureIndexes() error
}
