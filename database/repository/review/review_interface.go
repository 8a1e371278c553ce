package reviewRepo

import (
	"context"
	"errors"

	"solobuddy/models"
)

// ErrDuplicateReview means the booking already has a review.
var ErrDuplicateReview = errors.New("booking already reviewed")

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByGuide(ctx context.Context, guideID string, page, limit int) (models.Page[models.Review], error)
	EnsureIndexes() error
}
