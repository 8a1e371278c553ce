package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	reviewRepo "solobuddy/database/repository/review"
	schedulerRepo "solobuddy/database/repository/scheduler"
	"solobuddy/models"
	"solobuddy/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxImages = 10

// ReviewService records traveler ratings and keeps guide averages current.
type ReviewService interface {
	Create(ctx context.Context, actor models.Actor, in models.ReviewInput) (*models.Review, error)
	ListByGuide(ctx context.Context, guideID string, page, limit int) (models.Page[models.Review], error)
}

// BookingReader is the part of the scheduler repository reviews need.
type BookingReader interface {
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}

// RatingWriter folds a rating into a guide's aggregate.
type RatingWriter interface {
	AddRating(ctx context.Context, guideID string, rating int) error
}

type DefaultReviewService struct {
	Repo     reviewRepo.ReviewRepository
	Bookings BookingReader
	Guides   RatingWriter
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewReviewService(repo reviewRepo.ReviewRepository, bookings BookingReader, guides RatingWriter, logger *zap.Logger) *DefaultReviewService {
	return &DefaultReviewService{Repo: repo, Bookings: bookings, Guides: guides, Logger: logger, Now: time.Now}
}

// Create stores one review per booking. Only the booking's traveler may
// review it and cancelled bookings cannot be reviewed.
func (s *DefaultReviewService) Create(ctx context.Context, actor models.Actor, in models.ReviewInput) (*models.Review, error) {
	var bad []string
	if strings.TrimSpace(in.BookingID) == "" {
		bad = append(bad, "bookingId is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		bad = append(bad, "rating must be between 1 and 5")
	}
	if len(in.Images) > maxImages {
		bad = append(bad, fmt.Sprintf("at most %d images", maxImages))
	}
	if len(bad) > 0 {
		return nil, utils.Validation("invalid review", bad...)
	}

	b, err := s.Bookings.GetBooking(ctx, in.BookingID)
	if errors.Is(err, schedulerRepo.ErrBookingNotFound) {
		return nil, utils.NotFound("booking not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if b.TravelerID != actor.UserID {
		return nil, utils.NotFound("booking not found")
	}
	// unpaid bookings may still be deleted
	if b.Status != models.StatusConfirmed && b.Status != models.StatusCompleted {
		return nil, utils.InvalidState("only confirmed or completed bookings can be reviewed", string(b.Status))
	}

	rv := &models.Review{
		ID:         uuid.NewString(),
		TravelerID: actor.UserID,
		GuideID:    b.GuideID,
		BookingID:  b.ID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		Images:     in.Images,
		Traveler:   &models.TravelerSnapshot{ID: actor.UserID, Name: actor.Name, Email: actor.Email},
		CreatedAt:  s.Now().UTC(),
	}
	err = s.Repo.Create(ctx, rv)
	if errors.Is(err, reviewRepo.ErrDuplicateReview) {
		return nil, utils.Conflict("booking already reviewed", b.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	logger := s.Logger.With(zap.String("reviewId", rv.ID), zap.String("guideId", rv.GuideID))
	if err := s.Guides.AddRating(ctx, rv.GuideID, rv.Rating); err != nil {
		// the review is already stored; a retry would only hit the duplicate check
		logger.Error("Failed to update guide rating", zap.Error(err))
	}
	logger.Info("Review created", zap.Int("rating", rv.Rating))
	return rv, nil
}

func (s *DefaultReviewService) ListByGuide(ctx context.Context, guideID string, page, limit int) (models.Page[models.Review], error) {
	out, err := s.Repo.ListByGuide(ctx, guideID, page, limit)
	if err != nil {
		return models.Page[models.Review]{}, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}
