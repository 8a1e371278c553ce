package tour

import (
	"context"
	"time"

	tourRepo "solobuddy/database/repository/tour"
	"solobuddy/models"

	"go.uber.org/zap"
)

// TourService manages the tours a guide offers.
type TourService interface {
	Create(ctx context.Context, guideID string, in models.TourInput) (*models.TourDTO, error)
	Get(ctx context.Context, tourID string) (*models.TourDTO, error)
	ListByGuide(ctx context.Context, guideID string, page, limit int) (models.Page[models.TourDTO], error)
	Update(ctx context.Context, tourID, guideID string, in models.TourInput) (*models.TourDTO, error)
	Delete(ctx context.Context, tourID, guideID string) error
}

type DefaultTourService struct {
	Repo     tourRepo.TourRepository
	Currency string
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewTourService(repo tourRepo.TourRepository, currency string, logger *zap.Logger) *DefaultTourService {
	return &DefaultTourService{Repo: repo, Currency: currency, Logger: logger, Now: time.Now}
}
