package guide

import (
	"context"
	"time"

	guideRepo "solobuddy/database/repository/guide"
	schedulerRepo "solobuddy/database/repository/scheduler"
	"solobuddy/models"
	"solobuddy/services/availability"

	"go.uber.org/zap"
)

// GuideService covers guide identity, schedule edits, profile and search.
type GuideService interface {
	// ResolveGuideIdentity maps an authenticated user to the guide they own.
	ResolveGuideIdentity(ctx context.Context, userID string) (string, error)

	ApplyEdits(ctx context.Context, guideID string, addDates, removeDates []string) (*models.Schedule, error)
	SetWorkDays(ctx context.Context, guideID string, isRecurring bool, weekdays []int) (*models.Schedule, error)

	GetDetail(ctx context.Context, guideID string) (*models.GuideDTO, error)
	UpdateProfile(ctx context.Context, guideID string, upd models.GuideProfileUpdate) (*models.GuideDTO, error)
	Search(ctx context.Context, filter models.GuideFilter, page, limit int) (models.Page[models.GuideDTO], error)
}

// DefaultGuideService is the production implementation.
type DefaultGuideService struct {
	Repo      guideRepo.GuideRepository
	Scheduler schedulerRepo.SchedulerRepository
	Detector  *availability.OverlapDetector
	Identity  IdentityCache
	Currency  string
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewGuideService(
	repo guideRepo.GuideRepository,
	scheduler schedulerRepo.SchedulerRepository,
	identity IdentityCache,
	currency string,
	logger *zap.Logger,
) *DefaultGuideService {
	return &DefaultGuideService{
		Repo:      repo,
		Scheduler: scheduler,
		Detector:  availability.NewOverlapDetector(scheduler),
		Identity:  identity,
		Currency:  currency,
		Logger:    logger,
		Now:       time.Now,
	}
}
