package booking

import (
	"context"
	"time"

	schedulerRepo "solobuddy/database/repository/scheduler"
	"solobuddy/models"
	"solobuddy/services/availability"

	"go.uber.org/zap"
)

// BookingService is the booking lifecycle: creation with availability and
// overlap checks, payment-driven transitions, guide-driven transitions and reads.
type BookingService interface {
	CreateBooking(ctx context.Context, req models.BookingRequest, traveler models.Actor) (*models.BookingResponse, error)
	GetBooking(ctx context.Context, bookingID string, actor models.Actor) (*models.PublicBookingData, error)
	ListBookings(ctx context.Context, actor models.Actor, page, limit int) (models.Page[models.PublicBookingData], error)
	UpdateStatus(ctx context.Context, bookingID, guideID string, status models.BookingStatus) (*models.PublicBookingData, error)

	OnPaymentCompleted(ctx context.Context, bookingID string) error
	OnPaymentSessionExpired(ctx context.Context, bookingID string) error
	OnPaymentFailed(ctx context.Context, bookingID string) error
	// HandlePaymentEvent verifies a raw webhook and dispatches it.
	HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error
	// ExpireStale is the reaper entry point for bookings whose checkout never completed.
	ExpireStale(ctx context.Context, bookingID string) error
}

// GuideReader loads the guide a booking is made with.
type GuideReader interface {
	GetByID(ctx context.Context, id string) (*models.TourGuide, error)
}

// TourReader loads live (not soft-deleted) tours.
type TourReader interface {
	GetByID(ctx context.Context, id string) (*models.Tour, error)
}

// TaskScheduler queues the background work triggered by bookings.
type TaskScheduler interface {
	ScheduleBookingExpiry(ctx context.Context, bookingID string, at time.Time) error
	EnqueueGuideNotification(ctx context.Context, bookingID string) error
}

// Options carries the booking settings read from config.
type Options struct {
	Currency    string
	SessionTTL  time.Duration
	ReaperGrace time.Duration
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo     schedulerRepo.SchedulerRepository
	Guides   GuideReader
	Tours    TourReader
	Payments PaymentGateway
	Tasks    TaskScheduler
	Detector *availability.OverlapDetector
	Opts     Options
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewBookingService(
	repo schedulerRepo.SchedulerRepository,
	guides GuideReader,
	tours TourReader,
	payments PaymentGateway,
	tasks TaskScheduler,
	opts Options,
	logger *zap.Logger,
) *DefaultBookingService {
	return &DefaultBookingService{
		Repo:     repo,
		Guides:   guides,
		Tours:    tours,
		Payments: payments,
		Tasks:    tasks,
		Detector: availability.NewOverlapDetector(repo),
		Opts:     opts,
		Logger:   logger,
		Now:      time.Now,
	}
}
