package schedulerRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"solobuddy/models"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	// ErrStatusMismatch means the booking exists but is not in an expected source state.
	ErrStatusMismatch = errors.New("booking status does not allow this transition")
	// ErrDayTaken means another active booking already holds one of the days.
	ErrDayTaken = errors.New("one or more days are already booked")
	// ErrScheduleChanged means the guide's schedule version moved under the caller.
	ErrScheduleChanged = errors.New("guide schedule changed concurrently")
)

// DatesBookedError lists the days a schedule write would strand.
type DatesBookedError struct {
	Dates []models.Date
}

func (e *DatesBookedError) Error() string {
	return fmt.Sprintf("dates already booked: %s", strings.Join(models.DateStrings(e.Dates), ", "))
}

// ScheduleGuard is checked inside the schedule write transaction.
// Dates must hold no claims; when RequireWorkableFrom is set, every claimed
// day on or after it must stay workable under the new schedule.
type ScheduleGuard struct {
	Dates               []models.Date
	RequireWorkableFrom models.Date
}

// BookingQuery selects a page of bookings for one party.
type BookingQuery struct {
	TravelerID string
	GuideID    string
	Status     models.BookingStatus
	Page       int
	Limit      int
}

type SchedulerRepository interface {
	// CreateBooking atomically claims every day of b for its guide and inserts it.
	// scheduleVersion is the guide schedule version b was validated against.
	CreateBooking(ctx context.Context, b *models.Booking, scheduleVersion int64) error
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	FindOverlappingBookings(ctx context.Context, guideID string, from, to models.Date, exclude []models.BookingStatus) ([]models.Booking, error)
	ListBookings(ctx context.Context, q BookingQuery) (models.Page[models.Booking], error)
	// TransitionBooking moves a booking from one of the given states to `to`.
	// Moving to cancelled releases the booking's day claims.
	TransitionBooking(ctx context.Context, bookingID string, from []models.BookingStatus, to models.BookingStatus) (*models.Booking, error)
	AttachCheckoutSession(ctx context.Context, bookingID, sessionID, url string) (*models.Booking, error)
	// DeleteBookingIfStatus deletes the booking and its claims only while it is in one of statuses.
	DeleteBookingIfStatus(ctx context.Context, bookingID string, statuses []models.BookingStatus) (bool, error)
	ReplaceSchedule(ctx context.Context, guideID string, expectedVersion int64, schedule models.Schedule, guard ScheduleGuard) (*models.Schedule, error)
	EnsureIndexes() error
}
