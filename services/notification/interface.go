package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	schedulerRepo "solobuddy/database/repository/scheduler"
	"solobuddy/models"

	"go.uber.org/zap"
)

// NotificationService tells guides about their bookings.
type NotificationService interface {
	NotifyGuideOfBooking(ctx context.Context, bookingID string) error
}

// BookingReader loads the booking to describe.
type BookingReader interface {
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Bookings BookingReader
	Mailer   Mailer
	Logger   *zap.Logger
}

func NewDefaultNotificationService(bookings BookingReader, mailer Mailer, logger *zap.Logger) (*DefaultNotificationService, error) {
	if bookings == nil || mailer == nil {
		return nil, fmt.Errorf("notification service initialization error: bookings or mailer is nil")
	}
	return &DefaultNotificationService{Bookings: bookings, Mailer: mailer, Logger: logger}, nil
}

// NotifyGuideOfBooking emails the guide about a confirmed booking. Bookings
// that are gone or no longer confirmed are skipped.
func (s *DefaultNotificationService) NotifyGuideOfBooking(ctx context.Context, bookingID string) error {
	b, err := s.Bookings.GetBooking(ctx, bookingID)
	if errors.Is(err, schedulerRepo.ErrBookingNotFound) {
		s.Logger.Info("Skipping notification for missing booking", zap.String("bookingId", bookingID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("NotifyGuideOfBooking: could not load booking %s: %w", bookingID, err)
	}
	if b.Status != models.StatusConfirmed {
		s.Logger.Info("Skipping notification for booking that is not confirmed",
			zap.String("bookingId", bookingID), zap.String("status", string(b.Status)))
		return nil
	}
	if b.GuideSnapshot.Email == "" {
		return fmt.Errorf("NotifyGuideOfBooking: guide %s has no email", b.GuideID)
	}

	if err := s.Mailer.Send(ctx, bookingEmail(b)); err != nil {
		return fmt.Errorf("NotifyGuideOfBooking: failed to send email: %w", err)
	}
	s.Logger.Info("Guide notified of booking", zap.String("bookingId", bookingID), zap.String("guideId", b.GuideID))
	return nil
}

func bookingEmail(b *models.Booking) Message {
	days := len(b.Days())
	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", b.GuideSnapshot.Name)
	fmt.Fprintf(&body, "%s booked %q with you.\n\n", b.TravelerSnapshot.Name, b.TourSnapshot.Title)
	fmt.Fprintf(&body, "Dates: %s to %s (%d day%s)\n", b.FromDate, b.ToDate, days, plural(days))
	fmt.Fprintf(&body, "Travelers: %d\n", b.Quantity)
	fmt.Fprintf(&body, "Total paid: %s %s\n", b.TotalPrice.Decimal(b.Currency), strings.ToUpper(b.Currency))
	if b.TravelerSnapshot.Email != "" {
		fmt.Fprintf(&body, "Contact: %s\n", b.TravelerSnapshot.Email)
	}
	return Message{
		To:      b.GuideSnapshot.Email,
		Subject: "New booking: " + b.TourSnapshot.Title,
		Body:    body.String(),
	}
}

// plural returns "s" if n is not 1, otherwise returns an empty string.
func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
