package booking

import (
	"context"
	"errors"

	schedulerRepo "solobuddy/database/repository/scheduler"
	"solobuddy/models"
	"solobuddy/utils"

	"go.uber.org/zap"
)

// guideEdges maps each status a guide may set to the only status it may come from.
var guideEdges = map[models.BookingStatus]models.BookingStatus{
	models.StatusConfirmed: models.StatusPendingPayment,
	models.StatusCompleted: models.StatusConfirmed,
	models.StatusCancelled: models.StatusConfirmed,
}

// UpdateStatus applies a guide-initiated transition as a compare-and-set on
// the current status.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, bookingID, guideID string, status models.BookingStatus) (*models.PublicBookingData, error) {
	source, ok := guideEdges[status]
	if !ok {
		return nil, utils.Validation("status must be one of completed, cancelled, confirmed", string(status))
	}

	current, err := s.Repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, mapRepoError("get booking", err)
	}
	if current.GuideID != guideID {
		return nil, utils.Forbidden("you do not own this booking")
	}
	if current.Status != source {
		return nil, utils.InvalidState("cannot move booking from "+string(current.Status)+" to "+string(status), string(current.Status))
	}

	updated, err := s.Repo.TransitionBooking(ctx, bookingID, []models.BookingStatus{source}, status)
	if errors.Is(err, schedulerRepo.ErrStatusMismatch) {
		return nil, utils.InvalidState("booking status changed concurrently", string(current.Status))
	}
	if err != nil {
		return nil, mapRepoError("update booking status", err)
	}

	s.Logger.Info("Booking status updated",
		zap.String("bookingId", bookingID),
		zap.String("from", string(source)),
		zap.String("to", string(status)),
	)
	data := models.NewPublicBookingData(*updated)
	return &data, nil
}

// OnPaymentCompleted confirms an unpaid booking. A booking that is gone or
// already past payment is left alone, so repeated or late events are no-ops.
func (s *DefaultBookingService) OnPaymentCompleted(ctx context.Context, bookingID string) error {
	logger := s.Logger.With(zap.String("bookingId", bookingID))

	_, err := s.Repo.TransitionBooking(ctx, bookingID, models.UnpaidStatuses, models.StatusConfirmed)
	switch {
	case errors.Is(err, schedulerRepo.ErrBookingNotFound):
		logger.Info("Payment completed for a booking that no longer exists")
		return nil
	case errors.Is(err, schedulerRepo.ErrStatusMismatch):
		logger.Info("Payment completed for a booking already past payment")
		return nil
	case err != nil:
		return mapRepoError("confirm booking", err)
	}

	logger.Info("Booking confirmed by payment")
	// only the call that made the transition gets here, so the guide is told once
	if err := s.Tasks.EnqueueGuideNotification(ctx, bookingID); err != nil {
		logger.Error("Failed to enqueue guide notification", zap.Error(err))
	}
	return nil
}

func (s *DefaultBookingService) OnPaymentSessionExpired(ctx context.Context, bookingID string) error {
	return s.removeUnpaid(ctx, bookingID, "checkout session expired")
}

// OnPaymentFailed also closes the checkout so a retried card cannot pay for
// a booking that no longer exists.
func (s *DefaultBookingService) OnPaymentFailed(ctx context.Context, bookingID string) error {
	b, err := s.Repo.GetBooking(ctx, bookingID)
	if errors.Is(err, schedulerRepo.ErrBookingNotFound) {
		return nil
	}
	if err != nil {
		return mapRepoError("get booking", err)
	}
	if b.CheckoutSessionID != "" && statusIn(b.Status, models.UnpaidStatuses) {
		if err := s.Payments.ExpireCheckoutSession(ctx, b.CheckoutSessionID); err != nil {
			s.Logger.Warn("Failed to expire checkout session", zap.String("bookingId", bookingID), zap.Error(err))
		}
	}
	return s.removeUnpaid(ctx, bookingID, "payment failed")
}

func statusIn(status models.BookingStatus, set []models.BookingStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func (s *DefaultBookingService) ExpireStale(ctx context.Context, bookingID string) error {
	return s.removeUnpaid(ctx, bookingID, "checkout never completed")
}

// removeUnpaid deletes the booking and frees its days only while it is still
// unpaid. Paid, cancelled and missing bookings are untouched.
func (s *DefaultBookingService) removeUnpaid(ctx context.Context, bookingID, reason string) error {
	deleted, err := s.Repo.DeleteBookingIfStatus(ctx, bookingID, models.UnpaidStatuses)
	if err != nil {
		return mapRepoError("remove unpaid booking", err)
	}
	s.Logger.Info("Unpaid booking handled",
		zap.String("bookingId", bookingID),
		zap.String("reason", reason),
		zap.Bool("deleted", deleted),
	)
	return nil
}

// HandlePaymentEvent verifies the webhook signature over the raw payload and
// dispatches the event. Only signature and parse failures are VALIDATION.
func (s *DefaultBookingService) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := s.Payments.ParseWebhook(payload, signature)
	if err != nil {
		s.Logger.Warn("Rejected payment webhook", zap.Error(err))
		return utils.Validation("invalid webhook payload or signature")
	}

	logger := s.Logger.With(zap.String("eventId", event.ID), zap.String("eventType", event.RawType))
	if event.Type == models.PaymentIgnored {
		logger.Debug("Ignoring payment event")
		return nil
	}
	if event.BookingID == "" {
		logger.Warn("Payment event has no booking id")
		return nil
	}

	switch event.Type {
	case models.PaymentCompleted:
		return s.OnPaymentCompleted(ctx, event.BookingID)
	case models.PaymentSessionExpired:
		return s.OnPaymentSessionExpired(ctx, event.BookingID)
	case models.PaymentFailed:
		return s.OnPaymentFailed(ctx, event.BookingID)
	}
	return nil
}
