package booking

import (
	"context"
	"errors"
	"fmt"

	schedulerRepo "solobuddy/database/repository/scheduler"
	"solobuddy/models"
	"solobuddy/services/availability"
	"solobuddy/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking validates the request against the guide's schedule and
// existing bookings, persists the booking with its day claims, and opens a
// checkout session for it.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.BookingRequest, traveler models.Actor) (*models.BookingResponse, error) {
	from, to, err := parseRange(req.FromDate, req.ToDate)
	if err != nil {
		return nil, err
	}
	if req.Quantity < 1 {
		return nil, utils.Validation("quantity must be at least 1")
	}

	tour, err := s.Tours.GetByID(ctx, req.TourID)
	if err != nil {
		return nil, mapRepoError("load tour", err)
	}
	guide, err := s.Guides.GetByID(ctx, req.TourGuideID)
	if err != nil {
		return nil, mapRepoError("load tour guide", err)
	}
	if tour.GuideID != guide.ID {
		return nil, utils.Validation("tour is not offered by this tour guide", tour.ID)
	}

	res, err := availability.ResolveAvailability(guide.Schedule, from, to)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, utils.Validation("some booking dates are not available for this tour guide", models.DateStrings(res.InvalidDates)...)
	}

	conflicts, err := s.Detector.FindConflicts(ctx, guide.ID, from, to)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, utils.Conflict("some booking dates are already booked", models.DateStrings(bookedDaysIn(conflicts, from, to))...)
	}

	total, err := ComputeTotal(tour.Price, req.Quantity, guide.DailyRate, from, to)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	booking := &models.Booking{
		ID:         uuid.New().String(),
		TravelerID: traveler.UserID,
		GuideID:    guide.ID,
		TourID:     tour.ID,
		FromDate:   from,
		ToDate:     to,
		Quantity:   req.Quantity,
		Status:     models.StatusCreated,
		TotalPrice: total,
		Currency:   s.Opts.Currency,
		TourSnapshot: models.TourSnapshot{
			ID:       tour.ID,
			Title:    tour.Title,
			Price:    tour.Price,
			Unit:     tour.Unit,
			Duration: tour.Duration,
		},
		GuideSnapshot: models.GuideSnapshot{
			ID:        guide.ID,
			Name:      guide.Name,
			Email:     guide.Email,
			Phone:     guide.Phone,
			Country:   guide.Country,
			Location:  guide.Location,
			DailyRate: guide.DailyRate,
		},
		TravelerSnapshot: models.TravelerSnapshot{
			ID:    traveler.UserID,
			Name:  traveler.Name,
			Email: traveler.Email,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repo.CreateBooking(ctx, booking, guide.Schedule.Version); err != nil {
		return nil, mapRepoError("create booking", err)
	}
	logger := s.Logger.With(zap.String("bookingId", booking.ID), zap.String("guideId", guide.ID))

	// The reaper must be queued before the checkout call so a failed
	// session never leaves the booking holding its days.
	sessionExpiresAt := now.Add(s.Opts.SessionTTL)
	if err := s.Tasks.ScheduleBookingExpiry(ctx, booking.ID, sessionExpiresAt.Add(s.Opts.ReaperGrace)); err != nil {
		logger.Error("Failed to schedule booking expiry", zap.Error(err))
		if _, delErr := s.Repo.DeleteBookingIfStatus(ctx, booking.ID, models.UnpaidStatuses); delErr != nil {
			logger.Error("Failed to roll back unscheduled booking", zap.Error(delErr))
		}
		return nil, fmt.Errorf("schedule booking expiry: %w", err)
	}

	session, err := s.Payments.CreateCheckoutSession(ctx, models.CheckoutRequest{
		BookingID:     booking.ID,
		TravelerID:    traveler.UserID,
		CustomerEmail: traveler.Email,
		Description:   fmt.Sprintf("%s with %s, %s to %s", tour.Title, guide.Name, from, to),
		Amount:        total,
		Currency:      booking.Currency,
		ExpiresAt:     sessionExpiresAt,
	})
	if err != nil {
		logger.Warn("Checkout session failed; booking left for the reaper", zap.Error(err))
		return nil, utils.Upstream("failed to create checkout session", err)
	}

	updated, err := s.Repo.AttachCheckoutSession(ctx, booking.ID, session.ID, session.URL)
	if err != nil {
		// A fast webhook may already have moved or removed the booking.
		if !errors.Is(err, schedulerRepo.ErrStatusMismatch) {
			return nil, mapRepoError("attach checkout session", err)
		}
		if updated, err = s.Repo.GetBooking(ctx, booking.ID); err != nil {
			return nil, mapRepoError("reload booking", err)
		}
	}

	logger.Info("Booking created", zap.String("status", string(updated.Status)), zap.Int64("totalPrice", int64(updated.TotalPrice)))
	return &models.BookingResponse{
		Booking:     models.NewPublicBookingData(*updated),
		CheckoutURL: session.URL,
	}, nil
}

// GetBooking returns a booking visible to its traveler or its guide.
func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string, actor models.Actor) (*models.PublicBookingData, error) {
	b, err := s.Repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, mapRepoError("get booking", err)
	}
	if b.TravelerID != actor.UserID && (actor.GuideID == "" || b.GuideID != actor.GuideID) && actor.Role != models.RoleAdmin {
		// do not reveal other people's bookings
		return nil, utils.NotFound("booking not found")
	}
	data := models.NewPublicBookingData(*b)
	return &data, nil
}

// ListBookings lists a guide's bookings for guides and the traveler's own otherwise.
func (s *DefaultBookingService) ListBookings(ctx context.Context, actor models.Actor, page, limit int) (models.Page[models.PublicBookingData], error) {
	q := schedulerRepo.BookingQuery{Page: page, Limit: limit}
	if actor.GuideID != "" {
		q.GuideID = actor.GuideID
	} else {
		q.TravelerID = actor.UserID
	}

	bookings, err := s.Repo.ListBookings(ctx, q)
	if err != nil {
		return models.Page[models.PublicBookingData]{}, mapRepoError("list bookings", err)
	}
	out := models.Page[models.PublicBookingData]{
		Results:      make([]models.PublicBookingData, 0, len(bookings.Results)),
		Page:         bookings.Page,
		Limit:        bookings.Limit,
		TotalPages:   bookings.TotalPages,
		TotalResults: bookings.TotalResults,
	}
	for _, b := range bookings.Results {
		out.Results = append(out.Results, models.NewPublicBookingData(b))
	}
	return out, nil
}

func parseRange(rawFrom, rawTo string) (models.Date, models.Date, error) {
	dates, invalid := models.ParseDates([]string{rawFrom, rawTo})
	if len(invalid) > 0 {
		return "", "", utils.Validation("invalid date", invalid...)
	}
	from, to := dates[0], dates[1]
	if err := availability.ValidateRange(from, to); err != nil {
		return "", "", err
	}
	return from, to, nil
}

// bookedDaysIn lists the days of [from, to] held by the conflicting bookings.
func bookedDaysIn(conflicts []models.Booking, from, to models.Date) []models.Date {
	var days []models.Date
	for _, day := range availability.EachDay(from, to) {
		for _, b := range conflicts {
			if b.Overlaps(day, day) {
				days = append(days, day)
				break
			}
		}
	}
	return days
}
