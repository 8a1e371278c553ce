package review

import (
	"context"
	"errors"
	"testing"
	"time"

	memoryRepo "solobuddy/database/repository/memory"
	"solobuddy/models"
	"solobuddy/utils"

	"go.uber.org/zap"
)

func newService(t *testing.T, status models.BookingStatus) (*DefaultReviewService, *memoryRepo.Store) {
	t.Helper()
	store := memoryRepo.NewStore()
	sched := models.Schedule{}
	sched.SetExplicitDates([]models.Date{"2025-10-01"})
	store.PutGuide(models.TourGuide{ID: "g1", UserID: "u-guide", Schedule: sched})

	ctx := context.Background()
	b := &models.Booking{ID: "b1", GuideID: "g1", TravelerID: "u1", FromDate: "2025-10-01", ToDate: "2025-10-01", Status: status}
	if err := store.Scheduler().CreateBooking(ctx, b, 0); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	svc := NewReviewService(store.Reviews(), store.Scheduler(), store.Guides(), zap.NewNop())
	svc.Now = func() time.Time { return time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC) }
	return svc, store
}

func expectKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	var appErr *utils.AppError
	if !errors.As(err, &appErr) || appErr.Kind != kind {
		t.Fatalf("expected %s, got %v", kind, err)
	}
}

var author = models.Actor{UserID: "u1", Role: models.RoleTraveler, Name: "Ann"}

func TestCreateReviewUpdatesRating(t *testing.T) {
	svc, store := newService(t, models.StatusCompleted)
	ctx := context.Background()

	rv, err := svc.Create(ctx, author, models.ReviewInput{BookingID: "b1", Rating: 4, Comment: " great "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rv.GuideID != "g1" || rv.Comment != "great" || rv.Traveler.Name != "Ann" {
		t.Fatalf("review = %+v", rv)
	}
	g, _ := store.Guide("g1")
	if g.RatingCount != 1 || g.RatingAvg != 4 {
		t.Fatalf("rating = %v / %d", g.RatingAvg, g.RatingCount)
	}

	_, err = svc.Create(ctx, author, models.ReviewInput{BookingID: "b1", Rating: 5})
	expectKind(t, err, utils.KindConflict)
	if g, _ := store.Guide("g1"); g.RatingCount != 1 {
		t.Fatalf("duplicate review counted: %d", g.RatingCount)
	}

	page, err := svc.ListByGuide(ctx, "g1", 1, 10)
	if err != nil || len(page.Results) != 1 {
		t.Fatalf("ListByGuide: %+v %v", page, err)
	}
}

func TestCreateReviewRejections(t *testing.T) {
	svc, _ := newService(t, models.StatusConfirmed)
	ctx := context.Background()

	_, err := svc.Create(ctx, author, models.ReviewInput{BookingID: "b1", Rating: 6})
	expectKind(t, err, utils.KindValidation)
	_, err = svc.Create(ctx, author, models.ReviewInput{BookingID: "nope", Rating: 5})
	expectKind(t, err, utils.KindNotFound)
	_, err = svc.Create(ctx, models.Actor{UserID: "u2"}, models.ReviewInput{BookingID: "b1", Rating: 5})
	expectKind(t, err, utils.KindNotFound)
}

func TestOnlyPaidBookingsCanBeReviewed(t *testing.T) {
	for _, status := range []models.BookingStatus{models.StatusCreated, models.StatusPendingPayment, models.StatusCancelled} {
		svc, store := newService(t, status)
		_, err := svc.Create(context.Background(), author, models.ReviewInput{BookingID: "b1", Rating: 5})
		expectKind(t, err, utils.KindInvalidState)
		if g, _ := store.Guide("g1"); g.RatingCount != 0 {
			t.Fatalf("%s booking counted toward the rating", status)
		}
		if page, _ := svc.ListByGuide(context.Background(), "g1", 1, 10); len(page.Results) != 0 {
			t.Fatalf("%s booking left a review", status)
		}
	}

	svc, _ := newService(t, models.StatusConfirmed)
	if _, err := svc.Create(context.Background(), author, models.ReviewInput{BookingID: "b1", Rating: 5}); err != nil {
		t.Fatalf("confirmed booking: %v", err)
	}
}
