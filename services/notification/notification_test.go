package notification

import (
	"context"
	"strings"
	"testing"

	memoryRepo "solobuddy/database/repository/memory"
	"solobuddy/models"

	"go.uber.org/zap"
)

type outbox struct{ sent []Message }

func (o *outbox) Send(_ context.Context, msg Message) error {
	o.sent = append(o.sent, msg)
	return nil
}

func seed(t *testing.T, status models.BookingStatus) (*DefaultNotificationService, *outbox) {
	t.Helper()
	store := memoryRepo.NewStore()
	sched := models.Schedule{}
	sched.SetExplicitDates([]models.Date{"2025-10-01", "2025-10-02"})
	store.PutGuide(models.TourGuide{ID: "g1", Schedule: sched})
	err := store.Scheduler().CreateBooking(context.Background(), &models.Booking{
		ID: "b1", GuideID: "g1", FromDate: "2025-10-01", ToDate: "2025-10-02", Quantity: 2,
		Status: status, TotalPrice: 14000, Currency: "usd",
		TourSnapshot:     models.TourSnapshot{Title: "Old Quarter walk"},
		GuideSnapshot:    models.GuideSnapshot{Name: "Linh", Email: "linh@example.com"},
		TravelerSnapshot: models.TravelerSnapshot{Name: "Ann", Email: "ann@example.com"},
	}, 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	box := &outbox{}
	svc, err := NewDefaultNotificationService(store.Scheduler(), box, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDefaultNotificationService: %v", err)
	}
	return svc, box
}

func TestNotifyGuideOfConfirmedBooking(t *testing.T) {
	svc, box := seed(t, models.StatusConfirmed)
	if err := svc.NotifyGuideOfBooking(context.Background(), "b1"); err != nil {
		t.Fatalf("NotifyGuideOfBooking: %v", err)
	}
	if len(box.sent) != 1 {
		t.Fatalf("sent = %d", len(box.sent))
	}
	msg := box.sent[0]
	if msg.To != "linh@example.com" || !strings.Contains(msg.Body, "140.00 USD") || !strings.Contains(msg.Body, "(2 days)") {
		t.Fatalf("message = %+v", msg)
	}
}

func TestNotifySkipsMissingAndUnconfirmed(t *testing.T) {
	svc, box := seed(t, models.StatusCancelled)
	ctx := context.Background()
	if err := svc.NotifyGuideOfBooking(ctx, "b1"); err != nil {
		t.Fatalf("cancelled: %v", err)
	}
	if err := svc.NotifyGuideOfBooking(ctx, "gone"); err != nil {
		t.Fatalf("missing: %v", err)
	}
	if len(box.sent) != 0 {
		t.Fatalf("sent = %d", len(box.sent))
	}
}
