package tour

import (
	"context"
	"errors"
	"testing"

	memoryRepo "solobuddy/database/repository/memory"
	"solobuddy/models"
	"solobuddy/utils"

	"go.uber.org/zap"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func newService() *DefaultTourService {
	return NewTourService(memoryRepo.NewStore().Tours(), "usd", zap.NewNop())
}

func assertKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	var appErr *utils.AppError
	if !errors.As(err, &appErr) || appErr.Kind != kind {
		t.Fatalf("expected %s, got %v", kind, err)
	}
}

func TestTourLifecycle(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "g1", models.TourInput{
		Title: strPtr(" Ha Long day trip "), Price: floatPtr(49.995), Unit: strPtr("Person"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Title != "Ha Long day trip" || created.Tour.Price != 5000 || created.Price != "50.00" || created.Unit != "person" {
		t.Fatalf("created = %+v", created)
	}

	updated, err := svc.Update(ctx, created.ID, "g1", models.TourInput{Price: floatPtr(35)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Price != "35.00" || updated.Title != "Ha Long day trip" {
		t.Fatalf("updated = %+v", updated)
	}

	list, err := svc.ListByGuide(ctx, "g1", 1, 10)
	if err != nil || len(list.Results) != 1 {
		t.Fatalf("ListByGuide: %+v %v", list, err)
	}

	if err := svc.Delete(ctx, created.ID, "g1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = svc.Get(ctx, created.ID)
	assertKind(t, err, utils.KindNotFound)
	_, err = svc.Update(ctx, created.ID, "g1", models.TourInput{Price: floatPtr(1)})
	assertKind(t, err, utils.KindNotFound)
}

func TestTourOwnership(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	created, err := svc.Create(ctx, "g1", models.TourInput{Title: strPtr("Street food"), Price: floatPtr(10)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(ctx, created.ID, "g2", models.TourInput{Title: strPtr("Mine now")})
	assertKind(t, err, utils.KindForbidden)
	assertKind(t, svc.Delete(ctx, created.ID, "g2"), utils.KindForbidden)
}

func TestTourValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "g1", models.TourInput{Price: floatPtr(10)})
	assertKind(t, err, utils.KindValidation)
	_, err = svc.Create(ctx, "g1", models.TourInput{Title: strPtr("x")})
	assertKind(t, err, utils.KindValidation)
	_, err = svc.Create(ctx, "g1", models.TourInput{Title: strPtr("x"), Price: floatPtr(-1), Unit: strPtr("hour")})
	var appErr *utils.AppError
	if !errors.As(err, &appErr) || len(appErr.Details) != 2 {
		t.Fatalf("expected two details, got %v", err)
	}
}
