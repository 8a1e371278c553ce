package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"solobuddy/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

var testTime = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

type recorder struct {
	expired  []string
	notified []string
	err      error
}

func (r *recorder) ExpireStale(_ context.Context, id string) error {
	r.expired = append(r.expired, id)
	return r.err
}

func (r *recorder) NotifyGuideOfBooking(_ context.Context, id string) error {
	r.notified = append(r.notified, id)
	return r.err
}

func TestMuxDispatchesBookingTasks(t *testing.T) {
	rec := &recorder{}
	mux := NewMux(rec, rec, zap.NewNop())
	ctx := context.Background()

	expire, _, err := tasks.NewBookingExpiryTask("b1", testTime)
	if err != nil {
		t.Fatalf("NewBookingExpiryTask: %v", err)
	}
	notify, _, err := tasks.NewGuideNotificationTask("b2")
	if err != nil {
		t.Fatalf("NewGuideNotificationTask: %v", err)
	}
	if err := mux.ProcessTask(ctx, expire); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if err := mux.ProcessTask(ctx, notify); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(rec.expired) != 1 || rec.expired[0] != "b1" || len(rec.notified) != 1 || rec.notified[0] != "b2" {
		t.Fatalf("recorded = %+v", rec)
	}
}

func TestBadPayloadSkipsRetry(t *testing.T) {
	mux := NewMux(&recorder{}, &recorder{}, zap.NewNop())
	err := mux.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeBookingExpire, []byte(`{}`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestHandlerErrorsAreRetried(t *testing.T) {
	rec := &recorder{err: errors.New("mongo down")}
	mux := NewMux(rec, rec, zap.NewNop())
	notify, _, _ := tasks.NewGuideNotificationTask("b1")
	if err := mux.ProcessTask(context.Background(), notify); err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}
