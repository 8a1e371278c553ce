package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingExpire = "booking:expire"
	TypeGuideNotify   = "booking:notify-guide"
)

// BookingPayload is the body of every booking task.
type BookingPayload struct {
	BookingID string `json:"bookingId"`
}

// NewBookingExpiryTask fires at `at` and removes the booking if it is still unpaid.
func NewBookingExpiryTask(bookingID string, at time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(BookingPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingExpire, b)
	opts := []asynq.Option{
		asynq.ProcessAt(at),
		asynq.TaskID("expire:" + bookingID),
		asynq.MaxRetry(10),
	}
	return task, opts, nil
}

// NewGuideNotificationTask tells the guide about a confirmed booking. The
// task id makes a second enqueue for the same booking a no-op.
func NewGuideNotificationTask(bookingID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(BookingPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeGuideNotify, b)
	opts := []asynq.Option{
		asynq.TaskID("notify:" + bookingID),
		asynq.MaxRetry(5),
		asynq.Retention(24 * time.Hour),
	}
	return task, opts, nil
}

func ParseBookingPayload(task *asynq.Task) (BookingPayload, error) {
	var p BookingPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", task.Type(), err)
	}
	if p.BookingID == "" {
		return p, fmt.Errorf("%s payload has no booking id", task.Type())
	}
	return p, nil
}

// Enqueuer is the part of *asynq.Client the scheduler uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqScheduler queues booking tasks on Redis.
type AsynqScheduler struct {
	Client Enqueuer
}

func NewAsynqScheduler(client Enqueuer) *AsynqScheduler {
	return &AsynqScheduler{Client: client}
}

func (s *AsynqScheduler) ScheduleBookingExpiry(ctx context.Context, bookingID string, at time.Time) error {
	task, opts, err := NewBookingExpiryTask(bookingID, at)
	if err != nil {
		return err
	}
	return s.enqueue(ctx, task, opts)
}

func (s *AsynqScheduler) EnqueueGuideNotification(ctx context.Context, bookingID string) error {
	task, opts, err := NewGuideNotificationTask(bookingID)
	if err != nil {
		return err
	}
	return s.enqueue(ctx, task, opts)
}

// enqueue treats an already queued task id as success.
func (s *AsynqScheduler) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option) error {
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}
