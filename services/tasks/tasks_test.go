package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

type recordingClient struct {
	tasks []*asynq.Task
	err   error
}

func (c *recordingClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestSchedulerEnqueuesBookingTasks(t *testing.T) {
	client := &recordingClient{}
	s := NewAsynqScheduler(client)
	ctx := context.Background()

	if err := s.ScheduleBookingExpiry(ctx, "b1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("ScheduleBookingExpiry: %v", err)
	}
	if err := s.EnqueueGuideNotification(ctx, "b1"); err != nil {
		t.Fatalf("EnqueueGuideNotification: %v", err)
	}
	if len(client.tasks) != 2 || client.tasks[0].Type() != TypeBookingExpire || client.tasks[1].Type() != TypeGuideNotify {
		t.Fatalf("tasks = %v", client.tasks)
	}
	p, err := ParseBookingPayload(client.tasks[1])
	if err != nil || p.BookingID != "b1" {
		t.Fatalf("payload = %+v %v", p, err)
	}
}

func TestSchedulerIgnoresDuplicateTaskID(t *testing.T) {
	s := NewAsynqScheduler(&recordingClient{err: asynq.ErrTaskIDConflict})
	if err := s.EnqueueGuideNotification(context.Background(), "b1"); err != nil {
		t.Fatalf("duplicate should be a no-op: %v", err)
	}

	s = NewAsynqScheduler(&recordingClient{err: errors.New("redis down")})
	if err := s.ScheduleBookingExpiry(context.Background(), "b1", time.Now()); err == nil {
		t.Fatal("expected enqueue error")
	}
}

func TestParseBookingPayloadRejectsEmpty(t *testing.T) {
	if _, err := ParseBookingPayload(asynq.NewTask(TypeBookingExpire, []byte(`{}`))); err == nil {
		t.Fatal("expected error for missing booking id")
	}
	if _, err := ParseBookingPayload(asynq.NewTask(TypeBookingExpire, []byte(`not json`))); err == nil {
		t.Fatal("expected error for bad json")
	}
}
