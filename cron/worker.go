package cron

import (
	"context"
	"fmt"
	"time"

	"solobuddy/config"
	"solobuddy/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingExpirer removes bookings whose checkout never completed.
type BookingExpirer interface {
	ExpireStale(ctx context.Context, bookingID string) error
}

// GuideNotifier tells a guide about a confirmed booking.
type GuideNotifier interface {
	NotifyGuideOfBooking(ctx context.Context, bookingID string) error
}

// RedisOpt is the asynq connection for the booking queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMux routes booking tasks to their handlers.
func NewMux(expirer BookingExpirer, notifier GuideNotifier, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingExpire, handleExpireTask(expirer, logger))
	mux.HandleFunc(tasks.TypeGuideNotify, handleNotifyTask(notifier, logger))
	return mux
}

// InitBookingWorker runs the async worker in background and returns the
// server so the caller can shut it down.
func InitBookingWorker(expirer BookingExpirer, notifier GuideNotifier, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := NewMux(expirer, notifier, logger)

	// Start Redis health monitor
	go monitorRedisConnection(logger)

	// Start async worker with retry logic
	go func() {
		logger.Info("Starting booking worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				break
			}
			logger.Error("Booking worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Max retry attempts reached for booking worker")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
		}
	}()
	return srv
}

func handleExpireTask(expirer BookingExpirer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseBookingPayload(task)
		if err != nil {
			logger.Error("Invalid booking task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return expirer.ExpireStale(ctx, p.BookingID)
	}
}

func handleNotifyTask(notifier GuideNotifier, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseBookingPayload(task)
		if err != nil {
			logger.Error("Invalid booking task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := notifier.NotifyGuideOfBooking(ctx, p.BookingID); err != nil {
			logger.Warn("Guide notification failed", zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(logger *zap.Logger) {
	opt := RedisOpt()
	client := redis.NewClient(&redis.Options{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Booking queue Redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
