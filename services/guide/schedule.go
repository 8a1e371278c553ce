package guide

import (
	"context"
	"errors"
	"fmt"
	"time"

	guideRepo "solobuddy/database/repository/guide"
	schedulerRepo "solobuddy/database/repository/scheduler"
	"solobuddy/models"
	"solobuddy/utils"

	"go.uber.org/zap"
)

// lastDay bounds open-ended booking lookups.
const lastDay models.Date = "9999-12-31"

// earliestToday is the oldest calendar day that is still today somewhere
// (UTC-12). Booked days from it on count as upcoming for every guide.
func earliestToday(now time.Time) models.Date {
	return models.DateOf(now.UTC().Add(-12 * time.Hour))
}

// ApplyEdits removes and then adds explicit dates. Removing a day held by an
// active booking rejects the whole edit. The schedule mode is left as is.
func (s *DefaultGuideService) ApplyEdits(ctx context.Context, guideID string, addDates, removeDates []string) (*models.Schedule, error) {
	add, badAdd := models.ParseDates(addDates)
	remove, badRemove := models.ParseDates(removeDates)
	if bad := append(badAdd, badRemove...); len(bad) > 0 {
		return nil, utils.Validation("invalid dates", bad...)
	}
	if len(add) == 0 && len(remove) == 0 {
		return nil, utils.Validation("nothing to change: provide addDates or removeDates")
	}
	remove = models.UniqueSortedDates(remove)

	g, err := s.Repo.GetByID(ctx, guideID)
	if err != nil {
		return nil, mapRepoError("get tour guide", err)
	}

	covered, err := s.Detector.CoveredDates(ctx, guideID, remove)
	if err != nil {
		return nil, fmt.Errorf("check booked dates: %w", err)
	}
	if len(covered) > 0 {
		return nil, utils.Conflict("cannot remove dates that have active bookings", models.DateStrings(covered)...)
	}

	next := g.Schedule
	drop := make(map[models.Date]bool, len(remove))
	for _, d := range remove {
		drop[d] = true
	}
	kept := make([]models.Date, 0, len(next.ExplicitDates)+len(add))
	for _, d := range next.ExplicitDates {
		if !drop[d] {
			kept = append(kept, d)
		}
	}
	next.ExplicitDates = models.UniqueSortedDates(append(kept, add...))
	if next.Mode == "" {
		next.Mode = models.ModeExplicitDates
	}

	saved, err := s.Scheduler.ReplaceSchedule(ctx, guideID, g.Schedule.Version, next, schedulerRepo.ScheduleGuard{Dates: remove})
	if err != nil {
		return nil, mapRepoError("save schedule", err)
	}
	s.Logger.Info("Guide schedule edited",
		zap.String("guideId", guideID),
		zap.Int("added", len(add)),
		zap.Int("removed", len(remove)),
		zap.Int64("version", saved.Version),
	)
	return saved, nil
}

// SetWorkDays switches the guide between a weekly pattern and explicit dates.
// Any booked day from today on must stay workable under the new schedule.
func (s *DefaultGuideService) SetWorkDays(ctx context.Context, guideID string, isRecurring bool, weekdays []int) (*models.Schedule, error) {
	if isRecurring {
		if len(weekdays) == 0 {
			return nil, utils.Validation("workDays must not be empty for a recurring schedule")
		}
		var bad []string
		for _, d := range weekdays {
			if !models.ValidWeekday(d) {
				bad = append(bad, fmt.Sprint(d))
			}
		}
		if len(bad) > 0 {
			return nil, utils.Validation("workDays must be between 0 (Sunday) and 6 (Saturday)", bad...)
		}
	}

	g, err := s.Repo.GetByID(ctx, guideID)
	if err != nil {
		return nil, mapRepoError("get tour guide", err)
	}

	next := g.Schedule
	if isRecurring {
		next.SetRecurringWeekdays(weekdays)
	} else {
		next.SetExplicitDates(next.ExplicitDates)
	}

	today := earliestToday(s.Now())
	stranded, err := s.strandedDays(ctx, guideID, today, next)
	if err != nil {
		return nil, err
	}
	if len(stranded) > 0 {
		return nil, utils.Conflict("new schedule excludes days that have active bookings", models.DateStrings(stranded)...)
	}

	saved, err := s.Scheduler.ReplaceSchedule(ctx, guideID, g.Schedule.Version, next, schedulerRepo.ScheduleGuard{RequireWorkableFrom: today})
	if err != nil {
		return nil, mapRepoError("save schedule", err)
	}
	s.Logger.Info("Guide schedule mode set",
		zap.String("guideId", guideID),
		zap.String("mode", string(saved.Mode)),
		zap.Int64("version", saved.Version),
	)
	return saved, nil
}

// strandedDays lists booked days from `from` on that next would not cover.
func (s *DefaultGuideService) strandedDays(ctx context.Context, guideID string, from models.Date, next models.Schedule) ([]models.Date, error) {
	active, err := s.Detector.FindConflicts(ctx, guideID, from, lastDay)
	if err != nil {
		return nil, fmt.Errorf("find active bookings: %w", err)
	}
	var out []models.Date
	for _, b := range active {
		for d := b.FromDate; !d.After(b.ToDate); d = d.AddDays(1) {
			if !d.Before(from) && !next.IsWorkableDay(d) {
				out = append(out, d)
			}
		}
	}
	return models.UniqueSortedDates(out), nil
}

func mapRepoError(op string, err error) error {
	var booked *schedulerRepo.DatesBookedError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &booked):
		return utils.Conflict("dates have active bookings", models.DateStrings(booked.Dates)...)
	case errors.Is(err, schedulerRepo.ErrScheduleChanged):
		return utils.Conflict("schedule changed concurrently, please retry")
	case errors.Is(err, guideRepo.ErrGuideNotFound):
		return utils.NotFound("tour guide not found")
	case utils.KindOf(err) != "":
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
