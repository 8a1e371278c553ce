package guide

import (
	"context"
	"errors"
	"testing"
	"time"

	guideRepo "solobuddy/database/repository/guide"
	memoryRepo "solobuddy/database/repository/memory"
	schedulerRepo "solobuddy/database/repository/scheduler"
	"solobuddy/models"
	"solobuddy/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type mapCache struct {
	values map[string]string
	sets   int
}

func (c *mapCache) Get(_ context.Context, userID string) (string, error) {
	v, ok := c.values[userID]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, userID, guideID string, _ time.Duration) error {
	c.values[userID] = guideID
	c.sets++
	return nil
}

func newService(t *testing.T, sched models.Schedule) (*DefaultGuideService, *memoryRepo.Store) {
	t.Helper()
	store := memoryRepo.NewStore()
	store.PutGuide(models.TourGuide{
		ID: "g1", UserID: "u-guide", Name: "Linh", DailyRate: 50,
		Location: "vietnam", Languages: []string{"english"}, Schedule: sched,
	})
	svc := NewGuideService(store.Guides(), store.Scheduler(), &mapCache{values: map[string]string{}}, "vnd", zap.NewNop())
	svc.Now = func() time.Time { return time.Date(2025, 9, 20, 8, 0, 0, 0, time.UTC) }
	return svc, store
}

func explicitSchedule(dates ...models.Date) models.Schedule {
	s := models.Schedule{}
	s.SetExplicitDates(dates)
	return s
}

func book(t *testing.T, store *memoryRepo.Store, id string, from, to models.Date) {
	t.Helper()
	g, _ := store.Guide("g1")
	err := store.Scheduler().CreateBooking(context.Background(), &models.Booking{
		ID: id, GuideID: "g1", FromDate: from, ToDate: to, Status: models.StatusConfirmed,
	}, g.Schedule.Version)
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
}

func kindOf(t *testing.T, err error, kind utils.ErrorKind) *utils.AppError {
	t.Helper()
	var appErr *utils.AppError
	if !errors.As(err, &appErr) || appErr.Kind != kind {
		t.Fatalf("expected %s, got %v", kind, err)
	}
	return appErr
}

func TestApplyEditsRejectsRemovingBookedDay(t *testing.T) {
	svc, store := newService(t, explicitSchedule("2025-10-01", "2025-10-02", "2025-10-03"))
	book(t, store, "b1", "2025-10-02", "2025-10-02")

	_, err := svc.ApplyEdits(context.Background(), "g1", []string{"2025-10-10"}, []string{"2025-10-02", "2025-10-03"})
	appErr := kindOf(t, err, utils.KindConflict)
	if len(appErr.Details) != 1 || appErr.Details[0] != "2025-10-02" {
		t.Fatalf("details = %v", appErr.Details)
	}

	// nothing applied, including the unrelated add
	g, _ := store.Guide("g1")
	if len(g.Schedule.ExplicitDates) != 3 || g.Schedule.Version != 0 {
		t.Fatalf("schedule changed: %+v", g.Schedule)
	}
}

func TestApplyEditsRemovesThenAddsAndDedupes(t *testing.T) {
	svc, _ := newService(t, explicitSchedule("2025-10-01", "2025-10-02"))

	got, err := svc.ApplyEdits(context.Background(), "g1",
		[]string{"2025-10-05", "2025-10-05T10:00:00+07:00", "2025-10-01"},
		[]string{"2025-10-01", "2025-10-02"},
	)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	want := []models.Date{"2025-10-01", "2025-10-05"}
	if len(got.ExplicitDates) != len(want) {
		t.Fatalf("dates = %v", got.ExplicitDates)
	}
	for i := range want {
		if got.ExplicitDates[i] != want[i] {
			t.Fatalf("dates = %v", got.ExplicitDates)
		}
	}
	if got.Version != 1 || got.Mode != models.ModeExplicitDates {
		t.Fatalf("schedule = %+v", got)
	}
}

func TestApplyEditsKeepsRecurringMode(t *testing.T) {
	s := models.Schedule{}
	s.SetRecurringWeekdays([]int{1, 3})
	svc, _ := newService(t, s)

	got, err := svc.ApplyEdits(context.Background(), "g1", []string{"2025-10-04"}, nil)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if got.Mode != models.ModeRecurringWeekly || len(got.ExplicitDates) != 1 {
		t.Fatalf("schedule = %+v", got)
	}
}

func TestApplyEditsValidation(t *testing.T) {
	svc, _ := newService(t, explicitSchedule("2025-10-01"))
	ctx := context.Background()

	_, err := svc.ApplyEdits(ctx, "g1", []string{"2025-13-01", "2025-10-02"}, []string{"yesterday"})
	appErr := kindOf(t, err, utils.KindValidation)
	if len(appErr.Details) != 2 {
		t.Fatalf("details = %v", appErr.Details)
	}
	_, err = svc.ApplyEdits(ctx, "g1", nil, nil)
	kindOf(t, err, utils.KindValidation)
	_, err = svc.ApplyEdits(ctx, "missing", []string{"2025-10-02"}, nil)
	kindOf(t, err, utils.KindNotFound)
}

func TestSetWorkDaysRejectsStrandedBooking(t *testing.T) {
	s := models.Schedule{}
	s.SetRecurringWeekdays([]int{1, 2, 3})
	svc, store := newService(t, s)
	// 2025-10-07 is a Tuesday
	book(t, store, "b1", "2025-10-07", "2025-10-07")

	_, err := svc.SetWorkDays(context.Background(), "g1", true, []int{1, 3})
	appErr := kindOf(t, err, utils.KindConflict)
	if len(appErr.Details) != 1 || appErr.Details[0] != "2025-10-07" {
		t.Fatalf("details = %v", appErr.Details)
	}

	got, err := svc.SetWorkDays(context.Background(), "g1", true, []int{3, 2, 2})
	if err != nil {
		t.Fatalf("SetWorkDays: %v", err)
	}
	if len(got.RecurringWeekdays) != 2 || got.RecurringWeekdays[0] != 2 {
		t.Fatalf("weekdays = %v", got.RecurringWeekdays)
	}
}

func TestSetWorkDaysSwitchesModeAndKeepsHistory(t *testing.T) {
	svc, _ := newService(t, explicitSchedule("2025-10-01"))
	ctx := context.Background()

	got, err := svc.SetWorkDays(ctx, "g1", true, []int{0, 6})
	if err != nil {
		t.Fatalf("to recurring: %v", err)
	}
	if got.Mode != models.ModeRecurringWeekly || len(got.ExplicitDates) != 1 {
		t.Fatalf("schedule = %+v", got)
	}

	got, err = svc.SetWorkDays(ctx, "g1", false, nil)
	if err != nil {
		t.Fatalf("to explicit: %v", err)
	}
	if got.Mode != models.ModeExplicitDates || got.ExplicitDates[0] != "2025-10-01" || got.Version != 2 {
		t.Fatalf("schedule = %+v", got)
	}
}

func TestSetWorkDaysValidation(t *testing.T) {
	svc, _ := newService(t, explicitSchedule("2025-10-01"))
	ctx := context.Background()

	_, err := svc.SetWorkDays(ctx, "g1", true, nil)
	kindOf(t, err, utils.KindValidation)
	_, err = svc.SetWorkDays(ctx, "g1", true, []int{1, 7, -1})
	appErr := kindOf(t, err, utils.KindValidation)
	if len(appErr.Details) != 2 {
		t.Fatalf("details = %v", appErr.Details)
	}
}

func TestResolveGuideIdentityCaches(t *testing.T) {
	svc, _ := newService(t, explicitSchedule("2025-10-01"))
	cache := svc.Identity.(*mapCache)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		id, err := svc.ResolveGuideIdentity(ctx, "u-guide")
		if err != nil || id != "g1" {
			t.Fatalf("resolve: %q %v", id, err)
		}
	}
	if cache.sets != 1 {
		t.Fatalf("cache writes = %d, want 1", cache.sets)
	}

	_, err := svc.ResolveGuideIdentity(ctx, "u-traveler")
	kindOf(t, err, utils.KindForbidden)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newService(t, explicitSchedule("2025-10-01"))
	ctx := context.Background()

	rate := 1250000.0
	langs := []string{"English", "vietnamese", "english"}
	got, err := svc.UpdateProfile(ctx, "g1", models.GuideProfileUpdate{DailyRate: &rate, Languages: &langs})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.DailyRate != 1250000 || got.PricePerDay != "1250000" || len(got.Languages) != 2 {
		t.Fatalf("profile = %+v", got)
	}

	vehicle := "spaceship"
	years := -1
	_, err = svc.UpdateProfile(ctx, "g1", models.GuideProfileUpdate{Vehicle: &vehicle, ExperienceYears: &years})
	appErr := kindOf(t, err, utils.KindValidation)
	if len(appErr.Details) != 2 {
		t.Fatalf("details = %v", appErr.Details)
	}

	_, err = svc.UpdateProfile(ctx, "g1", models.GuideProfileUpdate{})
	kindOf(t, err, utils.KindValidation)
}

func TestBuildGuideQuery(t *testing.T) {
	q, err := BuildGuideQuery(models.GuideFilter{
		Name:        &models.FilterClause{Operator: "regex", Value: "an.h"},
		Location:    &models.FilterClause{Operator: "$eq", Value: "Vietnam"},
		Languages:   &models.FilterClause{Operator: "$in", Value: []interface{}{"english", "thai"}},
		RatingAvg:   []models.FilterClause{{Operator: "$gte", Value: 4.5}},
		PricePerDay: []models.FilterClause{{Operator: "$lte", Value: 19.99}},
	}, "usd")
	if err != nil {
		t.Fatalf("BuildGuideQuery: %v", err)
	}
	if q["location"] != "vietnam" {
		t.Fatalf("location = %v", q["location"])
	}
	if name := q["name"].(bson.M); name["$regex"] != `an\.h` {
		t.Fatalf("name = %v", name)
	}
	if langs := q["languages"].(bson.M)["$in"].([]string); len(langs) != 2 {
		t.Fatalf("languages = %v", langs)
	}
	if price := q["dailyRate"].(bson.M)["$lte"]; price != int64(1999) {
		t.Fatalf("dailyRate = %v", price)
	}
	if rating := q["ratingAvg"].(bson.M)["$gte"]; rating != 4.5 {
		t.Fatalf("ratingAvg = %v", rating)
	}
}

func TestBuildGuideQueryRejectsUnknownValues(t *testing.T) {
	_, err := BuildGuideQuery(models.GuideFilter{
		Vehicle:   &models.FilterClause{Operator: "$eq", Value: "spaceship"},
		RatingAvg: []models.FilterClause{{Operator: "$where", Value: 1.0}},
		Country:   &models.FilterClause{Operator: "$eq", Value: 3.0},
	}, "vnd")
	appErr := kindOf(t, err, utils.KindValidation)
	if len(appErr.Details) != 3 {
		t.Fatalf("details = %v", appErr.Details)
	}
}

func TestSearchRendersMoney(t *testing.T) {
	svc, _ := newService(t, explicitSchedule("2025-10-01"))
	page, err := svc.Search(context.Background(), models.GuideFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].PricePerDay != "50" || page.Results[0].Currency != "vnd" {
		t.Fatalf("page = %+v", page)
	}
}

// racingGuides runs concurrent once, right after the guide is read.
type racingGuides struct {
	guideRepo.GuideRepository
	concurrent func()
}

func (r *racingGuides) GetByID(ctx context.Context, id string) (*models.TourGuide, error) {
	g, err := r.GuideRepository.GetByID(ctx, id)
	if r.concurrent != nil {
		r.concurrent()
		r.concurrent = nil
	}
	return g, err
}

// racingScheduler runs concurrent once, right before the schedule is written.
type racingScheduler struct {
	schedulerRepo.SchedulerRepository
	concurrent func()
}

func (r *racingScheduler) ReplaceSchedule(ctx context.Context, guideID string, version int64, sched models.Schedule, guard schedulerRepo.ScheduleGuard) (*models.Schedule, error) {
	if r.concurrent != nil {
		r.concurrent()
		r.concurrent = nil
	}
	return r.SchedulerRepository.ReplaceSchedule(ctx, guideID, version, sched, guard)
}

func TestApplyEditsLosesToConcurrentEdit(t *testing.T) {
	svc, store := newService(t, explicitSchedule("2025-10-01", "2025-10-02"))
	ctx := context.Background()
	svc.Repo = &racingGuides{GuideRepository: store.Guides(), concurrent: func() {
		g, _ := store.Guide("g1")
		other := g.Schedule
		other.SetExplicitDates(append(other.ExplicitDates, "2025-10-09"))
		if _, err := store.Scheduler().ReplaceSchedule(ctx, "g1", g.Schedule.Version, other, schedulerRepo.ScheduleGuard{}); err != nil {
			t.Fatalf("concurrent edit: %v", err)
		}
	}}

	_, err := svc.ApplyEdits(ctx, "g1", []string{"2025-10-05"}, []string{"2025-10-01"})
	kindOf(t, err, utils.KindConflict)

	g, _ := store.Guide("g1")
	want := []models.Date{"2025-10-01", "2025-10-02", "2025-10-09"}
	if len(g.Schedule.ExplicitDates) != len(want) {
		t.Fatalf("schedule = %v, want the concurrent writer's %v", g.Schedule.ExplicitDates, want)
	}
	for i := range want {
		if g.Schedule.ExplicitDates[i] != want[i] {
			t.Fatalf("schedule = %v, want %v", g.Schedule.ExplicitDates, want)
		}
	}
}

func TestApplyEditsRechecksClaimsInsideTheWrite(t *testing.T) {
	svc, store := newService(t, explicitSchedule("2025-10-01", "2025-10-02"))
	ctx := context.Background()
	// the day is booked after the overlap check but before the write
	svc.Scheduler = &racingScheduler{SchedulerRepository: store.Scheduler(), concurrent: func() {
		book(t, store, "b-late", "2025-10-02", "2025-10-02")
	}}

	_, err := svc.ApplyEdits(ctx, "g1", nil, []string{"2025-10-02"})
	appErr := kindOf(t, err, utils.KindConflict)
	if len(appErr.Details) != 1 || appErr.Details[0] != "2025-10-02" {
		t.Fatalf("details = %v", appErr.Details)
	}
	if g, _ := store.Guide("g1"); len(g.Schedule.ExplicitDates) != 2 {
		t.Fatalf("schedule changed: %v", g.Schedule.ExplicitDates)
	}
}

func TestSetWorkDaysProtectsTodayWestOfUTC(t *testing.T) {
	s := models.Schedule{}
	s.SetRecurringWeekdays([]int{1, 2})
	svc, store := newService(t, s)
	// 03:00 UTC on Wednesday 2025-10-08 is still Tuesday evening in the Americas
	svc.Now = func() time.Time { return time.Date(2025, 10, 8, 3, 0, 0, 0, time.UTC) }
	book(t, store, "b1", "2025-10-07", "2025-10-07")

	_, err := svc.SetWorkDays(context.Background(), "g1", true, []int{1})
	appErr := kindOf(t, err, utils.KindConflict)
	if len(appErr.Details) != 1 || appErr.Details[0] != "2025-10-07" {
		t.Fatalf("details = %v", appErr.Details)
	}

	// a day before the earliest current day is history
	svc.Now = func() time.Time { return time.Date(2025, 10, 8, 13, 0, 0, 0, time.UTC) }
	if _, err := svc.SetWorkDays(context.Background(), "g1", true, []int{1}); err != nil {
		t.Fatalf("SetWorkDays: %v", err)
	}
}
