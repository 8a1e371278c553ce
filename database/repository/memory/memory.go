// Package memoryRepo holds in-memory repositories with the same observable
// semantics as the Mongo ones: day claims are unique per guide, schedule
// writes compare-and-set the version, and soft-deleted tours read as missing.
// Services use it in tests.
package memoryRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	guideRepo "solobuddy/database/repository/guide"
	reviewRepo "solobuddy/database/repository/review"
	schedulerRepo "solobuddy/database/repository/scheduler"
	tourRepo "solobuddy/database/repository/tour"
	"solobuddy/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Store is one shared in-memory database.
type Store struct {
	mu       sync.Mutex
	guides   map[string]*models.TourGuide
	tours    map[string]*models.Tour
	bookings map[string]*models.Booking
	claims   map[string]map[models.Date]string // guideId -> day -> bookingId
	reviews  map[string]*models.Review
}

func NewStore() *Store {
	return &Store{
		guides:   map[string]*models.TourGuide{},
		tours:    map[string]*models.Tour{},
		bookings: map[string]*models.Booking{},
		claims:   map[string]map[models.Date]string{},
		reviews:  map[string]*models.Review{},
	}
}

// PutGuide inserts or replaces a guide.
func (s *Store) PutGuide(g models.TourGuide) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guides[g.ID] = &g
}

// PutTour inserts or replaces a tour.
func (s *Store) PutTour(t models.Tour) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tours[t.ID] = &t
}

// Guide returns a copy of the stored guide.
func (s *Store) Guide(id string) (models.TourGuide, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guides[id]
	if !ok {
		return models.TourGuide{}, false
	}
	return *g, true
}

// ClaimedDays lists the days currently claimed for a guide.
func (s *Store) ClaimedDays(guideID string) []models.Date {
	s.mu.Lock()
	defer s.mu.Unlock()
	var days []models.Date
	for d := range s.claims[guideID] {
		days = append(days, d)
	}
	return models.UniqueSortedDates(days)
}

// BookingCount returns the number of stored bookings.
func (s *Store) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *Store) Scheduler() schedulerRepo.SchedulerRepository { return &schedulerStore{s} }
func (s *Store) Guides() guideRepo.GuideRepository            { return &guideStore{s} }
func (s *Store) Tours() tourRepo.TourRepository               { return &tourStore{s} }
func (s *Store) Reviews() reviewRepo.ReviewRepository         { return &reviewStore{s} }

func paginate[T any](items []T, page, limit int) models.Page[T] {
	page, limit = models.NormalizePage(page, limit)
	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	results := make([]T, end-start)
	copy(results, items[start:end])
	return models.Page[T]{
		Results:      results,
		Page:         page,
		Limit:        limit,
		TotalPages:   models.TotalPages(int64(total), limit),
		TotalResults: int64(total),
	}
}

type schedulerStore struct{ *Store }

func (r *schedulerStore) EnsureIndexes() error { return nil }

func (r *schedulerStore) CreateBooking(_ context.Context, b *models.Booking, scheduleVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.guides[b.GuideID]
	if !ok || g.Schedule.Version != scheduleVersion {
		return schedulerRepo.ErrScheduleChanged
	}
	days := b.Days()
	held := r.claims[b.GuideID]
	for _, d := range days {
		if _, taken := held[d]; taken {
			return schedulerRepo.ErrDayTaken
		}
	}
	if held == nil {
		held = map[models.Date]string{}
		r.claims[b.GuideID] = held
	}
	for _, d := range days {
		held[d] = b.ID
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *schedulerStore) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, schedulerRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *schedulerStore) FindOverlappingBookings(_ context.Context, guideID string, from, to models.Date, exclude []models.BookingStatus) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.GuideID == guideID && b.Overlaps(from, to) && !contains(exclude, b.Status) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *schedulerStore) ListBookings(_ context.Context, q schedulerRepo.BookingQuery) (models.Page[models.Booking], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []models.Booking
	for _, b := range r.bookings {
		if q.TravelerID != "" && b.TravelerID != q.TravelerID {
			continue
		}
		if q.GuideID != "" && b.GuideID != q.GuideID {
			continue
		}
		if q.Status != "" && b.Status != q.Status {
			continue
		}
		items = append(items, *b)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return paginate(items, q.Page, q.Limit), nil
}

func (r *schedulerStore) TransitionBooking(_ context.Context, id string, from []models.BookingStatus, to models.BookingStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, schedulerRepo.ErrBookingNotFound
	}
	if !contains(from, b.Status) {
		return nil, schedulerRepo.ErrStatusMismatch
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	if to == models.StatusCancelled {
		r.releaseLocked(b)
	}
	cp := *b
	return &cp, nil
}

func (r *schedulerStore) AttachCheckoutSession(_ context.Context, id, sessionID, url string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, schedulerRepo.ErrBookingNotFound
	}
	if b.Status != models.StatusCreated {
		return nil, schedulerRepo.ErrStatusMismatch
	}
	b.CheckoutSessionID = sessionID
	b.CheckoutURL = url
	b.Status = models.StatusPendingPayment
	cp := *b
	return &cp, nil
}

func (r *schedulerStore) DeleteBookingIfStatus(_ context.Context, id string, statuses []models.BookingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || !contains(statuses, b.Status) {
		return false, nil
	}
	r.releaseLocked(b)
	delete(r.bookings, id)
	return true, nil
}

func (r *schedulerStore) ReplaceSchedule(_ context.Context, guideID string, expectedVersion int64, sched models.Schedule, guard schedulerRepo.ScheduleGuard) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guides[guideID]
	if !ok || g.Schedule.Version != expectedVersion {
		return nil, schedulerRepo.ErrScheduleChanged
	}

	var booked []models.Date
	for _, d := range guard.Dates {
		if _, taken := r.claims[guideID][d]; taken {
			booked = append(booked, d)
		}
	}
	if guard.RequireWorkableFrom != "" {
		for d := range r.claims[guideID] {
			if !d.Before(guard.RequireWorkableFrom) && !sched.IsWorkableDay(d) {
				booked = append(booked, d)
			}
		}
	}
	if len(booked) > 0 {
		return nil, &schedulerRepo.DatesBookedError{Dates: models.UniqueSortedDates(booked)}
	}

	sched.Version = expectedVersion + 1
	sched.UpdatedAt = time.Now().UTC()
	g.Schedule = sched
	out := sched
	return &out, nil
}

func (r *schedulerStore) releaseLocked(b *models.Booking) {
	held := r.claims[b.GuideID]
	for d, id := range held {
		if id == b.ID {
			delete(held, d)
		}
	}
}

type guideStore struct{ *Store }

func (r *guideStore) EnsureIndexes() error { return nil }

func (r *guideStore) GetByID(_ context.Context, id string) (*models.TourGuide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guides[id]
	if !ok {
		return nil, guideRepo.ErrGuideNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *guideStore) GetByUserID(_ context.Context, userID string) (*models.TourGuide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.guides {
		if g.UserID == userID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, guideRepo.ErrGuideNotFound
}

// UpdateFields understands the profile fields the guide service sets.
func (r *guideStore) UpdateFields(_ context.Context, id string, set bson.M) (*models.TourGuide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guides[id]
	if !ok {
		return nil, guideRepo.ErrGuideNotFound
	}
	for k, v := range set {
		switch k {
		case "bio":
			g.Bio = v.(string)
		case "dailyRate":
			g.DailyRate = v.(models.Money)
		case "location":
			g.Location = v.(string)
		case "languages":
			g.Languages = v.([]string)
		case "experienceYears":
			g.ExperienceYears = v.(int)
		case "photos":
			g.Photos = v.([]string)
		case "vehicle":
			g.Vehicle = v.(string)
		case "specialties":
			g.Specialties = v.([]string)
		case "favourites":
			g.Favourites = v.([]string)
		}
	}
	g.UpdatedAt = time.Now().UTC()
	cp := *g
	return &cp, nil
}

// Search does not evaluate the Mongo filter; it pages every guide by rating.
func (r *guideStore) Search(_ context.Context, _ bson.M, page, limit int) (models.Page[models.TourGuide], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]models.TourGuide, 0, len(r.guides))
	for _, g := range r.guides {
		items = append(items, *g)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].RatingAvg != items[j].RatingAvg {
			return items[i].RatingAvg > items[j].RatingAvg
		}
		return items[i].ID < items[j].ID
	})
	return paginate(items, page, limit), nil
}

func (r *guideStore) AddRating(_ context.Context, id string, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guides[id]
	if !ok {
		return guideRepo.ErrGuideNotFound
	}
	g.RatingAvg = (g.RatingAvg*float64(g.RatingCount) + float64(rating)) / float64(g.RatingCount+1)
	g.RatingCount++
	return nil
}

type tourStore struct{ *Store }

func (r *tourStore) EnsureIndexes() error { return nil }

func (r *tourStore) Create(_ context.Context, t *models.Tour) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tours[t.ID] = &cp
	return nil
}

func (r *tourStore) GetByID(_ context.Context, id string) (*models.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tours[id]
	if !ok || t.Deleted {
		return nil, tourRepo.ErrTourNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *tourStore) ListByGuide(_ context.Context, guideID string, page, limit int) (models.Page[models.Tour], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []models.Tour
	for _, t := range r.tours {
		if t.GuideID == guideID && !t.Deleted {
			items = append(items, *t)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return paginate(items, page, limit), nil
}

func (r *tourStore) UpdateFields(_ context.Context, id, guideID string, set bson.M) (*models.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tours[id]
	if !ok || t.Deleted || t.GuideID != guideID {
		return nil, tourRepo.ErrTourNotFound
	}
	for k, v := range set {
		switch k {
		case "title":
			t.Title = v.(string)
		case "description":
			t.Description = v.(string)
		case "price":
			t.Price = v.(models.Money)
		case "unit":
			t.Unit = v.(string)
		case "duration":
			t.Duration = v.(string)
		}
	}
	cp := *t
	return &cp, nil
}

func (r *tourStore) SoftDelete(_ context.Context, id, guideID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tours[id]
	if !ok || t.Deleted || t.GuideID != guideID {
		return tourRepo.ErrTourNotFound
	}
	t.Deleted = true
	return nil
}

type reviewStore struct{ *Store }

func (r *reviewStore) EnsureIndexes() error { return nil }

func (r *reviewStore) Create(_ context.Context, rv *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.BookingID == rv.BookingID {
			return reviewRepo.ErrDuplicateReview
		}
	}
	cp := *rv
	r.reviews[rv.ID] = &cp
	return nil
}

func (r *reviewStore) ListByGuide(_ context.Context, guideID string, page, limit int) (models.Page[models.Review], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []models.Review
	for _, rv := range r.reviews {
		if rv.GuideID == guideID {
			items = append(items, *rv)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return paginate(items, page, limit), nil
}

func contains(set []models.BookingStatus, s models.BookingStatus) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}
