package availability

import (
	"context"
	"fmt"

	"solobuddy/models"
)

// BookingFinder is the storage query the overlap detector depends on.
type BookingFinder interface {
	FindOverlappingBookings(ctx context.Context, guideID string, from, to models.Date, exclude []models.BookingStatus) ([]models.Booking, error)
}

// OverlapDetector finds active bookings intersecting a date range.
type OverlapDetector struct {
	Finder BookingFinder
}

func NewOverlapDetector(finder BookingFinder) *OverlapDetector {
	return &OverlapDetector{Finder: finder}
}

// FindConflicts returns bookings of guideID with existing.from <= to and
// existing.to >= from. Cancelled bookings are skipped unless exclude says otherwise.
func (d *OverlapDetector) FindConflicts(ctx context.Context, guideID string, from, to models.Date, exclude ...models.BookingStatus) ([]models.Booking, error) {
	if len(exclude) == 0 {
		exclude = models.InactiveStatuses
	}
	bookings, err := d.Finder.FindOverlappingBookings(ctx, guideID, from, to, exclude)
	if err != nil {
		return nil, fmt.Errorf("find overlapping bookings: %w", err)
	}

	// the store filters already; re-check so a loose query can never let a miss through
	conflicts := bookings[:0]
	for _, b := range bookings {
		if b.Overlaps(from, to) && !statusIn(b.Status, exclude) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}

// CoveredDates checks each date as a single-day range and returns the ones
// that fall inside an active booking.
func (d *OverlapDetector) CoveredDates(ctx context.Context, guideID string, dates []models.Date) ([]models.Date, error) {
	var covered []models.Date
	for _, day := range models.UniqueSortedDates(dates) {
		conflicts, err := d.FindConflicts(ctx, guideID, day, day)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			covered = append(covered, day)
		}
	}
	return covered, nil
}

func statusIn(s models.BookingStatus, set []models.BookingStatus) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}
