package availability

import (
	"solobuddy/models"
	"solobuddy/utils"
)

// maxRangeDays bounds a single request so day-by-day enumeration stays finite.
const maxRangeDays = 366

// Resolution is the outcome of checking a date range against a schedule.
type Resolution struct {
	OK           bool
	InvalidDates []models.Date
}

// IsWorkableDay reports whether the schedule allows work on date.
func IsWorkableDay(schedule models.Schedule, date models.Date) bool {
	return schedule.IsWorkableDay(date)
}

// ValidateRange checks that [from, to] is a usable inclusive range.
func ValidateRange(from, to models.Date) error {
	if to.Before(from) {
		return utils.Validation("toDate must not be before fromDate", string(from), string(to))
	}
	if InclusiveDayCount(from, to) > maxRangeDays {
		return utils.Validation("date range is too long", string(from), string(to))
	}
	return nil
}

// ResolveAvailability checks every day of [from, to] and reports all the days
// the guide does not work. Only an invalid schedule stops the scan early.
func ResolveAvailability(schedule models.Schedule, from, to models.Date) (Resolution, error) {
	if err := ValidateRange(from, to); err != nil {
		return Resolution{}, err
	}
	if !schedule.Valid() {
		return Resolution{}, utils.InvalidState("tour guide schedule is not set properly")
	}

	res := Resolution{OK: true}
	for _, day := range EachDay(from, to) {
		if !schedule.IsWorkableDay(day) {
			res.InvalidDates = append(res.InvalidDates, day)
		}
	}
	res.OK = len(res.InvalidDates) == 0
	return res, nil
}

// EachDay lists every calendar day in [from, to]. It returns nil when to < from.
func EachDay(from, to models.Date) []models.Date {
	if to.Before(from) {
		return nil
	}
	days := make([]models.Date, 0, InclusiveDayCount(from, to))
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// InclusiveDayCount counts both endpoints: a single-day range is 1.
func InclusiveDayCount(from, to models.Date) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Time().Sub(from.Time()).Hours()/24) + 1
}
