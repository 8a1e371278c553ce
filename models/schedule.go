package models

import "time"

// ScheduleMode selects which availability representation is authoritative.
type ScheduleMode string

const (
	ModeExplicitDates   ScheduleMode = "explicit_dates"
	ModeRecurringWeekly ScheduleMode = "recurring_weekly"
)

// Schedule is a guide's bookable availability. Only the representation named
// by Mode is consulted; the other one is kept as history.
type Schedule struct {
	Mode              ScheduleMode `bson:"mode" json:"mode"`
	ExplicitDates     []Date       `bson:"explicitDates" json:"explicitDates"`         // used when Mode == explicit_dates
	RecurringWeekdays []int        `bson:"recurringWeekdays" json:"recurringWeekdays"` // 0 = Sunday ... 6 = Saturday
	Version           int64        `bson:"version" json:"version"`                     // bumped on every schedule write
	UpdatedAt         time.Time    `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// SetExplicitDates makes the explicit date list authoritative.
func (s *Schedule) SetExplicitDates(dates []Date) {
	s.Mode = ModeExplicitDates
	s.ExplicitDates = UniqueSortedDates(dates)
}

// SetRecurringWeekdays makes the weekly pattern authoritative.
func (s *Schedule) SetRecurringWeekdays(weekdays []int) {
	s.Mode = ModeRecurringWeekly
	s.RecurringWeekdays = uniqueWeekdays(weekdays)
}

// Valid reports whether the active representation is populated.
func (s Schedule) Valid() bool {
	switch s.Mode {
	case ModeRecurringWeekly:
		return len(s.RecurringWeekdays) > 0
	case ModeExplicitDates:
		return len(s.ExplicitDates) > 0
	default:
		return false
	}
}

// IsWorkableDay reports whether the guide works on d. An invalid schedule
// fails closed: no day is workable.
func (s Schedule) IsWorkableDay(d Date) bool {
	if !s.Valid() {
		return false
	}
	switch s.Mode {
	case ModeRecurringWeekly:
		wd := int(d.Weekday())
		for _, w := range s.RecurringWeekdays {
			if w == wd {
				return true
			}
		}
	case ModeExplicitDates:
		for _, x := range s.ExplicitDates {
			if x == d {
				return true
			}
		}
	}
	return false
}

// ValidWeekday reports whether d is a weekday index 0-6.
func ValidWeekday(d int) bool {
	return d >= int(time.Sunday) && d <= int(time.Saturday)
}

func uniqueWeekdays(days []int) []int {
	var seen [7]bool
	out := make([]int, 0, len(days))
	for d := 0; d < 7; d++ {
		for _, v := range days {
			if v == d && !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}
