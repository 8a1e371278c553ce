package models

import "testing"

func TestParseDateKeepsCalendarDay(t *testing.T) {
	cases := map[string]Date{
		"2025-10-01":                "2025-10-01",
		" 2025-10-01 ":              "2025-10-01",
		"2025-10-01T23:30:00-05:00": "2025-10-01",
		"2025-10-01T00:15:00+07:00": "2025-10-01",
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		if err != nil || got != want {
			t.Fatalf("ParseDate(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "2025-13-01", "01/10/2025"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestParseDatesCollectsInvalid(t *testing.T) {
	dates, invalid := ParseDates([]string{"2025-10-02", "nope", "2025-10-01", "2025-02-30"})
	if len(dates) != 2 || len(invalid) != 2 {
		t.Fatalf("dates = %v, invalid = %v", dates, invalid)
	}
}

func TestMoneyRoundsHalfUpOnce(t *testing.T) {
	cases := []struct {
		in       string
		currency string
		want     Money
	}{
		{"10.005", "usd", 1001},
		{"10.004", "usd", 1000},
		{"19.99", "USD", 1999},
		{"0.5", "vnd", 1},
		{"150000", "vnd", 150000},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in, tc.currency)
		if err != nil || got != tc.want {
			t.Fatalf("ParseMoney(%q, %s) = %d, %v; want %d", tc.in, tc.currency, got, err, tc.want)
		}
	}
	if _, err := ParseMoney("-1", "usd"); err == nil {
		t.Fatal("negative amount accepted")
	}
	if _, err := ParseMoney("abc", "usd"); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestMoneyDecimal(t *testing.T) {
	if got := Money(1999).Decimal("usd"); got != "19.99" {
		t.Fatalf("got %q", got)
	}
	if got := Money(5).Decimal("usd"); got != "0.05" {
		t.Fatalf("got %q", got)
	}
	if got := Money(140).Decimal("vnd"); got != "140" {
		t.Fatalf("got %q", got)
	}
}

func TestScheduleSettersNormalize(t *testing.T) {
	var s Schedule
	if s.Valid() || s.IsWorkableDay("2025-10-01") {
		t.Fatal("empty schedule must fail closed")
	}

	s.SetExplicitDates([]Date{"2025-10-03", "2025-10-01", "2025-10-03"})
	if len(s.ExplicitDates) != 2 || s.ExplicitDates[0] != "2025-10-01" {
		t.Fatalf("explicit = %v", s.ExplicitDates)
	}

	s.SetRecurringWeekdays([]int{5, 1, 5})
	if s.Mode != ModeRecurringWeekly || len(s.RecurringWeekdays) != 2 {
		t.Fatalf("schedule = %+v", s)
	}
	// 2025-10-06 is a Monday, 2025-10-07 a Tuesday
	if !s.IsWorkableDay("2025-10-06") || s.IsWorkableDay("2025-10-07") {
		t.Fatal("weekday lookup wrong")
	}
	if len(s.ExplicitDates) != 2 {
		t.Fatal("mode switch must keep the explicit dates")
	}
}
