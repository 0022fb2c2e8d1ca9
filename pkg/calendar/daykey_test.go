package calendar

import (
	"testing"
	"time"
)

func TestDayKeyString(t *testing.T) {
	k := DayKey{Year: 2024, Month: time.June, Day: 1}
	if got := k.String(); got != "2024-06-01" {
		t.Fatalf("expected 2024-06-01, got %s", got)
	}
}

func TestParseDayKeyRoundTrip(t *testing.T) {
	k, err := ParseDayKey("2024-02-29")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if (k != DayKey{2024, time.February, 29}) {
		t.Fatalf("unexpected key: %v", k)
	}
	if k.String() != "2024-02-29" {
		t.Fatalf("round trip mismatch: %s", k.String())
	}

	if _, err := ParseDayKey("not-a-date"); err == nil {
		t.Fatalf("expected error for malformed key")
	}
}

func TestDayKeyBefore(t *testing.T) {
	cases := []struct {
		a, b DayKey
		want bool
	}{
		{DayKey{2024, time.June, 1}, DayKey{2024, time.June, 2}, true},
		{DayKey{2024, time.June, 2}, DayKey{2024, time.June, 1}, false},
		{DayKey{2023, time.December, 31}, DayKey{2024, time.January, 1}, true},
		{DayKey{2024, time.May, 31}, DayKey{2024, time.June, 1}, true},
		{DayKey{2024, time.June, 1}, DayKey{2024, time.June, 1}, false},
	}
	for _, tc := range cases {
		if got := tc.a.Before(tc.b); got != tc.want {
			t.Fatalf("%v.Before(%v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDayOfHalfOpenInterval(t *testing.T) {
	midnight := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	if got := DayOf(midnight, time.UTC); got.String() != "2024-06-02" {
		t.Fatalf("midnight mapped to %s, want the day that begins at that instant", got)
	}
	justBefore := midnight.Add(-time.Nanosecond)
	if got := DayOf(justBefore, time.UTC); got.String() != "2024-06-01" {
		t.Fatalf("instant before midnight mapped to %s", got)
	}
}

func TestDayOfNilLocationDefaultsToUTC(t *testing.T) {
	at := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	if got := DayOf(at, nil); got.String() != "2024-06-01" {
		t.Fatalf("nil location should bucket in UTC, got %s", got)
	}
}

func TestMonthWindowFebruary2024(t *testing.T) {
	// Leap year, 29 days, starting on a Thursday.
	window := MonthWindow(2024, time.February, time.UTC, time.Sunday)

	if len(window) != 35 {
		t.Fatalf("expected 35 entries (5 full weeks), got %d", len(window))
	}
	if window[0].String() != "2024-01-28" {
		t.Fatalf("expected grid to start on the Sunday before Feb 1, got %s", window[0])
	}
	if window[len(window)-1].String() != "2024-03-02" {
		t.Fatalf("expected grid to end on the Saturday after Feb 29, got %s", window[len(window)-1])
	}
	if window[0].Time(time.UTC).Weekday() != time.Sunday {
		t.Fatalf("grid does not start on the configured week start")
	}
}

func TestMonthWindowWeekStartMonday(t *testing.T) {
	window := MonthWindow(2024, time.February, time.UTC, time.Monday)

	if len(window) != 35 {
		t.Fatalf("expected 35 entries, got %d", len(window))
	}
	if window[0].String() != "2024-01-29" {
		t.Fatalf("expected grid to start Monday Jan 29, got %s", window[0])
	}
	if window[len(window)-1].String() != "2024-03-03" {
		t.Fatalf("expected grid to end Sunday Mar 3, got %s", window[len(window)-1])
	}
}

func TestMonthWindowSixWeeks(t *testing.T) {
	// June 2024 starts on a Saturday and has 30 days: 6 rows with a
	// Sunday week start.
	window := MonthWindow(2024, time.June, time.UTC, time.Sunday)
	if len(window) != 42 {
		t.Fatalf("expected 42 entries, got %d", len(window))
	}
}

func TestMonthWindowDSTTransition(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// March 2024 spans the US spring-forward on March 10.
	window := MonthWindow(2024, time.March, ny, time.Sunday)

	seen := map[DayKey]bool{}
	inMonth := 0
	for _, day := range window {
		if seen[day] {
			t.Fatalf("duplicate day key %v in window", day)
		}
		seen[day] = true
		if day.Month == time.March && day.Year == 2024 {
			inMonth++
		}
	}
	if inMonth != 31 {
		t.Fatalf("expected exactly 31 March day keys, got %d", inMonth)
	}
}

func TestMonthWindowSouthernHemisphereDST(t *testing.T) {
	// Santiago leaves DST in early April; midnight handling around the
	// transition must not skip or duplicate a day.
	scl, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	window := MonthWindow(2024, time.April, scl, time.Sunday)
	seen := map[DayKey]bool{}
	inMonth := 0
	for _, day := range window {
		if seen[day] {
			t.Fatalf("duplicate day key %v", day)
		}
		seen[day] = true
		if day.Month == time.April {
			inMonth++
		}
	}
	if inMonth != 30 {
		t.Fatalf("expected 30 April day keys, got %d", inMonth)
	}
}

func TestTodayMatchesDayOf(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)
	if Today(now, time.UTC) != DayOf(now, time.UTC) {
		t.Fatalf("Today should be DayOf(now)")
	}
}
