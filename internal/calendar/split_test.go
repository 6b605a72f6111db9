package calendar

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func mustRange(t *testing.T, start, end string) ClockRange {
	t.Helper()
	r, err := ParseClockRange(start, end)
	if err != nil {
		t.Fatalf("ParseClockRange(%s, %s): %v", start, end, err)
	}
	return r
}

//
// Тесты для SplitWindow
//

func TestSplitWindow_ExactFit(t *testing.T) {
	slots, err := SplitWindow(mustRange(t, "09:00", "10:00"), 30*time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []ClockRange{
		mustRange(t, "09:00", "09:30"),
		mustRange(t, "09:30", "10:00"),
	}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestSplitWindow_DropsTail(t *testing.T) {
	slots, err := SplitWindow(mustRange(t, "09:00", "09:45"), 30*time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(slots) != 1 || slots[0].End.String() != "09:30" {
		t.Fatalf("expected single 09:00-09:30 slot, got %v", slots)
	}
}

func TestSplitWindow_WindowShorterThanSlot(t *testing.T) {
	slots, err := SplitWindow(mustRange(t, "09:00", "09:20"), 30*time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slots)
	}
}

func TestSplitWindow_InvalidDuration(t *testing.T) {
	if _, err := SplitWindow(mustRange(t, "09:00", "10:00"), 0); !errors.Is(err, ErrSlotDuration) {
		t.Fatalf("expected ErrSlotDuration, got %v", err)
	}
}

func TestParseClockRange_EndBeforeStart(t *testing.T) {
	if _, err := ParseClockRange("10:00", "09:00"); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
	if _, err := ParseClockRange("10:00", "10:00"); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange for empty range, got %v", err)
	}
}

//
// Тесты для ExpandWeekly
//

func TestExpandWeekly(t *testing.T) {
	// 2025-06-09 понедельник
	from := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	windows := []WeeklyWindow{
		{Weekday: time.Monday, Window: mustRange(t, "09:00", "10:00")},
		{Weekday: time.Wednesday, Window: mustRange(t, "14:00", "14:30")},
	}

	occ, err := ExpandWeekly(windows, from, to, 30*time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(occ) != 3 {
		t.Fatalf("expected 3 occurrences, got %d: %v", len(occ), occ)
	}
	if occ[0].Date.Weekday() != time.Monday || occ[2].Date.Weekday() != time.Wednesday {
		t.Fatalf("unexpected weekdays: %v", occ)
	}
	if occ[2].Range.Start.String() != "14:00" {
		t.Fatalf("expected 14:00, got %s", occ[2].Range.Start)
	}
}

func TestExpandWeekly_SingleDayInclusive(t *testing.T) {
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	windows := []WeeklyWindow{{Weekday: time.Monday, Window: mustRange(t, "09:00", "09:30")}}

	occ, err := ExpandWeekly(windows, day, day, 30*time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(occ) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occ))
	}
}

func TestExpandWeekly_InvalidRange(t *testing.T) {
	from := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	if _, err := ExpandWeekly(nil, from, from.AddDate(0, 0, -1), 30*time.Minute); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}

func TestFormatSlot(t *testing.T) {
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got := FormatSlot(d, "10:00", "10:30")
	if got != "Wednesday, 01.01.2025, 10:00–10:30" {
		t.Fatalf("unexpected format: %q", got)
	}
}
