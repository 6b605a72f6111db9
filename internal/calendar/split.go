package calendar

import (
	"fmt"
	"time"
)

// ClockRange — интервал [Start, End) внутри суток.
type ClockRange struct {
	Start Clock
	End   Clock
}

// ParseClockRange разбирает пару "HH:MM" и проверяет, что конец строго после начала.
func ParseClockRange(start, end string) (ClockRange, error) {
	s, err := ParseClock(start)
	if err != nil {
		return ClockRange{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return ClockRange{}, err
	}
	if e <= s {
		return ClockRange{}, fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, start, end)
	}
	return ClockRange{Start: s, End: e}, nil
}

// SplitWindow разбивает окно на слоты фиксированной длительности.
// "Хвост" меньшей длительности, чем slotDuration, отбрасывается.
func SplitWindow(window ClockRange, slotDuration time.Duration) ([]ClockRange, error) {
	step := Clock(slotDuration / time.Minute)
	if step <= 0 {
		return nil, ErrSlotDuration
	}
	if window.End <= window.Start {
		return []ClockRange{}, nil
	}

	var slots []ClockRange
	for cur := window.Start; cur+step <= window.End; cur += step {
		slots = append(slots, ClockRange{Start: cur, End: cur + step})
	}
	return slots, nil
}

// WeeklyWindow: окно приёма, повторяющееся каждую неделю в день Weekday.
type WeeklyWindow struct {
	Weekday time.Weekday
	Window  ClockRange
}

// Occurrence: конкретный слот на конкретную дату.
type Occurrence struct {
	Date  time.Time
	Range ClockRange
}

// ExpandWeekly разворачивает еженедельные окна в слоты на каждый день
// отрезка [from, to] включительно. Даты берутся как полночь UTC.
func ExpandWeekly(windows []WeeklyWindow, from, to time.Time, slotDuration time.Duration) ([]Occurrence, error) {
	if slotDuration < time.Minute {
		return nil, ErrSlotDuration
	}
	from, to = DateOnly(from), DateOnly(to)
	if to.Before(from) {
		return nil, ErrInvalidTimeRange
	}

	var result []Occurrence
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, w := range windows {
			if w.Weekday != day.Weekday() {
				continue
			}
			parts, err := SplitWindow(w.Window, slotDuration)
			if err != nil {
				return nil, err
			}
			for _, p := range parts {
				result = append(result, Occurrence{Date: day, Range: p})
			}
		}
	}
	return result, nil
}

// FormatSlot форматирует слот в человекочитаемую строку,
// например "Wednesday, 01.01.2025, 10:00–10:30".
func FormatSlot(date time.Time, startTime, endTime string) string {
	return fmt.Sprintf("%s, %s, %s–%s", date.Weekday(), date.Format("02.01.2006"), startTime, endTime)
}
