package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidClock     = errors.New("invalid clock time")
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrSlotDuration     = errors.New("slot duration must be positive")
)

// Clock — время суток в минутах от полуночи.
type Clock int

// ParseClock разбирает строку вида "HH:MM".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ParseDate разбирает дату "YYYY-MM-DD" и возвращает полночь UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// DateOnly отбрасывает время суток. Компоненты даты берутся в зоне t,
// результат: полночь UTC, так даты хранятся в БД.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Combine собирает момент времени из календарной даты и времени суток в зоне loc.
func Combine(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	c, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	year, month, day := date.Date()
	return time.Date(year, month, day, int(c)/60, int(c)%60, 0, 0, loc), nil
}

// IsInPast сообщает, что слот уже закончился: дата + время окончания
// (или начала, если окончания нет) в локальной зоне сервера строго раньше now.
// Битые дата или время дают false, функция не валидирует вход.
func IsInPast(date time.Time, startTime, endTime string, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	clock := endTime
	if strings.TrimSpace(clock) == "" {
		clock = startTime
	}
	at, err := Combine(date, clock, time.Local)
	if err != nil {
		return false
	}
	return at.Before(now)
}
