package shift

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	shiftDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/shift"
)

// MinutesPerDay is added to the end of a shift that crosses midnight.
const MinutesPerDay = 24 * 60

var ErrInvalidClock = errors.New("invalid time of day")

// Shift is a daily time window. EndTime earlier than StartTime means the
// shift ends on the following calendar day.
type Shift struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	GracePeriodMinutes int    `json:"grace_period_minutes"`
	IsActive           bool   `json:"is_active"`
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

func (s Shift) Validate() error {
	if _, err := ParseClock(s.StartTime); err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	if _, err := ParseClock(s.EndTime); err != nil {
		return fmt.Errorf("end_time: %w", err)
	}
	if s.GracePeriodMinutes < 0 {
		return errors.New("grace_period_minutes cannot be negative")
	}
	return nil
}

// The accessors below assume a validated shift; unparseable clocks read as midnight.
func (s Shift) startMinutes() int {
	m, _ := ParseClock(s.StartTime)
	return m
}

func (s Shift) endMinutes() int {
	m, _ := ParseClock(s.EndTime)
	return m
}

func (s Shift) IsOvernight() bool {
	return s.endMinutes() < s.startMinutes()
}

// ExpectedDurationMinutes is the scheduled length of the shift.
// Every duration computation goes through here so overnight shifts are
// never counted as negative.
func (s Shift) ExpectedDurationMinutes() int {
	start, end := s.startMinutes(), s.endMinutes()
	if end < start {
		end += MinutesPerDay
	}
	return end - start
}

// StartOn anchors the shift start to the calendar date of t, in t's location.
func (s Shift) StartOn(t time.Time) time.Time {
	m := s.startMinutes()
	return time.Date(t.Year(), t.Month(), t.Day(), m/60, m%60, 0, 0, t.Location())
}

// IsLateArrival reports whether arrival falls after start plus grace on the
// arrival's own calendar date.
func (s Shift) IsLateArrival(arrival time.Time) bool {
	graceEnd := s.StartOn(arrival).Add(time.Duration(s.GracePeriodMinutes) * time.Minute)
	return arrival.After(graceEnd)
}

func FromDataModel(m *shiftDatamodel.Shift) *Shift {
	if m == nil {
		return nil
	}
	return &Shift{
		ID:                 m.ID,
		Name:               m.Name,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		GracePeriodMinutes: m.GracePeriodMinutes,
		IsActive:           m.IsActive,
	}
}

func ToDataModel(s *Shift) *shiftDatamodel.Shift {
	return &shiftDatamodel.Shift{
		ID:                 s.ID,
		Name:               s.Name,
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		GracePeriodMinutes: s.GracePeriodMinutes,
		IsActive:           s.IsActive,
	}
}
