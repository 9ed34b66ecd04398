package models

import (
	"fmt"
	"time"
)

// Day-of-week convention: integer 0-6, Monday=0.
const (
	DayMin = 0
	DayMax = 6
)

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the human readable name for a day-of-week value.
func DayName(day int) string {
	if day < DayMin || day > DayMax {
		return fmt.Sprintf("Day %d", day)
	}
	return dayNames[day]
}

// Interval is a half-open weekly recurring range [Start, End) on a day of the
// week. Times are zero-padded 24h "HH:MM" strings, so lexicographic comparison
// is time comparison.
type Interval struct {
	Day   int    `json:"day_of_week"`
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

// NewInterval validates and builds an Interval. Zero-length and inverted
// ranges are rejected, as are malformed times and out-of-range days.
func NewInterval(day int, start, end string) (Interval, error) {
	if day < DayMin || day > DayMax {
		return Interval{}, fmt.Errorf("day_of_week %d out of range [0,6]", day)
	}
	for _, v := range []string{start, end} {
		if _, err := time.Parse("15:04", v); err != nil || len(v) != 5 {
			return Interval{}, fmt.Errorf("time %q is not zero-padded HH:MM", v)
		}
	}
	if start >= end {
		return Interval{}, fmt.Errorf("start %q must be before end %q", start, end)
	}
	return Interval{Day: day, Start: start, End: end}, nil
}

// Overlaps reports whether two intervals intersect. Intervals on different
// days never overlap; touching endpoints do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Day == o.Day && i.Start < o.End && o.Start < i.End
}

// TimeSlot is one weekly-recurring occupied interval owned by a class.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Interval returns the slot's occupied interval.
func (t TimeSlot) Interval() Interval {
	return Interval{Day: t.DayOfWeek, Start: t.StartTime, End: t.EndTime}
}

// ScheduleEntry is a time slot joined with its class for schedule views.
type ScheduleEntry struct {
	TimeSlot
	ClassName   string `db:"class_name" json:"class_name"`
	Subject     string `db:"subject" json:"subject"`
	Room        string `db:"room" json:"room"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// Conflict dimensions reported by the engine.
const (
	ConflictTeacher = "TEACHER"
	ConflictRoom    = "ROOM"
	ConflictStudent = "STUDENT"
)

// SlotConflict describes the committed slot that blocks a proposed change.
type SlotConflict struct {
	TimeSlotID string `json:"time_slot_id"`
	ClassID    string `json:"class_id"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Dimension  string `json:"dimension"`
}

// SlotConflictError is returned when a proposed slot or enrollment collides
// with an existing booking.
type SlotConflictError struct {
	Dimension string       `json:"dimension"`
	Message   string       `json:"message"`
	Conflict  SlotConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *SlotConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
