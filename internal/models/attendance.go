package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for attendance days.
const DateLayout = "2006-01-02"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

// AttendanceStatuses lists the recognised statuses in display order.
var AttendanceStatuses = []AttendanceStatus{
	AttendanceStatusPresent,
	AttendanceStatusAbsent,
	AttendanceStatusLate,
}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	for _, known := range AttendanceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Attendance is one student's mark for one day.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	CreatedBy string           `db:"created_by" json:"created_by"`
}

// Day returns the record's date formatted with DateLayout.
func (a Attendance) Day() string {
	return a.Date.Format(DateLayout)
}

// MarkAttendanceRequest is the payload for setting a student's status on a day.
type MarkAttendanceRequest struct {
	StudentID string  `json:"student_id" validate:"required,uuid"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
	// Class scopes the summary returned after the mark.
	Class string `json:"class,omitempty" validate:"omitempty,max=64"`
}

// DateRange is an inclusive span of days.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s", raw, DateLayout)
	}
	return t, nil
}

// Today returns now's UTC day at midnight.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthToDate returns the range from the first of now's month to now's day.
func MonthToDate(now time.Time) DateRange {
	today := Today(now)
	return DateRange{
		From: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:   today,
	}
}
