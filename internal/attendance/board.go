package attendance

import (
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
)

// Board is a snapshot of one day's roster and marks. Transitions return a
// new Board and never modify the receiver.
type Board struct {
	Date      time.Time                    `json:"-"`
	Students  []models.Student             `json:"-"`
	Day       map[string]models.Attendance `json:"-"`
	Filter    Filter                       `json:"-"`
	Anomalies []Anomaly                    `json:"-"`
}

// NewBoard indexes the day's records for students.
func NewBoard(date time.Time, students []models.Student, records []models.Attendance, filter Filter) Board {
	day, anomalies := IndexDay(records)
	return Board{
		Date:      date,
		Students:  students,
		Day:       day,
		Filter:    filter,
		Anomalies: anomalies,
	}
}

// WithFilter returns a copy of b using filter.
func (b Board) WithFilter(filter Filter) Board {
	b.Filter = filter
	return b
}

// Visible lists the students the roster view shows, matching search against
// class labels too.
func (b Board) Visible() []models.Student {
	filter := b.Filter
	filter.MatchClass = true
	return filter.Apply(b.Students)
}

// Summary counts marks for the board's class scope.
func (b Board) Summary() (DailySummary, []Anomaly) {
	summary, anomalies := Summarize(b.Students, b.Day, b.Filter.Class)
	summary.Date = b.Date.Format(models.DateLayout)
	return summary, anomalies
}

// Status returns the student's mark on the board's day, if any.
func (b Board) Status(studentID string) (models.AttendanceStatus, bool) {
	record, ok := b.Day[studentID]
	return record.Status, ok
}

// Decide resolves a mark for the board's day.
func (b Board) Decide(in MarkInput) (Decision, error) {
	if !sameDay(in.Date, b.Date) {
		return Decision{}, ErrDayMismatch
	}
	return Decide(in, b.Day)
}

// Apply folds a decision whose write has succeeded into a new board.
func (b Board) Apply(decision Decision) Board {
	day := make(map[string]models.Attendance, len(b.Day)+1)
	for id, record := range b.Day {
		day[id] = record
	}
	day[decision.Record.StudentID] = decision.Record
	b.Day = day
	return b
}
