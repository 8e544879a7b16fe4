package attendance

import (
	"errors"
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
)

var (
	// ErrNoSession is returned when nobody is signed in to record the mark.
	ErrNoSession = errors.New("attendance: no active session")
	// ErrInvalidStatus is returned for statuses other than present, absent or late.
	ErrInvalidStatus = errors.New("attendance: invalid status")
	// ErrDayMismatch is returned when the day map holds a record for another date.
	ErrDayMismatch = errors.New("attendance: record belongs to a different day")
)

// Action is the write a mark resolves to.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
)

// MarkInput is a request to set one student's status for one day.
type MarkInput struct {
	StudentID string
	Date      time.Time
	Status    models.AttendanceStatus
	Notes     *string
	// Actor is the signed-in user recording the mark.
	Actor string
}

// Decision is the write that brings the store in line with a mark.
type Decision struct {
	Action   Action            `json:"action"`
	RecordID string            `json:"record_id,omitempty"`
	Record   models.Attendance `json:"record"`
}

// Decide resolves a mark against the day's existing records. An existing
// record for the student is updated in place, whatever its status; otherwise
// a new record is inserted with the actor as recorder.
func Decide(in MarkInput, day map[string]models.Attendance) (Decision, error) {
	if in.Actor == "" {
		return Decision{}, ErrNoSession
	}
	if !in.Status.Valid() {
		return Decision{}, ErrInvalidStatus
	}

	if existing, ok := day[in.StudentID]; ok {
		if !sameDay(existing.Date, in.Date) {
			return Decision{}, ErrDayMismatch
		}
		existing.Status = in.Status
		return Decision{Action: ActionUpdate, RecordID: existing.ID, Record: existing}, nil
	}

	return Decision{
		Action: ActionInsert,
		Record: models.Attendance{
			StudentID: in.StudentID,
			Date:      in.Date,
			Status:    in.Status,
			Notes:     in.Notes,
			CreatedBy: in.Actor,
		},
	}, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format(models.DateLayout) == b.Format(models.DateLayout)
}
