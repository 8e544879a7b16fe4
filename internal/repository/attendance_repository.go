package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
)

const attendanceSelect = `SELECT a.id, a.student_id, a.date, a.status, a.notes, a.created_at, a.created_by
FROM attendances a
JOIN students s ON s.id = a.student_id`

// AttendanceRepository persists daily attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByDate returns every mark on date for the owner's students, oldest first,
// so a later duplicate overrides an earlier one when indexed.
func (r *AttendanceRepository) ListByDate(ctx context.Context, ownerID string, date time.Time) ([]models.Attendance, error) {
	query := attendanceSelect + `
WHERE s.user_id = $1 AND a.date = $2
ORDER BY a.created_at ASC, a.id ASC`
	records := make([]models.Attendance, 0)
	if err := r.db.SelectContext(ctx, &records, query, ownerID, date); err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	return records, nil
}

// ListByRange returns marks between from and to inclusive, optionally for one student.
func (r *AttendanceRepository) ListByRange(ctx context.Context, ownerID string, rng models.DateRange, studentID string) ([]models.Attendance, error) {
	query := attendanceSelect + `
WHERE s.user_id = $1 AND a.date >= $2 AND a.date <= $3`
	args := []interface{}{ownerID, rng.From, rng.To}
	if studentID != "" {
		query += fmt.Sprintf(" AND a.student_id = $%d", len(args)+1)
		args = append(args, studentID)
	}
	query += `
ORDER BY a.date ASC, a.created_at ASC, a.id ASC`

	records := make([]models.Attendance, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance by range: %w", err)
	}
	return records, nil
}

// Insert stores a new mark, assigning its id and creation time.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendances (id, student_id, date, status, notes, created_at, created_by)
VALUES (:id, :student_id, :date, :status, :notes, :created_at, :created_by)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// UpdateStatus overwrites the status of an existing mark. It returns
// sql.ErrNoRows when the record no longer exists.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus) error {
	const query = `UPDATE attendances SET status = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update attendance status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attendance status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
