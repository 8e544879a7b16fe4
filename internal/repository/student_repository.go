package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
)

const studentColumns = `id, student_id, name, class, created_at, user_id`

// StudentRepository manages persistence for roster entries.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByOwner returns the owner's roster ordered by name.
func (r *StudentRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE user_id = $1 ORDER BY name ASC, id ASC`
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query, ownerID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches one of the owner's students by internal id.
func (r *StudentRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 AND user_id = $2`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ExistsByStudentID reports whether the owner already uses studentID.
func (r *StudentRepository) ExistsByStudentID(ctx context.Context, ownerID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE user_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, ownerID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student id: %w", err)
	}
	return true, nil
}

// Create inserts a new student, assigning its id and creation time.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, student_id, name, class, created_at, user_id)
        VALUES (:id, :student_id, :name, :class, :created_at, :user_id)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}
