package models

import (
	"strings"
	"time"
)

// Student is a roster entry owned by a single user.
type Student struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Name      string    `db:"name" json:"name"`
	Class     string    `db:"class" json:"class"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UserID    string    `db:"user_id" json:"user_id"`
}

// NewStudent builds a roster entry from the fields a user supplies.
// ID and CreatedAt are assigned on insert.
func NewStudent(studentID, name, class, ownerID string) Student {
	return Student{
		StudentID: strings.TrimSpace(studentID),
		Name:      strings.TrimSpace(name),
		Class:     strings.TrimSpace(class),
		UserID:    ownerID,
	}
}

// CreateStudentRequest is the payload accepted when adding a student.
type CreateStudentRequest struct {
	StudentID string `json:"student_id" validate:"required,max=64"`
	Name      string `json:"name" validate:"required,max=255"`
	Class     string `json:"class" validate:"required,max=64"`
}

// StudentFilter narrows a roster listing.
type StudentFilter struct {
	Search string
	Class  string
}
