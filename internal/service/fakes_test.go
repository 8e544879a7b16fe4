package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type fakeStudentRepo struct {
	students  []models.Student
	listErr   error
	createErr error
	listCalls int
}

func (f *fakeStudentRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Student, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Student, 0)
	for _, s := range f.students {
		if s.UserID == ownerID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, ownerID, id string) (*models.Student, error) {
	for _, s := range f.students {
		if s.ID == id && s.UserID == ownerID {
			student := s
			return &student, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) ExistsByStudentID(ctx context.Context, ownerID, studentID string) (bool, error) {
	for _, s := range f.students {
		if s.UserID == ownerID && s.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if f.createErr != nil {
		return f.createErr
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.CreatedAt = time.Now()
	f.students = append(f.students, *student)
	return nil
}

type fakeAttendanceRepo struct {
	records   []models.Attendance
	students  *fakeStudentRepo
	listErr   error
	insertErr error
	updateErr error
	inserts   int
	updates   int
}

func (f *fakeAttendanceRepo) owned(ownerID, studentID string) bool {
	if f.students == nil {
		return true
	}
	_, err := f.students.FindByID(context.Background(), ownerID, studentID)
	return err == nil
}

func (f *fakeAttendanceRepo) ListByDate(ctx context.Context, ownerID string, date time.Time) ([]models.Attendance, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Attendance, 0)
	for _, r := range f.records {
		if r.Day() == date.Format(models.DateLayout) && f.owned(ownerID, r.StudentID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByRange(ctx context.Context, ownerID string, rng models.DateRange, studentID string) ([]models.Attendance, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Attendance, 0)
	for _, r := range f.records {
		if r.Date.Before(rng.From) || r.Date.After(rng.To) || !f.owned(ownerID, r.StudentID) {
			continue
		}
		if studentID != "" && r.StudentID != studentID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeAttendanceRepo) Insert(ctx context.Context, record *models.Attendance) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserts++
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeAttendanceRepo) UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.updates++
			f.records[i].Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeCacheRepo struct {
	entries     map[string]interface{}
	deleted     []string
	getErr      error
	deleteErr   error
	deleteCalls int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: make(map[string]interface{})}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if f.getErr != nil {
		return f.getErr
	}
	value, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	assignCached(value, dest)
	return nil
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.entries[key] = value
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
			f.deleted = append(f.deleted, key)
		}
	}
	return nil
}

// assignCached copies a stored value into dest the way a JSON cache would.
func assignCached(value, dest interface{}) {
	raw, _ := json.Marshal(value)
	_ = json.Unmarshal(raw, dest)
}

func errSQLNoRows() error { return sql.ErrNoRows }
