package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type studentRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Student, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Student, error)
	ExistsByStudentID(ctx context.Context, ownerID, studentID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

// StudentService handles roster use-cases.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns the owner's roster narrowed by filter. Search also matches class labels.
func (s *StudentService) List(ctx context.Context, ownerID string, filter models.StudentFilter) ([]models.Student, error) {
	if ownerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	students, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("list students failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	roster := attendance.Filter{Search: filter.Search, Class: filter.Class, MatchClass: true}
	return roster.Apply(students), nil
}

// Classes returns the distinct class labels on the owner's roster.
func (s *StudentService) Classes(ctx context.Context, ownerID string) ([]string, error) {
	if ownerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	students, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("list students failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return attendance.Classes(students), nil
}

// Get returns one of the owner's students.
func (s *StudentService) Get(ctx context.Context, ownerID, id string) (*models.Student, error) {
	if ownerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	student, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create adds a student to the owner's roster. Student identifiers are unique per owner.
func (s *StudentService) Create(ctx context.Context, ownerID string, req models.CreateStudentRequest) (*models.Student, error) {
	if ownerID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	student := models.NewStudent(req.StudentID, req.Name, req.Class, ownerID)
	req = models.CreateStudentRequest{StudentID: student.StudentID, Name: student.Name, Class: student.Class}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	exists, err := s.repo.ExistsByStudentID(ctx, ownerID, student.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student id already exists")
	}

	if err := s.repo.Create(ctx, &student); err != nil {
		s.logger.Error("create student failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	// Failures are logged and counted; stale entries live until the TTL.
	_ = s.cache.InvalidateOwner(ctx, ownerID)
	return &student, nil
}
