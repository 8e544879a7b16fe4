package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

func newStudentFixture() (*StudentService, *fakeStudentRepo, *fakeCacheRepo) {
	repo := &fakeStudentRepo{students: []models.Student{
		{ID: "s2", StudentID: "NIS-2", Name: "Budi", Class: "7B", UserID: "owner"},
		{ID: "s1", StudentID: "NIS-1", Name: "Ayu", Class: "7A", UserID: "owner"},
		{ID: "s3", StudentID: "NIS-3", Name: "Citra", Class: "7A", UserID: "other"},
	}}
	cacheRepo := newFakeCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	return NewStudentService(repo, cache, validator.New(), zap.NewNop()), repo, cacheRepo
}

func TestStudentServiceListScopesAndFilters(t *testing.T) {
	svc, _, _ := newStudentFixture()

	students, err := svc.List(context.Background(), "owner", models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Ayu", students[0].Name)

	students, err = svc.List(context.Background(), "owner", models.StudentFilter{Search: "7b"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "s2", students[0].ID)

	students, err = svc.List(context.Background(), "owner", models.StudentFilter{Class: "7a"})
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestStudentServiceListErrors(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	_, err := svc.List(context.Background(), "", models.StudentFilter{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
	assert.Zero(t, repo.listCalls)

	repo.listErr = errors.New("down")
	_, err = svc.List(context.Background(), "owner", models.StudentFilter{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))
}

func TestStudentServiceClasses(t *testing.T) {
	svc, _, _ := newStudentFixture()

	classes, err := svc.Classes(context.Background(), "owner")
	require.NoError(t, err)
	assert.Equal(t, []string{"7A", "7B"}, classes)
}

func TestStudentServiceCreate(t *testing.T) {
	svc, repo, cacheRepo := newStudentFixture()
	cacheRepo.entries[OwnerKey("owner", "report", "x")] = "stale"

	student, err := svc.Create(context.Background(), "owner", models.CreateStudentRequest{StudentID: " NIS-9 ", Name: "Dewi", Class: "7C"})
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, "NIS-9", student.StudentID)
	assert.Equal(t, "owner", student.UserID)
	assert.Len(t, repo.students, 4)
	assert.Empty(t, cacheRepo.entries)
}

func TestStudentServiceCreateRejects(t *testing.T) {
	svc, repo, cacheRepo := newStudentFixture()

	_, err := svc.Create(context.Background(), "owner", models.CreateStudentRequest{StudentID: "NIS-1", Name: "Dup", Class: "7A"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))

	_, err = svc.Create(context.Background(), "other", models.CreateStudentRequest{StudentID: "NIS-1", Name: "Same id, other owner", Class: "7A"})
	assert.NoError(t, err)

	_, err = svc.Create(context.Background(), "owner", models.CreateStudentRequest{StudentID: "NIS-5", Name: "   ", Class: "7A"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Create(context.Background(), "", models.CreateStudentRequest{StudentID: "NIS-5", Name: "X", Class: "7A"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))

	repo.createErr = errors.New("insert failed")
	deletesBefore := cacheRepo.deleteCalls
	_, err = svc.Create(context.Background(), "owner", models.CreateStudentRequest{StudentID: "NIS-6", Name: "Eka", Class: "7A"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))
	assert.Equal(t, deletesBefore, cacheRepo.deleteCalls)
}
