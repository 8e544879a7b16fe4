package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentRowColumns = []string{"id", "student_id", "name", "class", "created_at", "user_id"}

func TestStudentRepositoryListByOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("s1", "NIS-1", "Ayu", "7A", now, "owner").
		AddRow("s2", "NIS-2", "Budi", "7B", now, "owner")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, name, class, created_at, user_id FROM students WHERE user_id = $1 ORDER BY name ASC, id ASC")).
		WithArgs("owner").
		WillReturnRows(rows)

	students, err := repo.ListByOwner(context.Background(), "owner")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Ayu", students[0].Name)
	assert.Equal(t, "7B", students[1].Class)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListByOwnerEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students WHERE user_id").WillReturnRows(sqlmock.NewRows(studentRowColumns))

	students, err := repo.ListByOwner(context.Background(), "owner")
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1 AND user_id = $2")).
		WithArgs("s9", "owner").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "owner", "s9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByStudentID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE user_id = $1 AND student_id = $2 LIMIT 1")).
		WithArgs("owner", "NIS-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE user_id = $1 AND student_id = $2 LIMIT 1")).
		WithArgs("owner", "NIS-2").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByStudentID(context.Background(), "owner", "NIS-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByStudentID(context.Background(), "owner", "NIS-2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "NIS-1", "Ayu", "7A", sqlmock.AnyArg(), "owner").
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := models.NewStudent(" NIS-1 ", "Ayu", "7A", "owner")
	require.NoError(t, repo.Create(context.Background(), &student))
	assert.NotEmpty(t, student.ID)
	assert.False(t, student.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
