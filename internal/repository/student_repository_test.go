package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skoolhq/sms-portal-api/internal/models"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows(students ...models.Student) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "full_name", "father_name", "gender", "class", "semester", "roll_number",
		"registration_number", "subjects", "phone", "email", "address", "profile_photo",
		"fee_status", "fee_paid", "fee_total", "attendance", "admission_date", "comments",
		"password_hash", "created_at", "updated_at", "synced",
	})
	for _, s := range students {
		rows.AddRow(s.ID, s.FullName, s.FatherName, s.Gender, s.Class, s.Semester, s.RollNumber,
			s.RegistrationNumber, `["Math"]`, s.Phone, s.Email, s.Address, s.ProfilePhoto,
			s.FeeStatus, s.FeePaid, s.FeeTotal, s.Attendance, s.AdmissionDate, s.Comments,
			s.PasswordHash, s.CreatedAt, s.UpdatedAt, s.Synced)
	}
	return rows
}

func TestStudentRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name")).
		WithArgs("10th", "%ahmed%", "%ahmed%", "%ahmed%").
		WillReturnRows(studentRows(models.Student{ID: "s1", FullName: "Ahmed Ali", Class: "10th"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WithArgs("10th", "%ahmed%", "%ahmed%", "%ahmed%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{
		Class:  "10th",
		Search: "Ahmed",
	})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.StringList{"Math"}, students[0].Subjects)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListAllPreservesInsertionOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	earlier := time.Now().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC, id ASC")).
		WillReturnRows(studentRows(
			models.Student{ID: "s1", CreatedAt: earlier},
			models.Student{ID: "s2", CreatedAt: time.Now()},
		))

	students, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "s1", students[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateTranslatesUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnError(sqlite3.Error{
			Code:         sqlite3.ErrConstraint,
			ExtendedCode: sqlite3.ErrConstraintUnique,
		})

	err := repo.Create(context.Background(), &models.Student{FullName: "Ahmed Ali", Email: "ahmed@school.com", RollNumber: "STU-001"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDuplicateKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateAssignsIDAndTimestamps(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{FullName: "Ahmed Ali", Email: "ahmed@school.com", RollNumber: "STU-001"}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.False(t, student.CreatedAt.IsZero())
	assert.False(t, student.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE email = ?")).
		WithArgs("ahmed@school.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	taken, err := repo.ExistsByEmail(context.Background(), "ahmed@school.com", "")
	require.NoError(t, err)
	assert.True(t, taken)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE email = ? AND id <> ?")).
		WithArgs("ahmed@school.com", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	taken, err = repo.ExistsByEmail(context.Background(), "ahmed@school.com", "s1")
	require.NoError(t, err)
	assert.False(t, taken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryMarkAllSynced(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET synced = ? WHERE synced = ?")).
		WithArgs(true, false).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.MarkAllSynced(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = ?")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "s1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
