package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skoolhq/sms-portal-api/internal/models"
)

func TestNotificationRepositoryCreateDefaultsIDAndTimestamp(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	notification := &models.Notification{StudentID: "s1", Title: "Fee Reminder"}
	require.NoError(t, repo.Create(context.Background(), notification))
	assert.NotEmpty(t, notification.ID)
	assert.False(t, notification.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListByStudentNewestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "title", "message", "read", "created_at"}).
		AddRow("n2", "s1", "Newer", "", false, time.Now()).
		AddRow("n1", "s1", "Older", "", true, time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id ASC")).
		WithArgs("s1").
		WillReturnRows(rows)

	notifications, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, "n2", notifications[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkReadReportsMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = ? WHERE id = ?")).
		WithArgs(true, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.MarkRead(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, updated)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = ? WHERE id = ?")).
		WithArgs(true, "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err = repo.MarkRead(context.Background(), "n1")
	require.NoError(t, err)
	assert.True(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}
