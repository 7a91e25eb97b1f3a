package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skoolhq/sms-portal-api/internal/models"
)

func TestSyncQueueRepositoryEnqueueMarshalsPayload(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSyncQueueRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_queue")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry, err := repo.Enqueue(context.Background(), models.SyncOpCreate, models.CollectionStudents, map[string]string{"id": "s1"})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, models.SyncOpCreate, entry.Op)
	assert.Equal(t, models.CollectionStudents, entry.Collection)
	assert.False(t, entry.EnqueuedAt.IsZero())

	var payload map[string]string
	require.NoError(t, json.Unmarshal(entry.Payload, &payload))
	assert.Equal(t, "s1", payload["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncQueueRepositoryEnqueueRejectsUnmarshalablePayload(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSyncQueueRepository(db)
	_, err := repo.Enqueue(context.Background(), models.SyncOpCreate, models.CollectionStudents, make(chan int))
	require.Error(t, err)
}

func TestSyncQueueRepositoryListReturnsFIFO(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSyncQueueRepository(db)
	first := time.Now().Add(-time.Minute)
	rows := sqlmock.NewRows([]string{"id", "op", "collection", "payload", "enqueued_at"}).
		AddRow("e1", "create", "students", []byte(`{}`), first).
		AddRow("e2", "update", "students", []byte(`{}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY enqueued_at ASC, id ASC")).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, models.SyncOpUpdate, entries[1].Op)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncQueueRepositoryDeleteAndCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSyncQueueRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sync_queue WHERE id = ?")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sync_queue")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	require.NoError(t, repo.Delete(context.Background(), "e1"))
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
