package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skoolhq/sms-portal-api/internal/models"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

type mockDrainQueue struct {
	entries []models.SyncQueueEntry
}

func (m *mockDrainQueue) List(ctx context.Context) ([]models.SyncQueueEntry, error) {
	out := make([]models.SyncQueueEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *mockDrainQueue) Delete(ctx context.Context, id string) error {
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockDrainQueue) Count(ctx context.Context) (int, error) {
	return len(m.entries), nil
}

type mockSyncedMarker struct {
	marked int
}

func (m *mockSyncedMarker) MarkAllSynced(ctx context.Context) error {
	m.marked++
	return nil
}

type scriptedEndpoint struct {
	pushed  []string
	failOn  string
	failErr error
}

func (s *scriptedEndpoint) Push(ctx context.Context, entry models.SyncQueueEntry) error {
	if s.failOn != "" && entry.ID == s.failOn {
		return s.failErr
	}
	s.pushed = append(s.pushed, entry.ID)
	return nil
}

func queuedEntries(ids ...string) []models.SyncQueueEntry {
	out := make([]models.SyncQueueEntry, len(ids))
	for i, id := range ids {
		out[i] = models.SyncQueueEntry{ID: id, Op: models.SyncOpCreate, Collection: models.CollectionStudents}
	}
	return out
}

func TestSyncServiceDrainOfflineFailsFast(t *testing.T) {
	queue := &mockDrainQueue{entries: queuedEntries("e1", "e2")}
	endpoint := &scriptedEndpoint{}
	marker := &mockSyncedMarker{}
	svc := NewSyncService(queue, marker, fixedConnectivity(false), endpoint, nil)

	err := svc.Drain(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrOffline)
	assert.Empty(t, endpoint.pushed)
	assert.Len(t, queue.entries, 2)
	assert.Zero(t, marker.marked)
}

func TestSyncServiceDrainPushesInOrderAndMarksSynced(t *testing.T) {
	queue := &mockDrainQueue{entries: queuedEntries("e1", "e2", "e3")}
	endpoint := &scriptedEndpoint{}
	marker := &mockSyncedMarker{}
	svc := NewSyncService(queue, marker, fixedConnectivity(true), endpoint, nil)

	require.NoError(t, svc.Drain(context.Background()))
	assert.Equal(t, []string{"e1", "e2", "e3"}, endpoint.pushed)
	assert.Empty(t, queue.entries)
	assert.Equal(t, 1, marker.marked)
}

func TestSyncServiceDrainStopsOnPushFailureAndResumes(t *testing.T) {
	queue := &mockDrainQueue{entries: queuedEntries("e1", "e2", "e3")}
	endpoint := &scriptedEndpoint{failOn: "e2", failErr: errors.New("remote unreachable")}
	marker := &mockSyncedMarker{}
	svc := NewSyncService(queue, marker, fixedConnectivity(true), endpoint, nil)

	err := svc.Drain(context.Background())
	require.Error(t, err)
	// e1 was delivered and dequeued; e2 and e3 survive for the next attempt.
	assert.Equal(t, []string{"e1"}, endpoint.pushed)
	require.Len(t, queue.entries, 2)
	assert.Equal(t, "e2", queue.entries[0].ID)
	assert.Zero(t, marker.marked)

	endpoint.failOn = ""
	require.NoError(t, svc.Drain(context.Background()))
	assert.Equal(t, []string{"e1", "e2", "e3"}, endpoint.pushed)
	assert.Empty(t, queue.entries)
	assert.Equal(t, 1, marker.marked)
}

func TestSyncServiceStatus(t *testing.T) {
	queue := &mockDrainQueue{entries: queuedEntries("e1", "e2")}
	svc := NewSyncService(queue, &mockSyncedMarker{}, fixedConnectivity(false), &scriptedEndpoint{}, nil)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Online)
	assert.Equal(t, 2, status.Pending)
}
