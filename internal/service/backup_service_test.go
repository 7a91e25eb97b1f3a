package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skoolhq/sms-portal-api/internal/models"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

type mockNotificationLister struct {
	notifications []models.Notification
}

func (m *mockNotificationLister) ListAll(ctx context.Context) ([]models.Notification, error) {
	return m.notifications, nil
}

type mockReplacer struct {
	students      []models.Student
	notifications []models.Notification
	calls         int
}

func (m *mockReplacer) ReplaceStudentsAndNotifications(ctx context.Context, students []models.Student, notifications []models.Notification) error {
	m.calls++
	m.students = students
	m.notifications = notifications
	return nil
}

func TestBackupServiceExportSnapshotsAllCollections(t *testing.T) {
	students := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", FullName: "Ahmed Ali", PasswordHash: "hash"},
	}}
	admins := &mockAdminRepo{admins: map[string]models.Admin{
		"a1": {ID: "a1", Email: "admin@school.com"},
	}}
	notifications := &mockNotificationLister{notifications: []models.Notification{{ID: "n1", StudentID: "s1"}}}
	svc := NewBackupService(students, admins, notifications, &mockReplacer{}, nil)

	doc, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.BackupVersion, doc.Version)
	assert.Len(t, doc.Students, 1)
	assert.Len(t, doc.Admins, 1)
	assert.Len(t, doc.Notifications, 1)
	// Hashes travel with the backup so a restore keeps credentials working.
	assert.Equal(t, "hash", doc.Students[0].PasswordHash)
}

func TestBackupServiceImportRejectsMalformedJSON(t *testing.T) {
	replacer := &mockReplacer{}
	svc := NewBackupService(&mockStudentRepo{}, &mockAdminRepo{}, &mockNotificationLister{}, replacer, nil)

	err := svc.Import(context.Background(), []byte("{not json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidFormat)
	assert.Zero(t, replacer.calls)
}

func TestBackupServiceImportRejectsMissingVersion(t *testing.T) {
	replacer := &mockReplacer{}
	svc := NewBackupService(&mockStudentRepo{}, &mockAdminRepo{}, &mockNotificationLister{}, replacer, nil)

	err := svc.Import(context.Background(), []byte(`{"students":[]}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidFormat)
	assert.Zero(t, replacer.calls)
}

func TestBackupServiceImportRejectsMissingStudents(t *testing.T) {
	replacer := &mockReplacer{}
	svc := NewBackupService(&mockStudentRepo{}, &mockAdminRepo{}, &mockNotificationLister{}, replacer, nil)

	err := svc.Import(context.Background(), []byte(`{"version":1}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidFormat)
	assert.Zero(t, replacer.calls)
}

func TestBackupServiceImportReplacesCollections(t *testing.T) {
	replacer := &mockReplacer{}
	svc := NewBackupService(&mockStudentRepo{}, &mockAdminRepo{}, &mockNotificationLister{}, replacer, nil)

	doc := models.BackupDocument{
		Version:       models.BackupVersion,
		Students:      []models.Student{{ID: "s1", FullName: "Ahmed Ali"}},
		Notifications: []models.Notification{{ID: "n1", StudentID: "s1"}},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	require.NoError(t, svc.Import(context.Background(), raw))
	assert.Equal(t, 1, replacer.calls)
	require.Len(t, replacer.students, 1)
	assert.Equal(t, "s1", replacer.students[0].ID)
	require.Len(t, replacer.notifications, 1)
}

func TestBackupServiceRoundTrip(t *testing.T) {
	students := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", FullName: "Ahmed Ali", Email: "ahmed@school.com", PasswordHash: "hash", Subjects: models.StringList{"Math", "Physics"}},
	}}
	admins := &mockAdminRepo{admins: map[string]models.Admin{"a1": {ID: "a1"}}}
	notifications := &mockNotificationLister{}
	replacer := &mockReplacer{}
	svc := NewBackupService(students, admins, notifications, replacer, nil)

	doc, err := svc.Export(context.Background())
	require.NoError(t, err)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	require.NoError(t, svc.Import(context.Background(), raw))
	require.Len(t, replacer.students, 1)
	assert.Equal(t, "hash", replacer.students[0].PasswordHash)
	assert.Equal(t, models.StringList{"Math", "Physics"}, replacer.students[0].Subjects)
}
