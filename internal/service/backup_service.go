package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/skoolhq/sms-portal-api/internal/models"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

type backupStudentRepository interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type backupAdminRepository interface {
	List(ctx context.Context) ([]models.Admin, error)
}

type backupNotificationRepository interface {
	ListAll(ctx context.Context) ([]models.Notification, error)
}

type backupReplacer interface {
	ReplaceStudentsAndNotifications(ctx context.Context, students []models.Student, notifications []models.Notification) error
}

// BackupService produces and consumes the single-document export format.
// Import is destructive-replace for students and notifications; the admin
// collection is never modified by an import.
type BackupService struct {
	students      backupStudentRepository
	admins        backupAdminRepository
	notifications backupNotificationRepository
	replacer      backupReplacer
	logger        *zap.Logger
}

// NewBackupService constructs the backup service.
func NewBackupService(students backupStudentRepository, admins backupAdminRepository, notifications backupNotificationRepository, replacer backupReplacer, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{students: students, admins: admins, notifications: notifications, replacer: replacer, logger: logger}
}

// Export snapshots the three record collections into one document.
func (s *BackupService) Export(ctx context.Context) (*models.BackupDocument, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read students")
	}
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read admins")
	}
	notifications, err := s.notifications.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read notifications")
	}

	return &models.BackupDocument{
		Version:       models.BackupVersion,
		ExportedAt:    time.Now().UTC(),
		Students:      students,
		Admins:        admins,
		Notifications: notifications,
	}, nil
}

// Import parses and validates the document, then replaces the student and
// notification collections. A malformed document fails with INVALID_FORMAT
// before anything is written.
func (s *BackupService) Import(ctx context.Context, raw []byte) error {
	var doc models.BackupDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidFormat.Code, appErrors.ErrInvalidFormat.Status, "backup document is not valid JSON")
	}
	if doc.Version <= 0 {
		return appErrors.Clone(appErrors.ErrInvalidFormat, "backup document is missing its version")
	}
	if doc.Students == nil {
		return appErrors.Clone(appErrors.ErrInvalidFormat, "backup document is missing its students")
	}

	if err := s.replacer.ReplaceStudentsAndNotifications(ctx, doc.Students, doc.Notifications); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import backup")
	}

	s.logger.Info("backup imported",
		zap.Int("students", len(doc.Students)),
		zap.Int("notifications", len(doc.Notifications)),
	)
	return nil
}
