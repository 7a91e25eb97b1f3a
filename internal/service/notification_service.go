package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skoolhq/sms-portal-api/internal/models"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) (bool, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// CreateNotificationRequest holds payload for directing a message at a
// student.
type CreateNotificationRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Message   string `json:"message"`
}

// NotificationService manages per-student notifications. Records are only
// ever mutated to flip the read flag and are never deleted in normal flow.
type NotificationService struct {
	repo      notificationRepository
	students  studentFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs the notification service.
func NewNotificationService(repo notificationRepository, students studentFinder, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, students: students, validator: validate, logger: logger}
}

// Create records a notification for an existing student.
func (s *NotificationService) Create(ctx context.Context, req CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	notification := &models.Notification{
		StudentID: req.StudentID,
		Title:     req.Title,
		Message:   req.Message,
		Read:      false,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	return notification, nil
}

// ListByStudent returns a student's notifications, newest first.
func (s *NotificationService) ListByStudent(ctx context.Context, studentID string) ([]models.Notification, error) {
	notifications, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flips the read flag on one notification.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	updated, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	if !updated {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

// MarkReadFor flips the read flag only when the notification is addressed to
// the given student. A notification owned by someone else reads as missing.
func (s *NotificationService) MarkReadFor(ctx context.Context, id, studentID string) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if notification.StudentID != studentID {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return s.MarkRead(ctx, id)
}
