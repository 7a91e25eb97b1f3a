package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skoolhq/sms-portal-api/internal/models"
)

const notificationColumns = `id, student_id, title, message, read, created_at`

// NotificationRepository manages persistence for student notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, student_id, title, message, read, created_at)
		VALUES (:id, :student_id, :title, :message, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// FindByID fetches a notification by ID.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	query := fmt.Sprintf("SELECT %s FROM notifications WHERE id = ?", notificationColumns)
	var notification models.Notification
	if err := r.db.GetContext(ctx, &notification, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListByStudent returns a student's notifications, newest first.
func (r *NotificationRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Notification, error) {
	query := fmt.Sprintf("SELECT %s FROM notifications WHERE student_id = ? ORDER BY created_at DESC, id ASC", notificationColumns)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, r.db.Rebind(query), studentID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// ListAll returns every notification in insertion order.
func (r *NotificationRepository) ListAll(ctx context.Context) ([]models.Notification, error) {
	query := fmt.Sprintf("SELECT %s FROM notifications ORDER BY created_at ASC, id ASC", notificationColumns)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query); err != nil {
		return nil, fmt.Errorf("list all notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flips the read flag. It reports whether a row was updated so the
// service can surface NOT_FOUND for a vanished notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE notifications SET read = ? WHERE id = ?`), true, id)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return affected > 0, nil
}
