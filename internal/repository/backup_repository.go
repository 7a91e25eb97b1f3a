package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/skoolhq/sms-portal-api/internal/models"
)

// BackupRepository reads and replaces whole collections for export/import.
// Import is destructive-replace for students and notifications only; the
// admins table is never touched, so a bad backup cannot lock every
// administrator out.
type BackupRepository struct {
	db *sqlx.DB
}

// NewBackupRepository constructs a BackupRepository.
func NewBackupRepository(db *sqlx.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

// ReplaceStudentsAndNotifications clears both collections and bulk-inserts
// the provided records inside one transaction, so a failed import leaves the
// store unchanged.
func (r *BackupRepository) ReplaceStudentsAndNotifications(ctx context.Context, students []models.Student, notifications []models.Notification) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notifications`); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("clear students: %w", err)
	}

	const insertStudent = `INSERT INTO students
		(id, full_name, father_name, gender, class, semester, roll_number, registration_number, subjects,
		 phone, email, address, profile_photo, fee_status, fee_paid, fee_total, attendance, admission_date,
		 comments, password_hash, created_at, updated_at, synced)
		VALUES (:id, :full_name, :father_name, :gender, :class, :semester, :roll_number, :registration_number, :subjects,
		 :phone, :email, :address, :profile_photo, :fee_status, :fee_paid, :fee_total, :attendance, :admission_date,
		 :comments, :password_hash, :created_at, :updated_at, :synced)`
	for i := range students {
		if _, err := tx.NamedExecContext(ctx, insertStudent, &students[i]); err != nil {
			return fmt.Errorf("import student %s: %w", students[i].ID, err)
		}
	}

	const insertNotification = `INSERT INTO notifications (id, student_id, title, message, read, created_at)
		VALUES (:id, :student_id, :title, :message, :read, :created_at)`
	for i := range notifications {
		if _, err := tx.NamedExecContext(ctx, insertNotification, &notifications[i]); err != nil {
			return fmt.Errorf("import notification %s: %w", notifications[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
