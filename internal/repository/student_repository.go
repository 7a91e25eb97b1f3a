package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skoolhq/sms-portal-api/internal/models"
	"github.com/skoolhq/sms-portal-api/pkg/database"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

const studentColumns = `id, full_name, father_name, gender, class, semester, roll_number, registration_number,
	subjects, phone, email, address, profile_photo, fee_status, fee_paid, fee_total, attendance,
	admission_date, comments, password_hash, created_at, updated_at, synced`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters plus the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Class != "" {
		conditions = append(conditions, "class = ?")
		args = append(args, filter.Class)
	}
	if filter.FeeStatus != "" {
		conditions = append(conditions, "fee_status = ?")
		args = append(args, filter.FeeStatus)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(LOWER(full_name) LIKE ? OR LOWER(roll_number) LIKE ? OR LOWER(email) LIKE ?)")
		needle := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, needle, needle, needle)
	}

	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"full_name":   "full_name",
		"roll_number": "roll_number",
		"class":       "class",
		"attendance":  "attendance",
		"created_at":  "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d",
		studentColumns, where, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(countQuery), args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll returns every student in insertion order.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students ORDER BY created_at ASC, id ASC", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = ?", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByEmail fetches a student through the unique email index.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE email = ?", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, r.db.Rebind(query), email); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByRoll fetches a student through the unique roll-number index.
func (r *StudentRepository) FindByRoll(ctx context.Context, rollNumber string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE roll_number = ?", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, r.db.Rebind(query), rollNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByEmail checks whether a student with the email exists, optionally
// excluding an ID so updates can keep their own address.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

// ExistsByRoll checks whether a student with the roll number exists,
// optionally excluding an ID.
func (r *StudentRepository) ExistsByRoll(ctx context.Context, rollNumber string, excludeID string) (bool, error) {
	return r.exists(ctx, "roll_number", rollNumber, excludeID)
}

func (r *StudentRepository) exists(ctx context.Context, column, value, excludeID string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM students WHERE %s = ?", column)
	args := []interface{}{value}
	if excludeID != "" {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(query+" LIMIT 1"), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student %s: %w", column, err)
	}
	return true, nil
}

// Create inserts a new student record. Unique index violations surface as
// DUPLICATE_KEY so a failed create never leaves a partial write.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students
		(id, full_name, father_name, gender, class, semester, roll_number, registration_number, subjects,
		 phone, email, address, profile_photo, fee_status, fee_paid, fee_total, attendance, admission_date,
		 comments, password_hash, created_at, updated_at, synced)
		VALUES (:id, :full_name, :father_name, :gender, :class, :semester, :roll_number, :registration_number, :subjects,
		 :phone, :email, :address, :profile_photo, :fee_status, :fee_paid, :fee_total, :attendance, :admission_date,
		 :comments, :password_hash, :created_at, :updated_at, :synced)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if database.IsUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrDuplicateKey.Code, appErrors.ErrDuplicateKey.Status, "roll number or email already in use")
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update writes the full row for an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET full_name = :full_name, father_name = :father_name, gender = :gender,
		class = :class, semester = :semester, roll_number = :roll_number, registration_number = :registration_number,
		subjects = :subjects, phone = :phone, email = :email, address = :address, profile_photo = :profile_photo,
		fee_status = :fee_status, fee_paid = :fee_paid, fee_total = :fee_total, attendance = :attendance,
		admission_date = :admission_date, comments = :comments, password_hash = :password_hash,
		updated_at = :updated_at, synced = :synced WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if database.IsUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrDuplicateKey.Code, appErrors.ErrDuplicateKey.Status, "roll number or email already in use")
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student. Deleting an absent ID is not an error; there is
// nothing to do for a vanished record.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM students WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// MarkAllSynced flips the synced flag on every student, invoked after a
// successful sync queue drain.
func (r *StudentRepository) MarkAllSynced(ctx context.Context) error {
	query := r.db.Rebind(`UPDATE students SET synced = ? WHERE synced = ?`)
	if _, err := r.db.ExecContext(ctx, query, true, false); err != nil {
		return fmt.Errorf("mark students synced: %w", err)
	}
	return nil
}

// Count returns the student collection cardinality.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}
