package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skoolhq/sms-portal-api/internal/models"
	"github.com/skoolhq/sms-portal-api/pkg/database"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

const adminColumns = `id, email, password_hash, name, created_at, updated_at`

// AdminRepository manages persistence for administrator accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// List returns every admin in insertion order.
func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins ORDER BY created_at ASC, id ASC", adminColumns)
	var admins []models.Admin
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// FindByID fetches an admin by ID.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins WHERE id = ?", adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByEmail fetches an admin through the unique email index.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins WHERE email = ?", adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, r.db.Rebind(query), email); err != nil {
		return nil, err
	}
	return &admin, nil
}

// ExistsByEmail checks whether an admin with the email exists, optionally
// excluding an ID.
func (r *AdminRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM admins WHERE email = ?"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(query+" LIMIT 1"), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check admin email: %w", err)
	}
	return true, nil
}

// Create inserts a new admin record.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now
	const query = `INSERT INTO admins (id, email, password_hash, name, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		if database.IsUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrDuplicateKey.Code, appErrors.ErrDuplicateKey.Status, "admin email already in use")
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// Update writes the full row for an existing admin.
func (r *AdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	admin.UpdatedAt = time.Now().UTC()
	const query = `UPDATE admins SET email = :email, password_hash = :password_hash, name = :name,
		updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		if database.IsUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrDuplicateKey.Code, appErrors.ErrDuplicateKey.Status, "admin email already in use")
		}
		return fmt.Errorf("update admin: %w", err)
	}
	return nil
}

// Delete removes an admin. The last-admin guard lives in the service layer,
// which checks cardinality before calling here.
func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM admins WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	return nil
}

// Count returns the admin collection cardinality.
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins`); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}
