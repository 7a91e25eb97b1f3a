package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/skoolhq/sms-portal-api/internal/models"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	ExistsByRoll(ctx context.Context, rollNumber string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type syncEnqueuer interface {
	Enqueue(ctx context.Context, op models.SyncOp, collection string, payload interface{}) (*models.SyncQueueEntry, error)
}

type connectivitySource interface {
	Online() bool
}

type statsInvalidator interface {
	Invalidate(ctx context.Context)
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FullName           string           `json:"full_name" validate:"required"`
	FatherName         string           `json:"father_name"`
	Gender             models.Gender    `json:"gender" validate:"required,oneof=Male Female Other"`
	Class              string           `json:"class" validate:"required"`
	Semester           string           `json:"semester"`
	RollNumber         string           `json:"roll_number" validate:"required"`
	RegistrationNumber string           `json:"registration_number"`
	Subjects           []string         `json:"subjects"`
	Phone              string           `json:"phone"`
	Email              string           `json:"email" validate:"required,email"`
	Address            string           `json:"address"`
	ProfilePhoto       string           `json:"profile_photo"`
	FeeStatus          models.FeeStatus `json:"fee_status" validate:"required,oneof=Paid Pending Overdue"`
	FeePaid            float64          `json:"fee_paid"`
	FeeTotal           float64          `json:"fee_total"`
	Attendance         float64          `json:"attendance"`
	AdmissionDate      string           `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	Comments           string           `json:"comments"`
	Password           string           `json:"password" validate:"required,min=8"`
}

// UpdateStudentRequest holds a partial student update; nil fields are left
// untouched.
type UpdateStudentRequest struct {
	FullName           *string           `json:"full_name"`
	FatherName         *string           `json:"father_name"`
	Gender             *models.Gender    `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Class              *string           `json:"class"`
	Semester           *string           `json:"semester"`
	RollNumber         *string           `json:"roll_number"`
	RegistrationNumber *string           `json:"registration_number"`
	Subjects           *[]string         `json:"subjects"`
	Phone              *string           `json:"phone"`
	Email              *string           `json:"email" validate:"omitempty,email"`
	Address            *string           `json:"address"`
	ProfilePhoto       *string           `json:"profile_photo"`
	FeeStatus          *models.FeeStatus `json:"fee_status" validate:"omitempty,oneof=Paid Pending Overdue"`
	FeePaid            *float64          `json:"fee_paid"`
	FeeTotal           *float64          `json:"fee_total"`
	Attendance         *float64          `json:"attendance"`
	AdmissionDate      *string           `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	Comments           *string           `json:"comments"`
}

// UpdateContactRequest is the student self-service contact update.
type UpdateContactRequest struct {
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// StudentService handles student use-cases. Every mutation consults the
// connectivity monitor: while offline the record is written locally with
// synced=false and a sync queue entry describes the operation.
type StudentService struct {
	repo      studentRepository
	queue     syncEnqueuer
	conn      connectivitySource
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, queue syncEnqueuer, conn connectivitySource, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, queue: queue, conn: conn, stats: stats, validator: validate, logger: logger}
}

// List returns student projections and pagination metadata. Page and size
// are normalized here so the repository query and the pagination envelope
// report the same effective values.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentProfile, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return models.Profiles(students), pagination, nil
}

// Get returns one student projection.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentProfile, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	profile := student.Profile()
	return &profile, nil
}

// Create registers a new student. Email and roll number are checked for
// uniqueness before the insert so a duplicate never mutates the collection.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.StudentProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	if taken, err := s.repo.ExistsByEmail(ctx, req.Email, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "email already in use")
	}
	if taken, err := s.repo.ExistsByRoll(ctx, req.RollNumber, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate roll number")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "roll number already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	online := s.conn.Online()
	student := &models.Student{
		FullName:           req.FullName,
		FatherName:         req.FatherName,
		Gender:             req.Gender,
		Class:              req.Class,
		Semester:           req.Semester,
		RollNumber:         req.RollNumber,
		RegistrationNumber: req.RegistrationNumber,
		Subjects:           models.StringList(req.Subjects),
		Phone:              req.Phone,
		Email:              req.Email,
		Address:            req.Address,
		ProfilePhoto:       req.ProfilePhoto,
		FeeStatus:          req.FeeStatus,
		FeePaid:            req.FeePaid,
		FeeTotal:           req.FeeTotal,
		Attendance:         req.Attendance,
		AdmissionDate:      req.AdmissionDate,
		Comments:           req.Comments,
		PasswordHash:       string(hash),
		Synced:             online,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, translateRepoErr(err, "failed to create student")
	}

	if !online {
		s.enqueue(ctx, models.SyncOpCreate, student)
	}
	s.invalidateStats(ctx)

	profile := student.Profile()
	return &profile, nil
}

// Update merges the supplied fields into the existing record, recomputes the
// updated timestamp and the synced flag.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.StudentProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if req.Email != nil && *req.Email != student.Email {
		if taken, err := s.repo.ExistsByEmail(ctx, *req.Email, id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		} else if taken {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "email already in use")
		}
	}
	if req.RollNumber != nil && *req.RollNumber != student.RollNumber {
		if taken, err := s.repo.ExistsByRoll(ctx, *req.RollNumber, id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate roll number")
		} else if taken {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "roll number already in use")
		}
	}

	applyStudentUpdate(student, req)
	online := s.conn.Online()
	student.UpdatedAt = time.Now().UTC()
	student.Synced = online

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, translateRepoErr(err, "failed to update student")
	}

	if !online {
		s.enqueue(ctx, models.SyncOpUpdate, student)
	}
	s.invalidateStats(ctx)

	profile := student.Profile()
	return &profile, nil
}

// UpdateContact applies the student self-service phone/address change.
func (s *StudentService) UpdateContact(ctx context.Context, id string, req UpdateContactRequest) (*models.StudentProfile, error) {
	return s.Update(ctx, id, UpdateStudentRequest{Phone: req.Phone, Address: req.Address})
}

// Delete removes a student. Deleting an absent ID succeeds; there is nothing
// to do for a vanished record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	if !s.conn.Online() {
		s.enqueue(ctx, models.SyncOpDelete, map[string]string{"id": student.ID})
	}
	s.invalidateStats(ctx)
	return nil
}

func (s *StudentService) enqueue(ctx context.Context, op models.SyncOp, payload interface{}) {
	if s.queue == nil {
		return
	}
	if _, err := s.queue.Enqueue(ctx, op, models.CollectionStudents, payload); err != nil {
		s.logger.Warn("failed to enqueue sync entry", zap.String("op", string(op)), zap.Error(err))
	}
}

func (s *StudentService) invalidateStats(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
}

func applyStudentUpdate(student *models.Student, req UpdateStudentRequest) {
	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.FatherName != nil {
		student.FatherName = *req.FatherName
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.Class != nil {
		student.Class = *req.Class
	}
	if req.Semester != nil {
		student.Semester = *req.Semester
	}
	if req.RollNumber != nil {
		student.RollNumber = *req.RollNumber
	}
	if req.RegistrationNumber != nil {
		student.RegistrationNumber = *req.RegistrationNumber
	}
	if req.Subjects != nil {
		student.Subjects = models.StringList(*req.Subjects)
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Address != nil {
		student.Address = *req.Address
	}
	if req.ProfilePhoto != nil {
		student.ProfilePhoto = *req.ProfilePhoto
	}
	if req.FeeStatus != nil {
		student.FeeStatus = *req.FeeStatus
	}
	if req.FeePaid != nil {
		student.FeePaid = *req.FeePaid
	}
	if req.FeeTotal != nil {
		student.FeeTotal = *req.FeeTotal
	}
	if req.Attendance != nil {
		student.Attendance = *req.Attendance
	}
	if req.AdmissionDate != nil {
		student.AdmissionDate = *req.AdmissionDate
	}
	if req.Comments != nil {
		student.Comments = *req.Comments
	}
}

func translateRepoErr(err error, fallback string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fallback)
}
