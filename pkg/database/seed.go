package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/skoolhq/sms-portal-api/internal/models"
	"github.com/skoolhq/sms-portal-api/pkg/config"
)

const sampleStudentPassword = "student123"

// Seed populates first-run defaults: one administrator when the admins table
// is empty, and sample students plus a welcome notification when the students
// table is empty. Non-empty collections are always left alone, so seeding is
// safe to run on every start.
func (s *Store) Seed(ctx context.Context, cfg config.SeedConfig) error {
	if !cfg.Enabled {
		return nil
	}

	var adminCount int
	if err := s.db.GetContext(ctx, &adminCount, `SELECT COUNT(*) FROM admins`); err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed admin password: %w", err)
		}
		now := time.Now().UTC()
		admin := models.Admin{
			ID:           uuid.NewString(),
			Email:        cfg.AdminEmail,
			PasswordHash: string(hash),
			Name:         cfg.AdminName,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		const query = `INSERT INTO admins (id, email, password_hash, name, created_at, updated_at)
			VALUES (:id, :email, :password_hash, :name, :created_at, :updated_at)`
		if _, err := s.db.NamedExecContext(ctx, query, admin); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		s.logger.Info("seeded default admin", zap.String("email", cfg.AdminEmail))
	}

	if !cfg.SampleData {
		return nil
	}

	var studentCount int
	if err := s.db.GetContext(ctx, &studentCount, `SELECT COUNT(*) FROM students`); err != nil {
		return fmt.Errorf("count students: %w", err)
	}
	if studentCount > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(sampleStudentPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash sample password: %w", err)
	}

	now := time.Now().UTC()
	samples := sampleStudents(string(hash), now)
	const insertStudent = `INSERT INTO students
		(id, full_name, father_name, gender, class, semester, roll_number, registration_number, subjects,
		 phone, email, address, profile_photo, fee_status, fee_paid, fee_total, attendance, admission_date,
		 comments, password_hash, created_at, updated_at, synced)
		VALUES (:id, :full_name, :father_name, :gender, :class, :semester, :roll_number, :registration_number, :subjects,
		 :phone, :email, :address, :profile_photo, :fee_status, :fee_paid, :fee_total, :attendance, :admission_date,
		 :comments, :password_hash, :created_at, :updated_at, :synced)`
	for i := range samples {
		if _, err := s.db.NamedExecContext(ctx, insertStudent, samples[i]); err != nil {
			return fmt.Errorf("seed student %s: %w", samples[i].RollNumber, err)
		}
	}

	welcome := models.Notification{
		ID:        uuid.NewString(),
		StudentID: samples[0].ID,
		Title:     "Fee Payment Confirmed",
		Message:   "Your fee payment of Rs. 50,000 has been confirmed.",
		Read:      false,
		CreatedAt: now,
	}
	const insertNotification = `INSERT INTO notifications (id, student_id, title, message, read, created_at)
		VALUES (:id, :student_id, :title, :message, :read, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, insertNotification, welcome); err != nil {
		return fmt.Errorf("seed notification: %w", err)
	}

	s.logger.Info("seeded sample data", zap.Int("students", len(samples)))
	return nil
}

func sampleStudents(passwordHash string, now time.Time) []models.Student {
	return []models.Student{
		{
			ID:                 uuid.NewString(),
			FullName:           "Ahmed Khan",
			FatherName:         "Mohammad Khan",
			Gender:             models.GenderMale,
			Class:              "10",
			Semester:           "1st",
			RollNumber:         "STD001",
			RegistrationNumber: "REG2024001",
			Subjects:           models.StringList{"Mathematics", "Physics", "Chemistry", "English", "Computer Science"},
			Phone:              "+92 300 1234567",
			Email:              "ahmed@student.com",
			Address:            "123 Main Street, Islamabad",
			FeeStatus:          models.FeeStatusPaid,
			FeePaid:            50000,
			FeeTotal:           50000,
			Attendance:         92,
			AdmissionDate:      "2024-01-15",
			Comments:           "Excellent academic performance",
			PasswordHash:       passwordHash,
			CreatedAt:          now,
			UpdatedAt:          now,
			Synced:             true,
		},
		{
			ID:                 uuid.NewString(),
			FullName:           "Fatima Ali",
			FatherName:         "Ali Hassan",
			Gender:             models.GenderFemale,
			Class:              "10",
			Semester:           "1st",
			RollNumber:         "STD002",
			RegistrationNumber: "REG2024002",
			Subjects:           models.StringList{"Mathematics", "Biology", "Chemistry", "English", "Urdu"},
			Phone:              "+92 301 2345678",
			Email:              "fatima@student.com",
			Address:            "456 Garden Town, Lahore",
			FeeStatus:          models.FeeStatusPending,
			FeePaid:            25000,
			FeeTotal:           50000,
			Attendance:         88,
			AdmissionDate:      "2024-01-20",
			Comments:           "Good in biology and chemistry",
			PasswordHash:       passwordHash,
			CreatedAt:          now,
			UpdatedAt:          now,
			Synced:             true,
		},
		{
			ID:                 uuid.NewString(),
			FullName:           "Usman Malik",
			FatherName:         "Tariq Malik",
			Gender:             models.GenderMale,
			Class:              "9",
			Semester:           "2nd",
			RollNumber:         "STD003",
			RegistrationNumber: "REG2024003",
			Subjects:           models.StringList{"Mathematics", "Physics", "Chemistry", "English", "Pakistan Studies"},
			Phone:              "+92 302 3456789",
			Email:              "usman@student.com",
			Address:            "789 Defence, Karachi",
			FeeStatus:          models.FeeStatusOverdue,
			FeePaid:            10000,
			FeeTotal:           50000,
			Attendance:         75,
			AdmissionDate:      "2024-02-01",
			Comments:           "Needs improvement in attendance",
			PasswordHash:       passwordHash,
			CreatedAt:          now,
			UpdatedAt:          now,
			Synced:             true,
		},
	}
}
