package models

import "time"

// Gender enumerates accepted student gender values.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// FeeStatus enumerates fee payment states.
type FeeStatus string

const (
	FeeStatusPaid    FeeStatus = "Paid"
	FeeStatusPending FeeStatus = "Pending"
	FeeStatusOverdue FeeStatus = "Overdue"
)

// Student represents one enrolled learner stored in the students table.
// Roll number and email are unique across the collection. Synced reports
// whether the record has been propagated to the remote counterpart.
type Student struct {
	ID                 string     `db:"id" json:"id"`
	FullName           string     `db:"full_name" json:"full_name"`
	FatherName         string     `db:"father_name" json:"father_name"`
	Gender             Gender     `db:"gender" json:"gender"`
	Class              string     `db:"class" json:"class"`
	Semester           string     `db:"semester" json:"semester"`
	RollNumber         string     `db:"roll_number" json:"roll_number"`
	RegistrationNumber string     `db:"registration_number" json:"registration_number"`
	Subjects           StringList `db:"subjects" json:"subjects"`
	Phone              string     `db:"phone" json:"phone"`
	Email              string     `db:"email" json:"email"`
	Address            string     `db:"address" json:"address"`
	ProfilePhoto       string     `db:"profile_photo" json:"profile_photo,omitempty"`
	FeeStatus          FeeStatus  `db:"fee_status" json:"fee_status"`
	FeePaid            float64    `db:"fee_paid" json:"fee_paid"`
	FeeTotal           float64    `db:"fee_total" json:"fee_total"`
	Attendance         float64    `db:"attendance" json:"attendance"`
	AdmissionDate      string     `db:"admission_date" json:"admission_date"`
	Comments           string     `db:"comments" json:"comments"`
	PasswordHash       string     `db:"password_hash" json:"password_hash,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
	Synced             bool       `db:"synced" json:"synced"`
}

// StudentProfile is the password-free projection returned to callers.
type StudentProfile struct {
	ID                 string     `json:"id"`
	FullName           string     `json:"full_name"`
	FatherName         string     `json:"father_name"`
	Gender             Gender     `json:"gender"`
	Class              string     `json:"class"`
	Semester           string     `json:"semester"`
	RollNumber         string     `json:"roll_number"`
	RegistrationNumber string     `json:"registration_number"`
	Subjects           StringList `json:"subjects"`
	Phone              string     `json:"phone"`
	Email              string     `json:"email"`
	Address            string     `json:"address"`
	ProfilePhoto       string     `json:"profile_photo,omitempty"`
	FeeStatus          FeeStatus  `json:"fee_status"`
	FeePaid            float64    `json:"fee_paid"`
	FeeTotal           float64    `json:"fee_total"`
	Attendance         float64    `json:"attendance"`
	AdmissionDate      string     `json:"admission_date"`
	Comments           string     `json:"comments"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Synced             bool       `json:"synced"`
}

// Profile strips credential material from the record.
func (s Student) Profile() StudentProfile {
	return StudentProfile{
		ID:                 s.ID,
		FullName:           s.FullName,
		FatherName:         s.FatherName,
		Gender:             s.Gender,
		Class:              s.Class,
		Semester:           s.Semester,
		RollNumber:         s.RollNumber,
		RegistrationNumber: s.RegistrationNumber,
		Subjects:           s.Subjects,
		Phone:              s.Phone,
		Email:              s.Email,
		Address:            s.Address,
		ProfilePhoto:       s.ProfilePhoto,
		FeeStatus:          s.FeeStatus,
		FeePaid:            s.FeePaid,
		FeeTotal:           s.FeeTotal,
		Attendance:         s.Attendance,
		AdmissionDate:      s.AdmissionDate,
		Comments:           s.Comments,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		Synced:             s.Synced,
	}
}

// Profiles maps a slice of records to projections.
func Profiles(students []Student) []StudentProfile {
	out := make([]StudentProfile, len(students))
	for i, s := range students {
		out[i] = s.Profile()
	}
	return out
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search    string
	Class     string
	FeeStatus FeeStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
