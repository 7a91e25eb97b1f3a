package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/skoolhq/sms-portal-api/internal/models"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "sms-portal-test",
	}
}

func newAuthFixture(t *testing.T) (*AuthService, *mockAdminRepo, *mockStudentRepo) {
	admins := &mockAdminRepo{admins: map[string]models.Admin{
		"a1": {ID: "a1", Email: "admin@school.com", Name: "Administrator", PasswordHash: mustHash(t, "admin123")},
	}}
	students := &mockStudentRepo{
		students: map[string]models.Student{
			"s1": {ID: "s1", FullName: "Ahmed Ali", Email: "ahmed@school.com", RollNumber: "STU-001", PasswordHash: mustHash(t, "student123")},
		},
	}
	return NewAuthService(admins, students, nil, fixedConnectivity(true), nil, nil, testAuthConfig()), admins, students
}

func TestAuthServiceAdminLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	res, err := svc.LoginAdmin(context.Background(), models.AdminLoginRequest{
		Email:    "admin@school.com",
		Password: "admin123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "admin@school.com", res.Admin.Email)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceAdminLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.LoginAdmin(context.Background(), models.AdminLoginRequest{
		Email:    "admin@school.com",
		Password: "nope1234",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceAdminLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.LoginAdmin(context.Background(), models.AdminLoginRequest{
		Email:    "ghost@school.com",
		Password: "admin123",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceStudentLoginByRoll(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	res, err := svc.LoginStudent(context.Background(), models.StudentLoginRequest{
		RollOrEmail: "STU-001",
		Password:    "student123",
	})
	require.NoError(t, err)
	assert.Equal(t, "STU-001", res.Student.RollNumber)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceStudentLoginByEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	res, err := svc.LoginStudent(context.Background(), models.StudentLoginRequest{
		RollOrEmail: "ahmed@school.com",
		Password:    "student123",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", res.Student.ID)
}

func TestAuthServiceStudentLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.LoginStudent(context.Background(), models.StudentLoginRequest{
		RollOrEmail: "STU-001",
		Password:    "wrongpass",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceChangeStudentPassword(t *testing.T) {
	svc, _, students := newAuthFixture(t)

	err := svc.ChangeStudentPassword(context.Background(), "s1", ChangeStudentPasswordRequest{
		OldPassword: "student123",
		NewPassword: "brandnew123",
	})
	require.NoError(t, err)

	stored := students.students["s1"]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brandnew123")))
	assert.True(t, stored.Synced)

	_, err = svc.LoginStudent(context.Background(), models.StudentLoginRequest{
		RollOrEmail: "STU-001",
		Password:    "brandnew123",
	})
	require.NoError(t, err)
}

func TestAuthServiceChangeStudentPasswordOfflineEnqueues(t *testing.T) {
	students := &mockStudentRepo{
		students: map[string]models.Student{
			"s1": {ID: "s1", Email: "ahmed@school.com", RollNumber: "STU-001", PasswordHash: mustHash(t, "student123"), Synced: true},
		},
	}
	queue := &mockSyncQueue{}
	svc := NewAuthService(nil, students, queue, fixedConnectivity(false), nil, nil, testAuthConfig())

	err := svc.ChangeStudentPassword(context.Background(), "s1", ChangeStudentPasswordRequest{
		OldPassword: "student123",
		NewPassword: "brandnew123",
	})
	require.NoError(t, err)

	stored := students.students["s1"]
	assert.False(t, stored.Synced)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brandnew123")))
	require.Len(t, queue.entries, 1)
	assert.Equal(t, models.SyncOpUpdate, queue.entries[0].Op)
	assert.Equal(t, models.CollectionStudents, queue.entries[0].Collection)
}

func TestAuthServiceChangeStudentPasswordWrongOld(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	err := svc.ChangeStudentPassword(context.Background(), "s1", ChangeStudentPasswordRequest{
		OldPassword: "wrongpass",
		NewPassword: "brandnew123",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestAuthServiceValidateTokenRejectsTampering(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	res, err := svc.LoginAdmin(context.Background(), models.AdminLoginRequest{
		Email:    "admin@school.com",
		Password: "admin123",
	})
	require.NoError(t, err)

	other := NewAuthService(nil, nil, nil, fixedConnectivity(true), nil, nil, AuthConfig{TokenSecret: "different", TokenExpiry: time.Hour})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
