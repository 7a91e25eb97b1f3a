package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role distinguishes the two portal audiences.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)

// JWTClaims carries the identity embedded in access tokens.
type JWTClaims struct {
	UserID string `json:"uid"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AdminLoginRequest is the admin portal login payload.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StudentLoginRequest is the student portal login payload. Login accepts
// either the roll number or the email address.
type StudentLoginRequest struct {
	RollOrEmail string `json:"roll_or_email" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// AdminLoginResponse returns the token pair plus the admin projection.
type AdminLoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	IssuedAt    time.Time    `json:"issued_at"`
	Admin       AdminProfile `json:"admin"`
}

// StudentLoginResponse returns the token plus the student projection.
type StudentLoginResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresIn   int64          `json:"expires_in"`
	IssuedAt    time.Time      `json:"issued_at"`
	Student     StudentProfile `json:"student"`
}
