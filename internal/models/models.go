package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// TokenType distinguishes the four kinds of tokens the system issues.
type TokenType string

const (
	TokenTypeAccess        TokenType = "access"
	TokenTypeRefresh       TokenType = "refresh"
	TokenTypeResetPassword TokenType = "resetPassword"
	TokenTypeVerifyEmail   TokenType = "verifyEmail"
)

// User represents a user account in the database
type User struct {
	ID              string    `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	Password        string    `json:"-" db:"password"` // Password hash is never sent to client
	Role            string    `json:"role" db:"role"`
	IsEmailVerified bool      `json:"is_email_verified" db:"is_email_verified"`
	DeviceToken     string    `json:"-" db:"device_token"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ValidatePassword checks if the provided password matches the user's password
func (u *User) ValidatePassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Token represents a persisted token record. Access tokens are never
// persisted; they are verified by signature and expiry alone.
type Token struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Token       string    `json:"token" db:"token"`
	Type        TokenType `json:"type" db:"type"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
	Blacklisted bool      `json:"blacklisted" db:"blacklisted"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// IsExpired checks if the token record has expired
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// Schedule represents an appointment between two users
type Schedule struct {
	ID        string    `json:"id" db:"id"`
	AddedBy   string    `json:"added_by" db:"added_by"`
	AddedFor  string    `json:"added_for" db:"added_for"`
	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time" db:"end_time"`
	Detail    string    `json:"detail" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
