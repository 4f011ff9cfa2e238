// Package auth composes the user store and token service into the
// login, logout, refresh, password-reset and email-verification flows.
package auth

import (
	"errors"
	"log"

	"github.com/bookline-io/bookline/internal/mail"
	"github.com/bookline-io/bookline/internal/models"
	"github.com/bookline-io/bookline/internal/store"
	"github.com/bookline-io/bookline/internal/token"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// Multi-step flows deliberately collapse every internal failure to a
	// single generic error so callers cannot tell which step failed.
	ErrAuthentication          = errors.New("please authenticate")
	ErrPasswordResetFailed     = errors.New("password reset failed")
	ErrEmailVerificationFailed = errors.New("email verification failed")
)

// Service orchestrates the authentication flows
type Service struct {
	store  *store.Store
	tokens *token.Service
	mailer mail.Mailer
}

// NewService creates an auth service. mailer may be nil, in which case
// reset and verification emails are skipped.
func NewService(st *store.Store, tokens *token.Service, mailer mail.Mailer) *Service {
	return &Service{
		store:  st,
		tokens: tokens,
		mailer: mailer,
	}
}

// Register creates a new user with a hashed password. Returns
// store.ErrEmailTaken if the email is already registered.
func (s *Service) Register(email, password, role string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.store.CreateUser(&models.User{
		Email:    email,
		Password: string(hashed),
		Role:     role,
	})
}

// Login validates credentials and returns the user. An unknown email and
// a wrong password are indistinguishable to the caller.
func (s *Service) Login(email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.ValidatePassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Logout deletes the refresh token record. Returns store.ErrTokenNotFound
// if no matching non-blacklisted refresh token exists.
func (s *Service) Logout(refreshToken string) error {
	record, err := s.store.GetToken(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return err
	}
	return s.store.DeleteToken(record.ID)
}

// RefreshAuth exchanges a valid refresh token for a fresh token pair. The
// consumed token is deleted before the new pair is issued, making refresh
// tokens single-use.
func (s *Service) RefreshAuth(refreshToken string) (*token.AuthTokens, error) {
	record, err := s.tokens.VerifyToken(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, ErrAuthentication
	}
	user, err := s.store.GetUserByID(record.UserID)
	if err != nil {
		return nil, ErrAuthentication
	}
	if err := s.tokens.DeleteToken(record.ID); err != nil {
		return nil, ErrAuthentication
	}
	pair, err := s.tokens.GenerateAuthTokens(user)
	if err != nil {
		return nil, ErrAuthentication
	}
	return pair, nil
}

// ForgotPassword issues a reset-password token and emails it to the user.
// Returns store.ErrUserNotFound if no user owns the email.
func (s *Service) ForgotPassword(email string) error {
	resetToken, err := s.tokens.GenerateResetPasswordToken(email)
	if err != nil {
		return err
	}
	s.sendMail(func(m mail.Mailer) error {
		return m.SendResetPasswordEmail(email, resetToken)
	})
	return nil
}

// ResetPassword sets a new password for the user owning a valid reset
// token, then invalidates all of the user's reset tokens.
func (s *Service) ResetPassword(resetToken, newPassword string) error {
	record, err := s.tokens.VerifyToken(resetToken, models.TokenTypeResetPassword)
	if err != nil {
		return ErrPasswordResetFailed
	}
	user, err := s.store.GetUserByID(record.UserID)
	if err != nil {
		return ErrPasswordResetFailed
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrPasswordResetFailed
	}
	user.Password = string(hashed)
	if err := s.store.SaveUser(user); err != nil {
		return ErrPasswordResetFailed
	}

	if err := s.tokens.DeleteUserTokens(user.ID, models.TokenTypeResetPassword); err != nil {
		return ErrPasswordResetFailed
	}
	return nil
}

// SendVerificationEmail issues a verify-email token for the user and
// emails it.
func (s *Service) SendVerificationEmail(user *models.User) error {
	verifyToken, err := s.tokens.GenerateVerifyEmailToken(user)
	if err != nil {
		return err
	}
	s.sendMail(func(m mail.Mailer) error {
		return m.SendVerificationEmail(user.Email, verifyToken)
	})
	return nil
}

// VerifyEmail marks the token owner's email as verified and invalidates
// all of the user's verify-email tokens.
func (s *Service) VerifyEmail(verifyToken string) error {
	record, err := s.tokens.VerifyToken(verifyToken, models.TokenTypeVerifyEmail)
	if err != nil {
		return ErrEmailVerificationFailed
	}
	user, err := s.store.GetUserByID(record.UserID)
	if err != nil {
		return ErrEmailVerificationFailed
	}

	if err := s.tokens.DeleteUserTokens(user.ID, models.TokenTypeVerifyEmail); err != nil {
		return ErrEmailVerificationFailed
	}

	user.IsEmailVerified = true
	if err := s.store.SaveUser(user); err != nil {
		return ErrEmailVerificationFailed
	}
	return nil
}

func (s *Service) sendMail(send func(mail.Mailer) error) {
	if s.mailer == nil {
		return
	}
	go func() {
		if err := send(s.mailer); err != nil {
			log.Printf("Failed to send email: %v", err)
		}
	}()
}
