package token

import (
	"time"

	"github.com/bookline-io/bookline/internal/config"
	"github.com/bookline-io/bookline/internal/models"
	"github.com/bookline-io/bookline/internal/store"
)

// TokenWithExpiry pairs a signed token string with its expiry timestamp
type TokenWithExpiry struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// AuthTokens is the access/refresh pair returned on login and refresh
type AuthTokens struct {
	Access  TokenWithExpiry `json:"access"`
	Refresh TokenWithExpiry `json:"refresh"`
}

// Service issues and verifies tokens. Refresh, reset-password and
// verify-email tokens are persisted so they can be revoked server-side;
// access tokens stay stateless.
type Service struct {
	store   *store.Store
	manager *Manager

	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	verifyTTL  time.Duration
}

// NewService creates a token service from configuration
func NewService(st *store.Store, cfg *config.Config) *Service {
	return &Service{
		store:      st,
		manager:    NewManager(cfg.JWT.Secret),
		accessTTL:  time.Duration(cfg.JWT.AccessExpirationMinutes) * time.Minute,
		refreshTTL: time.Duration(cfg.JWT.RefreshExpirationDays) * 24 * time.Hour,
		resetTTL:   time.Duration(cfg.JWT.ResetPasswordExpirationMinutes) * time.Minute,
		verifyTTL:  time.Duration(cfg.JWT.VerifyEmailExpirationMinutes) * time.Minute,
	}
}

// GenerateAuthTokens issues an access/refresh pair for a user. The refresh
// token is persisted, the access token is not.
func (s *Service) GenerateAuthTokens(user *models.User) (*AuthTokens, error) {
	accessExpires := time.Now().Add(s.accessTTL)
	accessToken, err := s.manager.Generate(user.ID, models.TokenTypeAccess, accessExpires)
	if err != nil {
		return nil, err
	}

	refreshExpires := time.Now().Add(s.refreshTTL)
	refreshToken, err := s.manager.Generate(user.ID, models.TokenTypeRefresh, refreshExpires)
	if err != nil {
		return nil, err
	}
	if err := s.saveToken(refreshToken, user.ID, models.TokenTypeRefresh, refreshExpires); err != nil {
		return nil, err
	}

	return &AuthTokens{
		Access:  TokenWithExpiry{Token: accessToken, Expires: accessExpires},
		Refresh: TokenWithExpiry{Token: refreshToken, Expires: refreshExpires},
	}, nil
}

// GenerateResetPasswordToken issues and persists a reset token for the
// user owning the email. Returns store.ErrUserNotFound for unknown emails.
func (s *Service) GenerateResetPasswordToken(email string) (string, error) {
	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return "", err
	}

	expires := time.Now().Add(s.resetTTL)
	resetToken, err := s.manager.Generate(user.ID, models.TokenTypeResetPassword, expires)
	if err != nil {
		return "", err
	}
	if err := s.saveToken(resetToken, user.ID, models.TokenTypeResetPassword, expires); err != nil {
		return "", err
	}
	return resetToken, nil
}

// GenerateVerifyEmailToken issues and persists an email verification token
func (s *Service) GenerateVerifyEmailToken(user *models.User) (string, error) {
	expires := time.Now().Add(s.verifyTTL)
	verifyToken, err := s.manager.Generate(user.ID, models.TokenTypeVerifyEmail, expires)
	if err != nil {
		return "", err
	}
	if err := s.saveToken(verifyToken, user.ID, models.TokenTypeVerifyEmail, expires); err != nil {
		return "", err
	}
	return verifyToken, nil
}

// VerifyToken validates a token's signature, expiry and type. For
// persisted types a matching non-blacklisted record must exist and is
// returned; access tokens are stateless, so the record is synthesized
// from the claims.
func (s *Service) VerifyToken(tokenString string, tokenType models.TokenType) (*models.Token, error) {
	claims, err := s.manager.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenType {
		return nil, ErrInvalidToken
	}

	if tokenType == models.TokenTypeAccess {
		return &models.Token{
			UserID:    claims.Subject,
			Token:     tokenString,
			Type:      tokenType,
			ExpiresAt: claims.ExpiresAt.Time,
		}, nil
	}

	record, err := s.store.GetToken(tokenString, tokenType)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return record, nil
}

// DeleteToken removes a persisted token record
func (s *Service) DeleteToken(id string) error {
	return s.store.DeleteToken(id)
}

// DeleteUserTokens removes all of a user's persisted tokens of one type
func (s *Service) DeleteUserTokens(userID string, tokenType models.TokenType) error {
	return s.store.DeleteUserTokens(userID, tokenType)
}

func (s *Service) saveToken(tokenString, userID string, tokenType models.TokenType, expiresAt time.Time) error {
	return s.store.CreateToken(&models.Token{
		UserID:    userID,
		Token:     tokenString,
		Type:      tokenType,
		ExpiresAt: expiresAt,
	})
}
