package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/bookline-io/bookline/internal/models"
	"github.com/google/uuid"
)

const tokenColumns = "id, user_id, token, type, expires_at, blacklisted, created_at"

func scanToken(row *sql.Row) (*models.Token, error) {
	t := &models.Token{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.Type,
		&t.ExpiresAt,
		&t.Blacklisted,
		&t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateToken persists a token record
func (s *Store) CreateToken(t *models.Token) error {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	_, err := s.db.Exec(
		s.bind("INSERT INTO tokens (id, user_id, token, type, expires_at, blacklisted, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"),
		t.ID, t.UserID, t.Token, t.Type, t.ExpiresAt, t.Blacklisted, t.CreatedAt,
	)
	return err
}

// GetToken retrieves a non-blacklisted token record by value and type
func (s *Store) GetToken(token string, tokenType models.TokenType) (*models.Token, error) {
	row := s.db.QueryRow(
		s.bind("SELECT "+tokenColumns+" FROM tokens WHERE token = ? AND type = ? AND blacklisted = ?"),
		token, tokenType, false,
	)
	return scanToken(row)
}

// DeleteToken removes a token record by id
func (s *Store) DeleteToken(id string) error {
	result, err := s.db.Exec(s.bind("DELETE FROM tokens WHERE id = ?"), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// DeleteUserTokens removes all of a user's tokens of the given type
func (s *Store) DeleteUserTokens(userID string, tokenType models.TokenType) error {
	_, err := s.db.Exec(s.bind("DELETE FROM tokens WHERE user_id = ? AND type = ?"), userID, tokenType)
	return err
}

// BlacklistToken marks a token record as no longer valid without deleting it
func (s *Store) BlacklistToken(id string) error {
	result, err := s.db.Exec(s.bind("UPDATE tokens SET blacklisted = ? WHERE id = ?"), true, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// DeleteExpiredTokens removes token records that have passed their expiry
func (s *Store) DeleteExpiredTokens() error {
	_, err := s.db.Exec(s.bind("DELETE FROM tokens WHERE expires_at < ?"), time.Now().UTC())
	return err
}
