package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/bookline-io/bookline/internal/models"
	"github.com/google/uuid"
)

const userColumns = "id, email, password, role, is_email_verified, device_token, created_at, updated_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.IsEmailVerified,
		&user.DeviceToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser creates a new user. The email must not be taken.
func (s *Store) CreateUser(user *models.User) (*models.User, error) {
	user.Email = strings.ToLower(user.Email)
	taken, err := s.IsEmailTaken(user.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = "user"
	}

	_, err = s.db.Exec(
		s.bind("INSERT INTO users (id, email, password, role, is_email_verified, device_token, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
		user.ID, user.Email, user.Password, user.Role, user.IsEmailVerified, user.DeviceToken, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by id
func (s *Store) GetUserByID(id string) (*models.User, error) {
	row := s.db.QueryRow(s.bind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	row := s.db.QueryRow(s.bind("SELECT "+userColumns+" FROM users WHERE email = ?"), strings.ToLower(email))
	return scanUser(row)
}

// IsEmailTaken reports whether another user already owns the email.
// excludeID is ignored when empty.
func (s *Store) IsEmailTaken(email, excludeID string) (bool, error) {
	var id string
	var err error
	if excludeID == "" {
		err = s.db.QueryRow(s.bind("SELECT id FROM users WHERE email = ?"), strings.ToLower(email)).Scan(&id)
	} else {
		err = s.db.QueryRow(s.bind("SELECT id FROM users WHERE email = ? AND id != ?"), strings.ToLower(email), excludeID).Scan(&id)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveUser persists the mutable fields of an already-loaded user record.
// Returns ErrEmailTaken if another user owns the email.
func (s *Store) SaveUser(user *models.User) error {
	taken, err := s.IsEmailTaken(user.Email, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}

	user.UpdatedAt = time.Now().UTC()
	result, err := s.db.Exec(
		s.bind("UPDATE users SET email = ?, password = ?, role = ?, is_email_verified = ?, device_token = ?, updated_at = ? WHERE id = ?"),
		strings.ToLower(user.Email), user.Password, user.Role, user.IsEmailVerified, user.DeviceToken, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateDeviceToken upserts the device token on a user record and returns
// the updated record.
func (s *Store) UpdateDeviceToken(userID, deviceToken string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	user.DeviceToken = deviceToken
	if err := s.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user and all records that reference it
func (s *Store) DeleteUser(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.bind("DELETE FROM tokens WHERE user_id = ?"), id); err != nil {
		return err
	}
	if _, err := tx.Exec(s.bind("DELETE FROM schedules WHERE added_by = ? OR added_for = ?"), id, id); err != nil {
		return err
	}

	result, err := tx.Exec(s.bind("DELETE FROM users WHERE id = ?"), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return tx.Commit()
}
