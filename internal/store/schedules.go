package store

import (
	"time"

	"github.com/bookline-io/bookline/internal/models"
	"github.com/google/uuid"
)

const scheduleColumns = "id, added_by, added_for, start_time, end_time, detail, created_at, updated_at"

// CreateSchedule persists a schedule record and returns it
func (s *Store) CreateSchedule(sched *models.Schedule) (*models.Schedule, error) {
	now := time.Now().UTC()
	sched.ID = uuid.NewString()
	sched.CreatedAt = now
	sched.UpdatedAt = now

	_, err := s.db.Exec(
		s.bind("INSERT INTO schedules (id, added_by, added_for, start_time, end_time, detail, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
		sched.ID, sched.AddedBy, sched.AddedFor, sched.StartTime, sched.EndTime, sched.Detail, sched.CreatedAt, sched.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sched, nil
}

// GetSchedulesForUser returns all schedules where added_for matches the
// given user id, in insertion order.
func (s *Store) GetSchedulesForUser(userID string) ([]models.Schedule, error) {
	rows, err := s.db.Query(
		s.bind("SELECT "+scheduleColumns+" FROM schedules WHERE added_for = ? ORDER BY created_at"),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []models.Schedule
	for rows.Next() {
		var sched models.Schedule
		err := rows.Scan(
			&sched.ID,
			&sched.AddedBy,
			&sched.AddedFor,
			&sched.StartTime,
			&sched.EndTime,
			&sched.Detail,
			&sched.CreatedAt,
			&sched.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, sched)
	}
	return schedules, rows.Err()
}
