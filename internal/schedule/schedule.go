// Package schedule manages appointments between users and the push
// notification that announces them.
package schedule

import (
	"log"

	"github.com/bookline-io/bookline/internal/models"
	"github.com/bookline-io/bookline/internal/notify"
	"github.com/bookline-io/bookline/internal/store"
)

// Service handles schedule records and device-token registration
type Service struct {
	store    *store.Store
	notifier notify.Notifier
}

// NewService creates a schedule service. notifier may be nil, in which
// case no notifications are sent.
func NewService(st *store.Store, notifier notify.Notifier) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
	}
}

// AddSchedule creates a schedule record and, when the target user has a
// registered device, sends a best-effort push notification. Notification
// failures are logged, never propagated; the schedule write does not
// depend on delivery.
func (s *Service) AddSchedule(sched *models.Schedule) (*models.Schedule, error) {
	target, err := s.store.GetUserByID(sched.AddedFor)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateSchedule(sched)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && target.DeviceToken != "" {
		if err := s.notifier.Send(notify.Message{
			To:    target.DeviceToken,
			Title: "Schedule Updated",
			Body:  created.Detail,
		}); err != nil {
			log.Printf("Failed to send schedule notification: %v", err)
		}
	}

	return created, nil
}

// GetSchedule returns all schedules added for the given user
func (s *Service) GetSchedule(userID string) ([]models.Schedule, error) {
	return s.store.GetSchedulesForUser(userID)
}

// AddUpdateDeviceToken upserts a user's device token and returns the
// updated user record.
func (s *Service) AddUpdateDeviceToken(userID, deviceToken string) (*models.User, error) {
	return s.store.UpdateDeviceToken(userID, deviceToken)
}
