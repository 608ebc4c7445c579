package services

import (
	"context"
	"errors"
	"fmt"

	"couple-backend/internal/push"
	"couple-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	lowScoreTitle = "Reconnect with your partner ❤️"
	lowScoreBody  = "Your relationship health score is %d%%. Why not start a conversation or suggest a date night?"
)

// NotificationService sends push notifications to users
type NotificationService struct {
	users  *repository.UserRepository
	sender push.Sender
}

// NewNotificationService creates a new notification service
func NewNotificationService(users *repository.UserRepository, sender push.Sender) *NotificationService {
	return &NotificationService{users: users, sender: sender}
}

// NotifyLowScore tells a user their score is low. It reports whether a message
// was handed to the push provider; delivery failures are logged, not returned.
func (s *NotificationService) NotifyLowScore(ctx context.Context, uid string, score int) (bool, error) {
	if uid == "" {
		return false, nil
	}

	user, err := s.users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		log.Debug().Str("user_id", uid).Msg("User not found, skipping notification")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if user.FCMToken == "" {
		log.Debug().Str("user_id", uid).Msg("No device token, skipping notification")
		return false, nil
	}

	msg := push.Message{
		Notification: push.Notification{
			Title: lowScoreTitle,
			Body:  fmt.Sprintf(lowScoreBody, score),
		},
		Token: user.FCMToken,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		if errors.Is(err, push.ErrUnregistered) {
			log.Info().Err(err).Str("user_id", uid).Msg("Device token no longer registered")
			return false, nil
		}
		log.Warn().Err(err).Str("user_id", uid).Msg("Failed to send low score notification")
		return false, nil
	}

	log.Info().Str("user_id", uid).Int("score", score).Msg("Low score notification sent")
	return true, nil
}
