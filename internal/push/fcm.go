package push

import (
	"context"
	"fmt"

	"couple-backend/internal/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender delivers messages through Firebase Cloud Messaging.
// Device tokens stored on user documents are FCM registration tokens.
type FCMSender struct {
	client       fcmClient
	unregistered func(error) bool
}

// NewFCMSender creates a sender for the configured Firebase project.
// Without a credentials file the application default credentials are used.
func NewFCMSender(ctx context.Context, cfg config.PushConfig) (*FCMSender, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &FCMSender{client: client, unregistered: messaging.IsUnregistered}, nil
}

// Send pushes a single notification message
func (s *FCMSender) Send(ctx context.Context, msg Message) error {
	if _, err := s.client.Send(ctx, buildFCMMessage(msg)); err != nil {
		if s.unregistered != nil && s.unregistered(err) {
			return fmt.Errorf("%w: %v", ErrUnregistered, err)
		}
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func buildFCMMessage(msg Message) *messaging.Message {
	return &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Notification.Title,
			Body:  msg.Notification.Body,
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}
