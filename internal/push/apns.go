package push

import (
	"context"
	"fmt"

	"couple-backend/internal/config"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

type apnsClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNsSender delivers messages through Apple Push Notification service
type APNsSender struct {
	client apnsClient
	topic  string
}

// NewAPNsSender creates a token-authenticated APNs sender
func NewAPNsSender(cfg config.PushConfig) (*APNsSender, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsSender{client: client, topic: cfg.Topic}, nil
}

// Send pushes a single alert notification
func (s *APNsSender) Send(ctx context.Context, msg Message) error {
	n := &apns2.Notification{
		DeviceToken: msg.Token,
		Topic:       s.topic,
		Payload:     buildPayload(msg),
	}

	res, err := s.client.PushWithContext(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		if res.Reason == apns2.ReasonUnregistered || res.Reason == apns2.ReasonBadDeviceToken {
			return fmt.Errorf("%w: %s", ErrUnregistered, res.Reason)
		}
		return fmt.Errorf("notification rejected with status %d: %s", res.StatusCode, res.Reason)
	}
	return nil
}

func buildPayload(msg Message) *payload.Payload {
	return payload.NewPayload().
		AlertTitle(msg.Notification.Title).
		AlertBody(msg.Notification.Body).
		Sound("default")
}
