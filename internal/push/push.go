package push

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// ErrUnregistered is returned when the device token is no longer valid
var ErrUnregistered = errors.New("device token unregistered")

// Notification is the visible part of a push message
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Message is a push addressed to a single device token
type Message struct {
	Notification Notification `json:"notification"`
	Token        string       `json:"token"`
}

// Sender delivers push messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender only logs messages; used for local runs
type LogSender struct{}

// Send logs the message instead of delivering it
func (LogSender) Send(ctx context.Context, msg Message) error {
	log.Info().
		Str("title", msg.Notification.Title).
		Str("body", msg.Notification.Body).
		Msg("Push message (log driver)")
	return nil
}
