package notifications

import (
	"context"
	"fmt"
	"log/slog"
)

// FCMSender delivers payloads via Firebase Cloud Messaging.
// Nil-safe: when not configured, Send is a no-op.
type FCMSender struct {
	credentialsFile string
	logger          *slog.Logger
	// TODO: hold a firebase.google.com/go/v4/messaging.Client once the FCM
	// dependency lands; until then sends are logged for development.
}

// NewFCMSender creates an FCM sender from a service account credentials
// file. Returns nil if credentialsFile is empty (push delivery disabled).
func NewFCMSender(credentialsFile string, logger *slog.Logger) *FCMSender {
	if credentialsFile == "" {
		return nil
	}
	return &FCMSender{credentialsFile: credentialsFile, logger: logger}
}

// Send delivers a payload to the given device tokens. With the FCM client
// integrated this becomes a SendEachForMulticast call.
func (s *FCMSender) Send(ctx context.Context, tokens []string, payload Payload) error {
	if s == nil {
		return nil
	}
	if len(tokens) == 0 {
		return fmt.Errorf("no tokens to send to")
	}
	s.logger.Info("FCM send (pending integration)",
		"tokens", len(tokens), "type", payload.Type, "title", payload.Title, "body", payload.Body)
	return nil
}
