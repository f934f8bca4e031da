package notify

import (
	"context"
	"fmt"

	"github.com/gregdel/pushover"
	"go.uber.org/zap"
)

// PushoverSender notifies the operator's devices through Pushover
type PushoverSender struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
	logger    *zap.Logger
}

func NewPushoverSender(appToken, userKey string, logger *zap.Logger) *PushoverSender {
	return &PushoverSender{
		app:       pushover.New(appToken),
		recipient: pushover.NewRecipient(userKey),
		logger:    logger,
	}
}

// Notify sends one push message. The Pushover client has no context support,
// so ctx is only checked before sending.
func (s *PushoverSender) Notify(ctx context.Context, title, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := pushover.NewMessageWithTitle(message, title)
	if _, err := s.app.SendMessage(msg, s.recipient); err != nil {
		return fmt.Errorf("sending push notification: %w", err)
	}
	s.logger.Debug("push notification sent", zap.String("title", title))
	return nil
}
