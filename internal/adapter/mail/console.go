package mail

import (
	"context"

	"go.uber.org/zap"

	ucNotification "bonafide-backend/internal/usecase/notification"
)

// Console logs messages instead of sending them. Used when no SendGrid key is configured.
type Console struct{ log *zap.Logger }

var _ ucNotification.Mailer = (*Console)(nil)

func NewConsole(log *zap.Logger) *Console { return &Console{log: log} }

func (c *Console) Send(_ context.Context, m ucNotification.Email) error {
	c.log.Info("email (not sent)",
		zap.String("to", m.ToAddress),
		zap.String("subject", m.Subject),
		zap.String("text", m.Text),
	)
	return nil
}
