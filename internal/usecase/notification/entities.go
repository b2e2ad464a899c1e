package notification

import (
	"context"

	domainNotification "bonafide-backend/internal/domain/notification"
	"bonafide-backend/internal/domain/workflow"
)

// Email is one rendered outbound message.
type Email struct {
	ToAddress string
	ToName    string
	Subject   string
	Text      string
	HTML      string
}

type Mailer interface {
	Send(ctx context.Context, m Email) error
}

// Publisher fans change signals out to every instance and browser.
type Publisher interface {
	Publish(ctx context.Context, c workflow.Change) error
}

// Inbox is the notification list of one user.
type Inbox struct {
	Items  []domainNotification.Notification `json:"items"`
	Unread int64                             `json:"unread"`
}
