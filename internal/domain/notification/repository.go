package notification

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// Newest first, at most limit rows.
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead flips is_read for a notification owned by userID.
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// DeleteReadBefore removes read notifications created before cutoff.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
