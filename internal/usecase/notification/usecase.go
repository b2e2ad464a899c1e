package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	domainNotification "bonafide-backend/internal/domain/notification"
)

// InboxLimit caps how many notifications a listing returns.
const InboxLimit = 50

type Usecase struct {
	repo domainNotification.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewUsecase(repo domainNotification.Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: repo, log: log, now: time.Now}
}

func (u *Usecase) List(ctx context.Context, userID string) (*Inbox, error) {
	items, err := u.repo.ListByUser(ctx, userID, InboxLimit)
	if err != nil {
		return nil, err
	}
	unread, err := u.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Inbox{Items: items, Unread: unread}, nil
}

func (u *Usecase) MarkRead(ctx context.Context, userID, id string) error {
	return u.repo.MarkRead(ctx, userID, id)
}

func (u *Usecase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return u.repo.MarkAllRead(ctx, userID)
}

// Sweep deletes read notifications older than days. Unread ones are kept.
func (u *Usecase) Sweep(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := u.now().UTC().AddDate(0, 0, -days)
	n, err := u.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	u.log.Info("notification retention sweep", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	return n, nil
}
