package notificationmock

import (
	"context"
	"sync"
	"time"

	domain "bonafide-backend/internal/domain/notification"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Create records every notification in Created when CreateFn is unset.
type Repo struct {
	CreateFn           func(ctx context.Context, n *domain.Notification) error
	ListByUserFn       func(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	CountUnreadFn      func(ctx context.Context, userID string) (int64, error)
	MarkReadFn         func(ctx context.Context, userID, id string) error
	MarkAllReadFn      func(ctx context.Context, userID string) (int64, error)
	DeleteReadBeforeFn func(ctx context.Context, cutoff time.Time) (int64, error)

	mu      sync.Mutex
	Created []domain.Notification
}

func (m *Repo) Create(ctx context.Context, n *domain.Notification) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, *n)
	return nil
}

// Snapshot returns a copy of Created.
func (m *Repo) Snapshot() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Notification(nil), m.Created...)
}

func (m *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, limit)
	}
	return []domain.Notification{}, nil
}

func (m *Repo) CountUnread(ctx context.Context, userID string) (int64, error) {
	if m.CountUnreadFn != nil {
		return m.CountUnreadFn(ctx, userID)
	}
	return 0, nil
}

func (m *Repo) MarkRead(ctx context.Context, userID, id string) error {
	if m.MarkReadFn != nil {
		return m.MarkReadFn(ctx, userID, id)
	}
	return nil
}

func (m *Repo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if m.MarkAllReadFn != nil {
		return m.MarkAllReadFn(ctx, userID)
	}
	return 0, nil
}

func (m *Repo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteReadBeforeFn != nil {
		return m.DeleteReadBeforeFn(ctx, cutoff)
	}
	return 0, nil
}
