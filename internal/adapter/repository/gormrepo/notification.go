package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/notification"
	"bonafide-backend/pkg/id"
)

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if n.ID == "" {
		n.ID = id.NewID32()
	}
	return certificate.WrapStore("create notification", r.db.WithContext(ctx).Create(n).Error)
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	out := []notification.Notification{}
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, certificate.WrapStore("list notifications", err)
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, certificate.WrapStore("count unread", err)
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, nid string) error {
	var n notification.Notification
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", nid, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notification.ErrNotFound
	}
	if err != nil {
		return certificate.WrapStore("get notification", err)
	}
	if n.IsRead {
		return nil
	}
	err = r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("id = ? AND user_id = ?", nid, userID).
		Update("is_read", true).Error
	return certificate.WrapStore("mark read", err)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, certificate.WrapStore("mark all read", res.Error)
}

func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff.UTC()).
		Delete(&notification.Notification{})
	return res.RowsAffected, certificate.WrapStore("purge notifications", res.Error)
}
