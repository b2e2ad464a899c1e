package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	domainNotification "bonafide-backend/internal/domain/notification"
	"bonafide-backend/internal/testutil/notificationmock"
)

func TestUsecase_List(t *testing.T) {
	repo := &notificationmock.Repo{
		ListByUserFn: func(_ context.Context, userID string, limit int) ([]domainNotification.Notification, error) {
			if userID != "u1" || limit != InboxLimit {
				t.Fatalf("unexpected args %s %d", userID, limit)
			}
			return []domainNotification.Notification{{ID: "n1"}, {ID: "n2", IsRead: true}}, nil
		},
		CountUnreadFn: func(context.Context, string) (int64, error) { return 1, nil },
	}
	in, err := NewUsecase(repo, zap.NewNop()).List(context.Background(), "u1")
	if err != nil || len(in.Items) != 2 || in.Unread != 1 {
		t.Fatalf("List = %+v, %v", in, err)
	}
}

func TestUsecase_MarkRead(t *testing.T) {
	repo := &notificationmock.Repo{
		MarkReadFn: func(_ context.Context, userID, id string) error {
			if userID != "u1" {
				return domainNotification.ErrNotFound
			}
			return nil
		},
	}
	u := NewUsecase(repo, zap.NewNop())
	if err := u.MarkRead(context.Background(), "u1", "n1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := u.MarkRead(context.Background(), "u2", "n1"); !errors.Is(err, domainNotification.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUsecase_Sweep(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	var gotCutoff time.Time
	repo := &notificationmock.Repo{
		DeleteReadBeforeFn: func(_ context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 4, nil
		},
	}
	u := NewUsecase(repo, zap.NewNop())
	u.now = func() time.Time { return now }

	n, err := u.Sweep(context.Background(), 30)
	if err != nil || n != 4 {
		t.Fatalf("Sweep = %d, %v", n, err)
	}
	if !gotCutoff.Equal(now.AddDate(0, 0, -30)) {
		t.Fatalf("cutoff = %v", gotCutoff)
	}
	if n, _ := u.Sweep(context.Background(), 0); n != 0 {
		t.Fatalf("disabled sweep deleted %d", n)
	}
}
