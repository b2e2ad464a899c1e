package realtime

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bonafide-backend/internal/domain/workflow"
	ucNotification "bonafide-backend/internal/usecase/notification"
)

// Channel carries change signals between instances.
const Channel = "certificate_requests:changes"

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Bus publishes change signals on redis and relays what it hears to the
// local hub, dropping cached listings on the way.
type Bus struct {
	rdb   redis.UniversalClient
	hub   *Hub
	cache Invalidator
	log   *zap.Logger
}

var _ ucNotification.Publisher = (*Bus)(nil)

func NewBus(rdb redis.UniversalClient, hub *Hub, cache Invalidator, log *zap.Logger) *Bus {
	return &Bus{rdb: rdb, hub: hub, cache: cache, log: log}
}

func (b *Bus) Publish(ctx context.Context, c workflow.Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, Channel, payload).Err()
}

// Run listens until ctx is done.
func (b *Bus) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, Channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	b.log.Info("listening for changes", zap.String("channel", Channel))

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return errors.New("change subscription closed")
			}
			b.handle(ctx, m.Payload)
		}
	}
}

func (b *Bus) handle(ctx context.Context, payload string) {
	var c workflow.Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		b.log.Warn("dropping malformed change", zap.Error(err))
		return
	}
	if b.cache != nil {
		if err := b.cache.Invalidate(ctx); err != nil {
			b.log.Warn("query cache invalidation failed", zap.Error(err))
		}
	}
	b.hub.Broadcast(ChangeMessage(c))
}
