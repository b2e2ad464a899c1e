package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	domainSelection "bonafide-backend/internal/domain/selection"
	ucSelection "bonafide-backend/internal/usecase/selection"
)

const selectionTTL = 24 * time.Hour

type SelectionStore struct {
	rdb redis.UniversalClient
}

var _ ucSelection.Store = (*SelectionStore)(nil)

func NewSelectionStore(rdb redis.UniversalClient) *SelectionStore {
	return &SelectionStore{rdb: rdb}
}

func selectionKey(actorID string) string { return "selection:" + actorID }

// Load returns an empty selection when none is stored.
func (s *SelectionStore) Load(ctx context.Context, actorID string) (*domainSelection.Set, error) {
	raw, err := s.rdb.Get(ctx, selectionKey(actorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domainSelection.New(), nil
	}
	if err != nil {
		return nil, err
	}
	set := domainSelection.New()
	if err := json.Unmarshal(raw, set); err != nil {
		return domainSelection.New(), nil
	}
	return set, nil
}

func (s *SelectionStore) Save(ctx context.Context, actorID string, set *domainSelection.Set) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, selectionKey(actorID), payload, selectionTTL).Err()
}

func (s *SelectionStore) Delete(ctx context.Context, actorID string) error {
	return s.rdb.Del(ctx, selectionKey(actorID)).Err()
}
