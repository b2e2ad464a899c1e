package certificatemock

import (
	"context"

	domain "bonafide-backend/internal/domain/certificate"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset reads return domain.ErrNotFound; unset writes succeed.
type Repo struct {
	CreateFn              func(ctx context.Context, r *domain.Request) error
	GetByRequestIDFn      func(ctx context.Context, requestID string) (*domain.Request, error)
	GetViewFn             func(ctx context.Context, requestID string) (*domain.View, error)
	QueryFn               func(ctx context.Context, c domain.Criteria) ([]domain.View, int64, error)
	CompareAndSetStatusFn func(ctx context.Context, requestID string, expected domain.Status, p domain.Patch) error
	UpdateReasonFn        func(ctx context.Context, requestID, ownerID, reason string) error
	DeleteIfStatusFn      func(ctx context.Context, requestID string, expected domain.Status) error
}

func (m *Repo) Create(ctx context.Context, r *domain.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByRequestID(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, requestID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetView(ctx context.Context, requestID string) (*domain.View, error) {
	if m.GetViewFn != nil {
		return m.GetViewFn(ctx, requestID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Query(ctx context.Context, c domain.Criteria) ([]domain.View, int64, error) {
	if m.QueryFn != nil {
		return m.QueryFn(ctx, c)
	}
	return []domain.View{}, 0, nil
}

func (m *Repo) CompareAndSetStatus(ctx context.Context, requestID string, expected domain.Status, p domain.Patch) error {
	if m.CompareAndSetStatusFn != nil {
		return m.CompareAndSetStatusFn(ctx, requestID, expected, p)
	}
	return nil
}

func (m *Repo) UpdateReason(ctx context.Context, requestID, ownerID, reason string) error {
	if m.UpdateReasonFn != nil {
		return m.UpdateReasonFn(ctx, requestID, ownerID, reason)
	}
	return nil
}

func (m *Repo) DeleteIfStatus(ctx context.Context, requestID string, expected domain.Status) error {
	if m.DeleteIfStatusFn != nil {
		return m.DeleteIfStatusFn(ctx, requestID, expected)
	}
	return nil
}
