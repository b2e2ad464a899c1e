package profilemock

import (
	"context"

	domain "bonafide-backend/internal/domain/profile"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByIDFn     func(ctx context.Context, id string) (*domain.Profile, error)
	GetByIDsFn    func(ctx context.Context, ids []string) ([]domain.Profile, error)
	ListFn        func(ctx context.Context, f domain.ListFilter) ([]domain.Profile, error)
	CountFn       func(ctx context.Context) (int64, error)
	CreateFn      func(ctx context.Context, p *domain.Profile) error
	UpdateSelfFn  func(ctx context.Context, id string, u domain.SelfUpdate) error
	UpdateAdminFn func(ctx context.Context, id string, u domain.AdminUpdate) error
	DeleteFn      func(ctx context.Context, id string) error
}

// Static answers GetByID and GetByIDs from a fixed set of profiles.
func Static(ps ...domain.Profile) *Repo {
	byID := map[string]domain.Profile{}
	for _, p := range ps {
		byID[p.ID] = p
	}
	return &Repo{
		GetByIDFn: func(_ context.Context, id string) (*domain.Profile, error) {
			p, ok := byID[id]
			if !ok {
				return nil, domain.ErrNotFound
			}
			return &p, nil
		},
		GetByIDsFn: func(_ context.Context, ids []string) ([]domain.Profile, error) {
			out := []domain.Profile{}
			for _, id := range ids {
				if p, ok := byID[id]; ok {
					out = append(out, p)
				}
			}
			return out, nil
		},
		ListFn: func(context.Context, domain.ListFilter) ([]domain.Profile, error) {
			return append([]domain.Profile(nil), ps...), nil
		},
		CountFn: func(context.Context) (int64, error) { return int64(len(ps)), nil },
	}
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	return []domain.Profile{}, nil
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Profile, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return []domain.Profile{}, nil
}

func (m *Repo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, nil
}

func (m *Repo) Create(ctx context.Context, p *domain.Profile) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) UpdateSelf(ctx context.Context, id string, u domain.SelfUpdate) error {
	if m.UpdateSelfFn != nil {
		return m.UpdateSelfFn(ctx, id, u)
	}
	return nil
}

func (m *Repo) UpdateAdmin(ctx context.Context, id string, u domain.AdminUpdate) error {
	if m.UpdateAdminFn != nil {
		return m.UpdateAdminFn(ctx, id, u)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}
