package profile

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	// Get several profiles at once; missing ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]Profile, error)
	List(ctx context.Context, f ListFilter) ([]Profile, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, p *Profile) error
	UpdateSelf(ctx context.Context, id string, u SelfUpdate) error
	UpdateAdmin(ctx context.Context, id string, u AdminUpdate) error
	Delete(ctx context.Context, id string) error
}
