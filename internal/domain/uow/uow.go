package uow

import (
	"context"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/notification"
	"bonafide-backend/internal/domain/profile"
)

type Repos struct {
	Certificates  certificate.Repository
	Profiles      profile.Repository
	Notifications notification.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: load (and lock where supported) the request first, then pass it in
	WithinRequestTx(ctx context.Context, requestID string, fn func(r Repos, req *certificate.Request) error) error
}
