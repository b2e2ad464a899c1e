package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Certificates:  &CertificateRepository{db: tx},
		Profiles:      &ProfileRepository{db: tx},
		Notifications: &NotificationRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinRequestTx(ctx context.Context, requestID string, fn func(r uow.Repos, req *certificate.Request) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the request row up-front to serialize writers
		req, err := (&CertificateRepository{db: tx}).GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		return fn(r, req)
	})
}
