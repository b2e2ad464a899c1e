package profile

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"bonafide-backend/internal/domain/certificate"
	domainProfile "bonafide-backend/internal/domain/profile"
	"bonafide-backend/internal/domain/uow"
)

const maxNameLength = 100

type Usecase struct {
	profiles domainProfile.Repository
	uow      uow.UnitOfWork
	log      *zap.Logger
}

func NewUsecase(profiles domainProfile.Repository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{profiles: profiles, uow: tx, log: log}
}

// Resolve returns the profile behind an identity, creating a student
// profile on first sight.
func (u *Usecase) Resolve(ctx context.Context, id Identity) (*domainProfile.Profile, error) {
	p, err := u.profiles.GetByID(ctx, id.Subject)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domainProfile.ErrNotFound) {
		return nil, err
	}
	p = &domainProfile.Profile{
		ID:        id.Subject,
		Role:      domainProfile.RoleStudent,
		FirstName: strings.TrimSpace(id.FirstName),
		LastName:  strings.TrimSpace(id.LastName),
		Email:     strings.TrimSpace(id.Email),
	}
	if err := u.profiles.Create(ctx, p); err != nil {
		return nil, err
	}
	u.log.Info("profile provisioned", zap.String("profile_id", p.ID))
	return p, nil
}

func (u *Usecase) Get(ctx context.Context, id string) (*domainProfile.Profile, error) {
	return u.profiles.GetByID(ctx, id)
}

func validName(field string, s *string) error {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return certificate.NewValidationError(field, "must not be empty")
	}
	if len([]rune(v)) > maxNameLength {
		return certificate.NewValidationError(field, "is too long")
	}
	*s = v
	return nil
}

func validAvatar(s *string) error {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	parsed, err := url.Parse(strings.TrimSpace(*s))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return certificate.NewValidationError("avatar_url", "must be an http(s) URL")
	}
	return nil
}

// UpdateSelf changes the caller's own display fields.
func (u *Usecase) UpdateSelf(ctx context.Context, actor *domainProfile.Profile, in SelfUpdateInput) (*domainProfile.Profile, error) {
	if err := validName("first_name", in.FirstName); err != nil {
		return nil, err
	}
	if err := validName("last_name", in.LastName); err != nil {
		return nil, err
	}
	if err := validAvatar(in.AvatarURL); err != nil {
		return nil, err
	}
	upd := domainProfile.SelfUpdate{FirstName: in.FirstName, LastName: in.LastName, AvatarURL: in.AvatarURL}
	if err := u.profiles.UpdateSelf(ctx, actor.ID, upd); err != nil {
		return nil, err
	}
	return u.profiles.GetByID(ctx, actor.ID)
}

func (u *Usecase) List(ctx context.Context, f domainProfile.ListFilter) ([]domainProfile.Profile, error) {
	if f.Role != "" && !f.Role.Valid() {
		return nil, certificate.NewValidationError("role", "is not a known role")
	}
	return u.profiles.List(ctx, f)
}

// AdminUpdate changes role and academic assignment of any user. A tutor
// assignment must point at an existing tutor.
func (u *Usecase) AdminUpdate(ctx context.Context, id string, in AdminUpdateInput) (*domainProfile.Profile, error) {
	var upd domainProfile.AdminUpdate
	if in.Role != nil {
		r := domainProfile.Role(strings.TrimSpace(*in.Role))
		if !r.Valid() {
			return nil, certificate.NewValidationError("role", "is not a known role")
		}
		upd.Role = &r
	}
	upd.Department = in.Department
	upd.RegisterNumber = in.RegisterNumber
	upd.TutorID = in.TutorID

	var out *domainProfile.Profile
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if in.TutorID != nil && strings.TrimSpace(*in.TutorID) != "" {
			if strings.TrimSpace(*in.TutorID) == id {
				return certificate.NewValidationError("tutor_id", "cannot be the user themself")
			}
			t, err := r.Profiles.GetByID(ctx, strings.TrimSpace(*in.TutorID))
			if errors.Is(err, domainProfile.ErrNotFound) {
				return certificate.NewValidationError("tutor_id", "does not exist")
			}
			if err != nil {
				return err
			}
			if t.Role != domainProfile.RoleTutor {
				return certificate.NewValidationError("tutor_id", "is not a tutor")
			}
			trimmed := t.ID
			upd.TutorID = &trimmed
		}
		if err := r.Profiles.UpdateAdmin(ctx, id, upd); err != nil {
			return err
		}
		p, err := r.Profiles.GetByID(ctx, id)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("profile updated by admin", zap.String("profile_id", id))
	return out, nil
}

// Delete removes a user. Admins cannot delete themselves.
func (u *Usecase) Delete(ctx context.Context, actor *domainProfile.Profile, id string) error {
	if actor.ID == id {
		return certificate.NewValidationError("id", "cannot delete your own account")
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Profiles.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	u.log.Info("profile deleted", zap.String("profile_id", id), zap.String("actor_id", actor.ID))
	return nil
}
