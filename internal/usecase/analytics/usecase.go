package analytics

import (
	"context"
	"time"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
	"bonafide-backend/internal/domain/workflow"
)

type Dashboard struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Stats  []Stat    `json:"stats"`
	Charts []Chart   `json:"charts"`
}

type Usecase struct {
	certs    certificate.Repository
	profiles profile.Repository
	now      func() time.Time
}

func NewUsecase(certs certificate.Repository, profiles profile.Repository) *Usecase {
	return &Usecase{certs: certs, profiles: profiles, now: time.Now}
}

// Range resolves the window, defaulting each missing bound to the current calendar year.
func (u *Usecase) Range(from, to *time.Time) (time.Time, time.Time, error) {
	year := u.now().UTC().Year()
	f := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	t := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	if from != nil {
		f = from.UTC()
	}
	if to != nil {
		t = to.UTC()
	}
	if f.After(t) {
		return f, t, certificate.NewValidationError("from", "must not be after to")
	}
	return f, t, nil
}

func (u *Usecase) Dashboard(ctx context.Context, actor *profile.Profile, from, to *time.Time) (*Dashboard, error) {
	f, t, err := u.Range(from, to)
	if err != nil {
		return nil, err
	}
	reqs, _, err := u.certs.Query(ctx, certificate.Criteria{
		Scope: workflow.ScopeFor(actor),
		From:  &f,
		To:    &t,
		Sort:  certificate.DefaultSort,
	})
	if err != nil {
		return nil, err
	}

	var (
		users      []profile.Profile
		totalUsers int64
	)
	if actor.Role == profile.RoleAdmin {
		if users, err = u.profiles.List(ctx, profile.ListFilter{}); err != nil {
			return nil, err
		}
		totalUsers = int64(len(users))
	}

	return &Dashboard{
		From:   f,
		To:     t,
		Stats:  ComputeStats(reqs, actor.Role, totalUsers),
		Charts: ComputeCharts(reqs, actor.Role, users),
	}, nil
}
