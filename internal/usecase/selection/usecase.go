package selection

import (
	"context"

	"bonafide-backend/internal/domain/profile"
	domainSelection "bonafide-backend/internal/domain/selection"
	certificateUsecase "bonafide-backend/internal/usecase/certificate"
)

// Store persists one selection per actor. Load returns an empty set when none exists.
type Store interface {
	Load(ctx context.Context, actorID string) (*domainSelection.Set, error)
	Save(ctx context.Context, actorID string, s *domainSelection.Set) error
	Delete(ctx context.Context, actorID string) error
}

// Pager returns the page a selection operation applies to.
type Pager interface {
	Query(ctx context.Context, actor *profile.Profile, in certificateUsecase.QueryInput) (*certificateUsecase.Page, error)
}

type State struct {
	ViewKey string   `json:"view_key"`
	Page    int      `json:"page"`
	IDs     []string `json:"ids"`
	Count   int      `json:"count"`
	// for the current page
	PageAll  bool `json:"page_all"`
	PageSome bool `json:"page_some"`
}

type Usecase struct {
	store Store
	pager Pager
}

func NewUsecase(store Store, pager Pager) *Usecase {
	return &Usecase{store: store, pager: pager}
}

func rowsOf(p *certificateUsecase.Page) []domainSelection.Row {
	out := make([]domainSelection.Row, 0, len(p.Rows))
	for _, v := range p.Rows {
		out = append(out, domainSelection.Row{RequestID: v.RequestID, Status: v.Status})
	}
	return out
}

// open loads the actor's selection and moves it to the view of in. A view
// change empties the selection and sends the actor back to page 1.
func (u *Usecase) open(ctx context.Context, actor *profile.Profile, in certificateUsecase.QueryInput) (*domainSelection.Set, []domainSelection.Row, error) {
	key, err := certificateUsecase.ViewKeyFor(actor, in)
	if err != nil {
		return nil, nil, err
	}
	set, err := u.store.Load(ctx, actor.ID)
	if err != nil {
		return nil, nil, err
	}
	if set.Sync(key) {
		in.Page = 1
	}
	page, err := u.pager.Query(ctx, actor, in)
	if err != nil {
		return nil, nil, err
	}
	set.GoTo(page.Page)
	return set, rowsOf(page), nil
}

func (u *Usecase) state(set *domainSelection.Set, rows []domainSelection.Row, role profile.Role) *State {
	all, some := set.PageState(rows, role)
	return &State{
		ViewKey:  set.ViewKey,
		Page:     set.Page,
		IDs:      set.List(),
		Count:    set.Len(),
		PageAll:  all,
		PageSome: some,
	}
}

// Get returns the selection for the view.
func (u *Usecase) Get(ctx context.Context, actor *profile.Profile, in certificateUsecase.QueryInput) (*State, error) {
	set, rows, err := u.open(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	if err := u.store.Save(ctx, actor.ID, set); err != nil {
		return nil, err
	}
	return u.state(set, rows, actor.Role), nil
}

// Toggle flips one row of the current page. Rows not on the page or not
// actionable for the actor are ignored.
func (u *Usecase) Toggle(ctx context.Context, actor *profile.Profile, in certificateUsecase.QueryInput, requestID string) (*State, error) {
	set, rows, err := u.open(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.RequestID == requestID {
			set.Toggle(r, actor.Role)
			break
		}
	}
	if err := u.store.Save(ctx, actor.ID, set); err != nil {
		return nil, err
	}
	return u.state(set, rows, actor.Role), nil
}

func (u *Usecase) TogglePage(ctx context.Context, actor *profile.Profile, in certificateUsecase.QueryInput) (*State, error) {
	set, rows, err := u.open(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	set.TogglePage(rows, actor.Role)
	if err := u.store.Save(ctx, actor.ID, set); err != nil {
		return nil, err
	}
	return u.state(set, rows, actor.Role), nil
}

func (u *Usecase) Clear(ctx context.Context, actorID string) error {
	return u.store.Delete(ctx, actorID)
}

// Prune removes ids after a bulk action; the rest of the selection stays.
func (u *Usecase) Prune(ctx context.Context, actorID string, ids []string) error {
	set, err := u.store.Load(ctx, actorID)
	if err != nil {
		return err
	}
	set.Remove(ids...)
	return u.store.Save(ctx, actorID, set)
}
