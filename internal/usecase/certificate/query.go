package certificate

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	domainCertificate "bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
	"bonafide-backend/internal/domain/workflow"
)

// DefaultTab is where each role lands: staff see their queue first.
func DefaultTab(role profile.Role) domainCertificate.Tab {
	if role.Staff() {
		return domainCertificate.TabActionable
	}
	return domainCertificate.TabAll
}

// normalize fills defaults and rejects malformed filters.
func normalize(actor *profile.Profile, in QueryInput) (QueryInput, error) {
	if in.Filter.Tab == "" {
		in.Filter.Tab = DefaultTab(actor.Role)
	}
	if !in.Filter.Tab.Valid() {
		return in, domainCertificate.NewValidationError("tab", "is not a known tab")
	}
	if in.Filter.From != nil && in.Filter.To != nil && in.Filter.From.After(*in.Filter.To) {
		return in, domainCertificate.NewValidationError("from", "must not be after to")
	}
	in.Filter.Search = strings.TrimSpace(in.Filter.Search)
	in.Sort = in.Sort.Normalize()
	if in.Page < 1 {
		in.Page = 1
	}
	return in, nil
}

func criteria(actor *profile.Profile, in QueryInput) domainCertificate.Criteria {
	return domainCertificate.Criteria{
		Statuses:   workflow.StatusesFor(in.Filter.Tab, actor.Role),
		Scope:      workflow.ScopeFor(actor),
		Department: in.Filter.Department,
		Search:     in.Filter.Search,
		From:       in.Filter.From,
		To:         in.Filter.To,
		Sort:       in.Sort,
	}
}

// ViewKeyFor is the canonical key of the view a query shows, page excluded.
func ViewKeyFor(actor *profile.Profile, in QueryInput) (string, error) {
	in, err := normalize(actor, in)
	if err != nil {
		return "", err
	}
	return domainCertificate.ViewKey(in.Filter, in.Sort), nil
}

// cacheKey covers everything that changes the result: role, derived scope,
// view and page.
func cacheKey(actor *profile.Profile, viewKey string, page int) string {
	s := workflow.ScopeFor(actor)
	return url.Values{
		"role":       {string(actor.Role)},
		"owner":      {s.OwnerID},
		"tutor":      {s.TutorID},
		"scope_dept": {s.Department},
		"view":       {viewKey},
		"page":       {strconv.Itoa(page)},
	}.Encode()
}

func (u *Usecase) Query(ctx context.Context, actor *profile.Profile, in QueryInput) (*Page, error) {
	in, err := normalize(actor, in)
	if err != nil {
		return nil, err
	}
	viewKey := domainCertificate.ViewKey(in.Filter, in.Sort)
	key := cacheKey(actor, viewKey, in.Page)

	var (
		gen       string
		cacheable bool
	)
	if u.cache != nil {
		var cached Page
		g, hit, err := u.cache.Get(ctx, key, &cached)
		if err != nil {
			u.log.Warn("query cache get failed", zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
		gen, cacheable = g, err == nil
	}

	c := criteria(actor, in)
	c.Offset = domainCertificate.Offset(in.Page)
	c.Limit = domainCertificate.PageSize
	rows, total, err := u.certs.Query(ctx, c)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domainCertificate.View{}
	}
	p := &Page{
		Rows:       rows,
		Total:      total,
		Page:       in.Page,
		PageSize:   domainCertificate.PageSize,
		TotalPages: domainCertificate.TotalPages(total),
		Tab:        in.Filter.Tab,
		Sort:       in.Sort,
		ViewKey:    viewKey,
		Actions:    workflow.ActionsFor(actor.Role),
	}

	if cacheable {
		if err := u.cache.Set(ctx, gen, key, p); err != nil {
			u.log.Warn("query cache set failed", zap.Error(err))
		}
	}
	return p, nil
}

// Export returns every row of the filtered, sorted view, unpaginated.
func (u *Usecase) Export(ctx context.Context, actor *profile.Profile, in QueryInput) ([]domainCertificate.View, error) {
	in, err := normalize(actor, in)
	if err != nil {
		return nil, err
	}
	rows, _, err := u.certs.Query(ctx, criteria(actor, in))
	return rows, err
}
