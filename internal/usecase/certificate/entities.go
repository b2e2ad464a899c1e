package certificate

import (
	"context"
	"fmt"
	"time"

	domainCertificate "bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/uow"
	"bonafide-backend/internal/domain/workflow"
)

// Notifier is the two-phase bridge: Record joins the transition's tx,
// Dispatch and Changed run after commit.
type Notifier interface {
	Record(ctx context.Context, r uow.Repos, ev workflow.Event) error
	Dispatch(ctx context.Context, ev workflow.Event)
	Changed(ctx context.Context, c workflow.Change)
}

// QueryCache stores listing pages by canonical key. Get reports the
// generation it read; Set writes under that generation, so a page computed
// across an Invalidate is never served. Invalidate drops every entry.
type QueryCache interface {
	Get(ctx context.Context, key string, dst *Page) (gen string, hit bool, err error)
	Set(ctx context.Context, gen, key string, p *Page) error
	Invalidate(ctx context.Context) error
}

// SelectionPruner drops ids from an actor's selection after a bulk action.
type SelectionPruner interface {
	Prune(ctx context.Context, actorID string, ids []string) error
}

type CreateInput struct {
	Reason string
}

type TransitionInput struct {
	RequestID string
	Action    workflow.Action
	// rejection reason for reject, new reason for resubmit
	Text string
}

type QueryInput struct {
	Filter domainCertificate.Filter
	Sort   domainCertificate.Sort
	Page   int
}

type Page struct {
	Rows       []domainCertificate.View `json:"rows"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalPages int                      `json:"total_pages"`
	Tab        domainCertificate.Tab    `json:"tab"`
	Sort       domainCertificate.Sort   `json:"sort"`
	ViewKey    string                   `json:"view_key"`
	Actions    []workflow.ActionOption  `json:"actions"`
}

type BulkInput struct {
	IDs    []string
	Action workflow.Action
	Text   string
}

// BulkResult is the aggregate outcome: partial success is expected.
type BulkResult struct {
	Succeeded []string         `json:"succeeded"`
	Failed    map[string]error `json:"-"`
}

func (r *BulkResult) Message() string {
	return fmt.Sprintf("%d of %d succeeded", len(r.Succeeded), len(r.Succeeded)+len(r.Failed))
}

// Verification is what the public verify page discloses.
type Verification struct {
	RequestID      string    `json:"id"`
	StudentName    string    `json:"student_name"`
	RegisterNumber string    `json:"register_number"`
	Department     string    `json:"department"`
	Reason         string    `json:"reason"`
	IssuedAt       time.Time `json:"issued_at"`
}
