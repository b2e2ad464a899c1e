package certificate

import (
	"context"
	"time"

	"go.uber.org/zap"

	domainCertificate "bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
	"bonafide-backend/internal/domain/uow"
	"bonafide-backend/internal/domain/workflow"
	"bonafide-backend/pkg/id"
)

type Usecase struct {
	certs      domainCertificate.Repository
	uow        uow.UnitOfWork
	notifier   Notifier
	cache      QueryCache
	selections SelectionPruner
	log        *zap.Logger
	now        func() time.Time
}

// NewUsecase: certs serves reads, tx every state change.
func NewUsecase(certs domainCertificate.Repository, tx uow.UnitOfWork, notifier Notifier, log *zap.Logger) *Usecase {
	return &Usecase{certs: certs, uow: tx, notifier: notifier, log: log, now: time.Now}
}

func (u *Usecase) WithCache(c QueryCache) *Usecase {
	u.cache = c
	return u
}

func (u *Usecase) WithSelections(s SelectionPruner) *Usecase {
	u.selections = s
	return u
}

func (u *Usecase) Create(ctx context.Context, actor *profile.Profile, in CreateInput) (*domainCertificate.Request, error) {
	if actor.Role != profile.RoleStudent {
		return nil, domainCertificate.ErrForbidden
	}
	if err := workflow.ValidateReason(in.Reason); err != nil {
		return nil, err
	}
	now := u.now().UTC()
	req := &domainCertificate.Request{
		RequestID: id.NewID32(),
		OwnerID:   actor.ID,
		Reason:    domainCertificate.CleanText(in.Reason),
		Status:    domainCertificate.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.certs.Create(ctx, req); err != nil {
		return nil, err
	}
	u.changed(ctx, workflow.Change{RequestID: req.RequestID, Status: req.Status, At: now})
	return req, nil
}

func (u *Usecase) Get(ctx context.Context, actor *profile.Profile, requestID string) (*domainCertificate.View, error) {
	v, err := u.certs.GetView(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !workflow.CanView(actor, v) {
		return nil, domainCertificate.ErrForbidden
	}
	return v, nil
}

// EditReason changes the reason of the actor's own pending request.
func (u *Usecase) EditReason(ctx context.Context, actor *profile.Profile, requestID, reason string) error {
	if actor.Role != profile.RoleStudent {
		return domainCertificate.ErrForbidden
	}
	if err := workflow.ValidateReason(reason); err != nil {
		return err
	}
	if err := u.certs.UpdateReason(ctx, requestID, actor.ID, domainCertificate.CleanText(reason)); err != nil {
		return err
	}
	u.changed(ctx, workflow.Change{RequestID: requestID, Status: domainCertificate.StatusPending, At: u.now().UTC()})
	return nil
}

// Transition performs one action on one request. Role legality and text
// length are checked before the store is touched; the current status is
// checked again at commit time.
func (u *Usecase) Transition(ctx context.Context, actor *profile.Profile, in TransitionInput) (*domainCertificate.Request, error) {
	if err := workflow.Check(actor.Role, in.Action, in.Text); err != nil {
		return nil, err
	}
	return u.apply(ctx, actor, in, false)
}

func (u *Usecase) Resubmit(ctx context.Context, actor *profile.Profile, requestID, reason string) (*domainCertificate.Request, error) {
	return u.Transition(ctx, actor, TransitionInput{RequestID: requestID, Action: workflow.ActionResubmit, Text: reason})
}

func (u *Usecase) Cancel(ctx context.Context, actor *profile.Profile, requestID string) error {
	_, err := u.Transition(ctx, actor, TransitionInput{RequestID: requestID, Action: workflow.ActionCancel})
	return err
}

// apply commits one transition. In bulk mode a request that left the
// role's source status is reported as a conflict: the selection was stale.
func (u *Usecase) apply(ctx context.Context, actor *profile.Profile, in TransitionInput, bulk bool) (*domainCertificate.Request, error) {
	var (
		ev  workflow.Event
		out *domainCertificate.Request
	)
	err := u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domainCertificate.Request) error {
		if in.Action.OwnerOnly() {
			if req.OwnerID != actor.ID {
				return domainCertificate.ErrForbidden
			}
		} else {
			v, err := r.Certificates.GetView(ctx, req.RequestID)
			if err != nil {
				return err
			}
			if !workflow.CanView(actor, v) {
				return domainCertificate.ErrForbidden
			}
		}

		next, err := workflow.Next(req.Status, actor.Role, in.Action)
		if err != nil {
			// bulk ids were selected as actionable, so any mismatch is a lost race
			if bulk || workflow.Superseded(req.Status, actor.Role, in.Action) {
				return &domainCertificate.ConflictError{
					RequestID: req.RequestID,
					Expected:  expectedFrom(actor.Role, in.Action),
					Actual:    req.Status,
				}
			}
			return err
		}

		now := u.now().UTC()
		ev = workflow.Event{
			RequestID: req.RequestID,
			OwnerID:   req.OwnerID,
			OldStatus: req.Status,
			NewStatus: next,
			Action:    in.Action,
			ActorID:   actor.ID,
			ActorRole: actor.Role,
			At:        now,
		}

		if in.Action == workflow.ActionCancel {
			ev.Deleted = true
			return r.Certificates.DeleteIfStatus(ctx, req.RequestID, req.Status)
		}

		patch := domainCertificate.Patch{Status: next}
		switch in.Action {
		case workflow.ActionReject:
			reason := domainCertificate.CleanText(in.Text)
			patch.RejectionReason = &reason
			ev.RejectionReason = reason
		case workflow.ActionResubmit:
			reason := domainCertificate.CleanText(in.Text)
			patch.Reason = &reason
		}
		if err := r.Certificates.CompareAndSetStatus(ctx, req.RequestID, req.Status, patch); err != nil {
			return err
		}
		if err := u.notifier.Record(ctx, r, ev); err != nil {
			return err
		}

		updated := *req
		updated.Status = next
		updated.RejectionReason = patch.RejectionReason
		if patch.Reason != nil {
			updated.Reason = *patch.Reason
		}
		updated.UpdatedAt = now
		out = &updated
		return nil
	})
	if err != nil {
		return nil, domainCertificate.WrapStore("transition", err)
	}

	u.invalidate(ctx)
	u.notifier.Dispatch(ctx, ev)
	u.log.Info("request transitioned",
		zap.String("request_id", ev.RequestID),
		zap.String("action", string(ev.Action)),
		zap.String("from", string(ev.OldStatus)),
		zap.String("to", string(ev.NewStatus)),
		zap.String("actor_id", actor.ID))
	return out, nil
}

func expectedFrom(role profile.Role, action workflow.Action) domainCertificate.Status {
	if from := workflow.SourceStatuses(role, action); len(from) > 0 {
		return from[0]
	}
	return ""
}

// Verify confirms an issued certificate. Anything not completed is not found.
func (u *Usecase) Verify(ctx context.Context, requestID string) (*Verification, error) {
	v, err := u.certs.GetView(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if v.Status != domainCertificate.StatusCompleted {
		return nil, domainCertificate.ErrNotFound
	}
	out := &Verification{
		RequestID:   v.RequestID,
		StudentName: v.StudentName(),
		Reason:      v.Reason,
		IssuedAt:    v.UpdatedAt,
	}
	if v.RegisterNumber != nil {
		out.RegisterNumber = *v.RegisterNumber
	}
	if v.Department != nil {
		out.Department = *v.Department
	}
	return out, nil
}

func (u *Usecase) changed(ctx context.Context, c workflow.Change) {
	u.invalidate(ctx)
	u.notifier.Changed(ctx, c)
}

func (u *Usecase) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx); err != nil {
		u.log.Warn("query cache invalidate failed", zap.Error(err))
	}
}
