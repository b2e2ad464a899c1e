package certificate

import (
	"context"

	"go.uber.org/zap"

	domainCertificate "bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
	"bonafide-backend/internal/domain/workflow"
)

// BulkApply runs one staff action over many requests. Validation happens
// once; each id then commits on its own and may fail on its own.
func (u *Usecase) BulkApply(ctx context.Context, actor *profile.Profile, in BulkInput) (*BulkResult, error) {
	res := &BulkResult{Succeeded: []string{}, Failed: map[string]error{}}
	if len(in.IDs) == 0 {
		return res, nil
	}
	if in.Action.OwnerOnly() {
		return nil, &domainCertificate.TransitionError{Role: string(actor.Role), Action: string(in.Action)}
	}
	if err := workflow.Check(actor.Role, in.Action, in.Text); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(in.IDs))
	for _, requestID := range in.IDs {
		if _, dup := seen[requestID]; dup {
			continue
		}
		seen[requestID] = struct{}{}

		_, err := u.apply(ctx, actor, TransitionInput{RequestID: requestID, Action: in.Action, Text: in.Text}, true)
		if err != nil {
			res.Failed[requestID] = err
			continue
		}
		res.Succeeded = append(res.Succeeded, requestID)
	}

	if u.selections != nil && len(res.Succeeded) > 0 {
		if err := u.selections.Prune(ctx, actor.ID, res.Succeeded); err != nil {
			u.log.Warn("selection prune failed", zap.String("actor_id", actor.ID), zap.Error(err))
		}
	}
	u.log.Info("bulk action",
		zap.String("action", string(in.Action)),
		zap.String("actor_id", actor.ID),
		zap.Int("succeeded", len(res.Succeeded)),
		zap.Int("failed", len(res.Failed)))
	return res, nil
}
