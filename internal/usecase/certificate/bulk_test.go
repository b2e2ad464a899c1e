package certificate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	domainCertificate "bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/workflow"
	"bonafide-backend/internal/testutil/certificatemock"
	"bonafide-backend/internal/testutil/uowmock"
)

type prunerFunc func(ctx context.Context, actorID string, ids []string) error

func (f prunerFunc) Prune(ctx context.Context, actorID string, ids []string) error {
	return f(ctx, actorID, ids)
}

func TestBulkApply_PartialFailure(t *testing.T) {
	var views []domainCertificate.View
	var ids []string
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("%032d", i)
		ids = append(ids, id)
		views = append(views, viewOf(id, student, domainCertificate.StatusApprovedByTutor))
	}
	f := newFixture(views...)
	// another actor moved one request while it sat in the selection
	f.store.set(ids[2], domainCertificate.StatusRejectedByTutor)

	var pruned []string
	f.uc.WithSelections(prunerFunc(func(_ context.Context, actorID string, got []string) error {
		if actorID != hod.ID {
			t.Fatalf("pruned selection of %s", actorID)
		}
		pruned = got
		return nil
	}))

	res, err := f.uc.BulkApply(context.Background(), &hod, BulkInput{IDs: ids, Action: workflow.ActionApprove})
	if err != nil {
		t.Fatalf("BulkApply: %v", err)
	}
	if len(res.Succeeded) != 4 || len(res.Failed) != 1 {
		t.Fatalf("result = %+v", res)
	}
	var ce *domainCertificate.ConflictError
	if !errors.As(res.Failed[ids[2]], &ce) || ce.Actual != domainCertificate.StatusRejectedByTutor || ce.Expected != domainCertificate.StatusApprovedByTutor {
		t.Fatalf("failed[%s] = %v", ids[2], res.Failed[ids[2]])
	}
	if res.Message() != "4 of 5 succeeded" {
		t.Fatalf("message = %q", res.Message())
	}
	if len(pruned) != 4 {
		t.Fatalf("pruned = %v", pruned)
	}
	for _, id := range pruned {
		if id == ids[2] {
			t.Fatalf("failed id must stay selected")
		}
	}
	for i, id := range ids {
		v, _ := f.store.get(id)
		want := domainCertificate.StatusApprovedByHOD
		if i == 2 {
			want = domainCertificate.StatusRejectedByTutor
		}
		if v.Status != want {
			t.Fatalf("%s status = %s, want %s", id, v.Status, want)
		}
	}
	if n := len(f.notifs.Snapshot()); n != 4 {
		t.Fatalf("notifications = %d", n)
	}
}

func TestBulkApply_EmptyDoesNothing(t *testing.T) {
	certs := &certificatemock.Repo{
		GetByRequestIDFn: func(context.Context, string) (*domainCertificate.Request, error) {
			t.Fatalf("store must not be called")
			return nil, nil
		},
	}
	uc := NewUsecase(certs, uowmock.New(), &recordingNotifier{}, zap.NewNop())
	res, err := uc.BulkApply(context.Background(), &hod, BulkInput{Action: workflow.ActionApprove})
	if err != nil {
		t.Fatalf("BulkApply: %v", err)
	}
	if len(res.Succeeded) != 0 || len(res.Failed) != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestBulkApply_ValidatesOnce(t *testing.T) {
	uc := NewUsecase(&certificatemock.Repo{}, uowmock.New(), &recordingNotifier{}, zap.NewNop())
	_, err := uc.BulkApply(context.Background(), &tutor, BulkInput{IDs: []string{"a", "b"}, Action: workflow.ActionReject, Text: "nope"})
	if !errors.Is(err, domainCertificate.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	_, err = uc.BulkApply(context.Background(), &student, BulkInput{IDs: []string{"a"}, Action: workflow.ActionCancel})
	if !errors.Is(err, domainCertificate.ErrIllegalTransition) {
		t.Fatalf("owner actions are not bulk actions, got %v", err)
	}
}

func TestBulkApply_DuplicatesCollapse(t *testing.T) {
	f := newFixture(viewOf(rid, student, domainCertificate.StatusPending))
	res, err := f.uc.BulkApply(context.Background(), &tutor, BulkInput{IDs: []string{rid, rid, "missing"}, Action: workflow.ActionReject, Text: "Incomplete application"})
	if err != nil {
		t.Fatalf("BulkApply: %v", err)
	}
	if len(res.Succeeded) != 1 || len(res.Failed) != 1 || !errors.Is(res.Failed["missing"], domainCertificate.ErrNotFound) {
		t.Fatalf("result = %+v", res)
	}
	if res.Message() != "1 of 2 succeeded" {
		t.Fatalf("message = %q", res.Message())
	}
}
