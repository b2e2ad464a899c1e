package certificate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	domainCertificate "bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
	"bonafide-backend/internal/domain/uow"
	"bonafide-backend/internal/domain/workflow"
	"bonafide-backend/internal/testutil/certificatemock"
	"bonafide-backend/internal/testutil/notificationmock"
	"bonafide-backend/internal/testutil/profilemock"
	"bonafide-backend/internal/testutil/uowmock"
	notificationUsecase "bonafide-backend/internal/usecase/notification"
)

func strp(s string) *string { return &s }

var (
	cse     = "Computer Science"
	tutor   = profile.Profile{ID: "t1", Role: profile.RoleTutor}
	hod     = profile.Profile{ID: "h1", Role: profile.RoleHOD, Department: &cse}
	admin   = profile.Profile{ID: "a1", Role: profile.RoleAdmin}
	student = profile.Profile{ID: "s1", Role: profile.RoleStudent, FirstName: "Asha", LastName: "Rao", Email: "asha@college.edu", Department: &cse, TutorID: strp("t1")}
)

// store is a map-backed request table behind certificatemock.Repo.
type store struct {
	mu     sync.Mutex
	rows   map[string]*domainCertificate.View
	writes int
	// beforeWrite runs just before a conditional write, to simulate a racing actor.
	beforeWrite func(requestID string)
}

func newStore(views ...domainCertificate.View) *store {
	s := &store{rows: map[string]*domainCertificate.View{}}
	for i := range views {
		v := views[i]
		s.rows[v.RequestID] = &v
	}
	return s
}

func viewOf(id string, owner profile.Profile, status domainCertificate.Status) domainCertificate.View {
	v := domainCertificate.View{
		Request:        domainCertificate.Request{RequestID: id, OwnerID: owner.ID, Reason: "Visa application", Status: status},
		FirstName:      owner.FirstName,
		LastName:       owner.LastName,
		Department:     owner.Department,
		TutorID:        owner.TutorID,
		RegisterNumber: strp("CS001"),
	}
	if status.Rejected() {
		v.RejectionReason = strp("Missing documents")
	}
	return v
}

func (s *store) get(id string) (domainCertificate.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rows[id]
	if !ok {
		return domainCertificate.View{}, false
	}
	return *v, true
}

func (s *store) set(id string, status domainCertificate.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id].Status = status
}

func (s *store) repo() *certificatemock.Repo {
	return &certificatemock.Repo{
		GetByRequestIDFn: func(_ context.Context, id string) (*domainCertificate.Request, error) {
			v, ok := s.get(id)
			if !ok {
				return nil, domainCertificate.ErrNotFound
			}
			return &v.Request, nil
		},
		GetViewFn: func(_ context.Context, id string) (*domainCertificate.View, error) {
			v, ok := s.get(id)
			if !ok {
				return nil, domainCertificate.ErrNotFound
			}
			return &v, nil
		},
		CompareAndSetStatusFn: func(_ context.Context, id string, expected domainCertificate.Status, p domainCertificate.Patch) error {
			if s.beforeWrite != nil {
				s.beforeWrite(id)
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			v, ok := s.rows[id]
			if !ok {
				return domainCertificate.ErrNotFound
			}
			if v.Status != expected {
				return &domainCertificate.ConflictError{RequestID: id, Expected: expected, Actual: v.Status}
			}
			s.writes++
			v.Status = p.Status
			v.RejectionReason = p.RejectionReason
			if p.Reason != nil {
				v.Reason = *p.Reason
			}
			return nil
		},
		DeleteIfStatusFn: func(_ context.Context, id string, expected domainCertificate.Status) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			v, ok := s.rows[id]
			if !ok {
				return domainCertificate.ErrNotFound
			}
			if v.Status != expected {
				return &domainCertificate.ConflictError{RequestID: id, Expected: expected, Actual: v.Status}
			}
			s.writes++
			delete(s.rows, id)
			return nil
		},
	}
}

type recordingNotifier struct {
	*notificationUsecase.Bridge
	mu         sync.Mutex
	dispatched []workflow.Event
	changes    []workflow.Change
}

func (n *recordingNotifier) Dispatch(ctx context.Context, ev workflow.Event) {
	n.mu.Lock()
	n.dispatched = append(n.dispatched, ev)
	n.mu.Unlock()
	n.Bridge.Dispatch(ctx, ev)
}

func (n *recordingNotifier) Changed(ctx context.Context, c workflow.Change) {
	n.mu.Lock()
	n.changes = append(n.changes, c)
	n.mu.Unlock()
}

type fixture struct {
	uc       *Usecase
	store    *store
	notifs   *notificationmock.Repo
	notifier *recordingNotifier
}

func newFixture(views ...domainCertificate.View) *fixture {
	st := newStore(views...)
	certs := st.repo()
	notifs := &notificationmock.Repo{}
	profiles := profilemock.Static(student, tutor, hod, admin)
	repos := uow.Repos{Certificates: certs, Profiles: profiles, Notifications: notifs}
	n := &recordingNotifier{Bridge: notificationUsecase.NewBridge(profiles, nil, nil, "", zap.NewNop())}
	return &fixture{
		uc:       NewUsecase(certs, uowmock.Passthrough(repos), n, zap.NewNop()),
		store:    st,
		notifs:   notifs,
		notifier: n,
	}
}
