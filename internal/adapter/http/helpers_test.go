package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bonafide-backend/internal/adapter/middleware"
	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
	domainSelection "bonafide-backend/internal/domain/selection"
	"bonafide-backend/internal/domain/uow"
	"bonafide-backend/internal/domain/workflow"
	"bonafide-backend/internal/testutil/certificatemock"
	"bonafide-backend/internal/testutil/notificationmock"
	"bonafide-backend/internal/testutil/profilemock"
	"bonafide-backend/internal/testutil/uowmock"
	ucAnalytics "bonafide-backend/internal/usecase/analytics"
	ucCertificate "bonafide-backend/internal/usecase/certificate"
	ucNotification "bonafide-backend/internal/usecase/notification"
	ucProfile "bonafide-backend/internal/usecase/profile"
	ucSelection "bonafide-backend/internal/usecase/selection"
)

var (
	idPending   = strings.Repeat("a", 32)
	idApproved  = strings.Repeat("b", 32)
	idCompleted = strings.Repeat("c", 32)
	idMissing   = strings.Repeat("d", 32)
)

func strp(s string) *string { return &s }

var (
	cse     = "CSE"
	student = profile.Profile{ID: "s1", Role: profile.RoleStudent, FirstName: "Asha", LastName: "K", Email: "asha@college.edu", Department: &cse, RegisterNumber: strp("21CS001"), TutorID: strp("t1")}
	other   = profile.Profile{ID: "s2", Role: profile.RoleStudent, FirstName: "Bala"}
	tutor   = profile.Profile{ID: "t1", Role: profile.RoleTutor, FirstName: "Tara", Department: &cse}
	hod     = profile.Profile{ID: "h1", Role: profile.RoleHOD, FirstName: "Hari", Department: &cse}
	admin   = profile.Profile{ID: "a1", Role: profile.RoleAdmin, FirstName: "Anu"}
)

type nopNotifier struct{}

func (nopNotifier) Record(context.Context, uow.Repos, workflow.Event) error { return nil }
func (nopNotifier) Dispatch(context.Context, workflow.Event)                {}
func (nopNotifier) Changed(context.Context, workflow.Change)                {}

// store backs certificatemock with a map of views.
type store struct {
	mu    sync.Mutex
	views map[string]certificate.View
}

func newStore() *store {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	view := func(id string, st certificate.Status, i int) certificate.View {
		return certificate.View{
			Request: certificate.Request{
				ID: uint64(i + 1), RequestID: id, OwnerID: student.ID, Reason: "Bank account opening, needs proof",
				Status: st, CreatedAt: at.Add(time.Duration(i) * time.Hour), UpdatedAt: at.Add(time.Duration(i) * time.Hour),
			},
			FirstName: student.FirstName, LastName: student.LastName,
			RegisterNumber: student.RegisterNumber, Department: student.Department, TutorID: student.TutorID,
		}
	}
	return &store{views: map[string]certificate.View{
		idPending:   view(idPending, certificate.StatusPending, 0),
		idApproved:  view(idApproved, certificate.StatusApprovedByTutor, 1),
		idCompleted: view(idCompleted, certificate.StatusCompleted, 2),
	}}
}

func (s *store) status(id string) certificate.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views[id].Status
}

func (s *store) repo() *certificatemock.Repo {
	return &certificatemock.Repo{
		CreateFn: func(_ context.Context, r *certificate.Request) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.views[r.RequestID] = certificate.View{Request: *r}
			return nil
		},
		GetByRequestIDFn: func(_ context.Context, id string) (*certificate.Request, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			v, ok := s.views[id]
			if !ok {
				return nil, certificate.ErrNotFound
			}
			r := v.Request
			return &r, nil
		},
		GetViewFn: func(_ context.Context, id string) (*certificate.View, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			v, ok := s.views[id]
			if !ok {
				return nil, certificate.ErrNotFound
			}
			return &v, nil
		},
		QueryFn: func(_ context.Context, c certificate.Criteria) ([]certificate.View, int64, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			out := []certificate.View{}
			for _, id := range []string{idCompleted, idApproved, idPending} {
				v, ok := s.views[id]
				if !ok {
					continue
				}
				if c.Statuses != nil && !containsStatus(c.Statuses, v.Status) {
					continue
				}
				if c.Scope.OwnerID != "" && v.OwnerID != c.Scope.OwnerID {
					continue
				}
				out = append(out, v)
			}
			return out, int64(len(out)), nil
		},
		CompareAndSetStatusFn: func(_ context.Context, id string, expected certificate.Status, p certificate.Patch) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			v, ok := s.views[id]
			if !ok {
				return certificate.ErrNotFound
			}
			if v.Status != expected {
				return &certificate.ConflictError{RequestID: id, Expected: expected, Actual: v.Status}
			}
			v.Status = p.Status
			v.RejectionReason = p.RejectionReason
			if p.Reason != nil {
				v.Reason = *p.Reason
			}
			s.views[id] = v
			return nil
		},
		UpdateReasonFn: func(_ context.Context, id, owner, reason string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			v, ok := s.views[id]
			if !ok {
				return certificate.ErrNotFound
			}
			if v.OwnerID != owner {
				return certificate.ErrForbidden
			}
			v.Reason = reason
			s.views[id] = v
			return nil
		},
		DeleteIfStatusFn: func(_ context.Context, id string, expected certificate.Status) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.views[id].Status != expected {
				return &certificate.ConflictError{RequestID: id, Expected: expected}
			}
			delete(s.views, id)
			return nil
		},
	}
}

func containsStatus(list []certificate.Status, s certificate.Status) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

type memSelections struct {
	mu   sync.Mutex
	sets map[string]*domainSelection.Set
}

func (m *memSelections) Load(_ context.Context, id string) (*domainSelection.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sets[id]; ok {
		cp := *s
		cp.IDs = map[string]struct{}{}
		for k := range s.IDs {
			cp.IDs[k] = struct{}{}
		}
		return &cp, nil
	}
	return domainSelection.New(), nil
}

func (m *memSelections) Save(_ context.Context, id string, s *domainSelection.Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[id] = s
	return nil
}

func (m *memSelections) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets, id)
	return nil
}

type server struct {
	e             *echo.Echo
	store         *store
	certs         *certificatemock.Repo
	profiles      *profilemock.Repo
	notifications *notificationmock.Repo
}

// headerAuth stands in for JWT verification: X-Actor names a fixture profile.
func headerAuth(profiles map[string]profile.Profile) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := profiles[c.Request().Header.Get("X-Actor")]
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			middleware.SetActor(c, &p)
			return next(c)
		}
	}
}

func newServer(t *testing.T) *server {
	t.Helper()
	log := zap.NewNop()
	st := newStore()
	certs := st.repo()
	profiles := profilemock.Static(student, other, tutor, hod, admin)
	notifications := &notificationmock.Repo{}
	tx := uowmock.Passthrough(uow.Repos{Certificates: certs, Profiles: profiles, Notifications: notifications})

	certUC := ucCertificate.NewUsecase(certs, tx, nopNotifier{}, log)
	selUC := ucSelection.NewUsecase(&memSelections{sets: map[string]*domainSelection.Set{}}, certUC)
	certUC.WithSelections(selUC)

	e := echo.New()
	e.Validator = NewValidator()
	Register(e, Routes{
		Health:        NewHandler(),
		Certificates:  NewCertificateHandler(certUC, log),
		Profiles:      NewProfileHandler(ucProfile.NewUsecase(profiles, tx, log), log),
		Notifications: NewNotificationHandler(ucNotification.NewUsecase(notifications, log), log),
		Analytics:     NewAnalyticsHandler(ucAnalytics.NewUsecase(certs, profiles), log),
		Selections:    NewSelectionHandler(selUC, log),
		Auth: headerAuth(map[string]profile.Profile{
			"s1": student, "s2": other, "t1": tutor, "h1": hod, "a1": admin,
		}),
	})
	return &server{e: e, store: st, certs: certs, profiles: profiles, notifications: notifications}
}

func (s *server) do(t *testing.T, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return v
}

func hasFieldDetail(details []FieldError, field, contains string) bool {
	return containsFieldMsg(details, field, contains)
}
