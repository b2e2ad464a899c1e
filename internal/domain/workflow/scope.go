package workflow

import (
	"time"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
)

// ScopeFor derives what an actor may see: students their own requests,
// tutors their tutees, HODs their department, admins everything.
func ScopeFor(actor *profile.Profile) certificate.Scope {
	switch actor.Role {
	case profile.RoleStudent:
		return certificate.Scope{OwnerID: actor.ID}
	case profile.RoleTutor:
		return certificate.Scope{TutorID: actor.ID}
	case profile.RoleHOD:
		return certificate.Scope{Department: actor.DepartmentOr("")}
	}
	return certificate.Scope{}
}

// CanView applies ScopeFor to a single request.
func CanView(actor *profile.Profile, v *certificate.View) bool {
	s := ScopeFor(actor)
	if actor.Role == profile.RoleStudent {
		return v.OwnerID == actor.ID
	}
	if !actor.Role.Staff() {
		return false
	}
	if s.TutorID != "" && (v.TutorID == nil || *v.TutorID != s.TutorID) {
		return false
	}
	if s.Department != "" && (v.Department == nil || *v.Department != s.Department) {
		return false
	}
	return true
}

// Event describes one committed transition. The bridge receives it exactly once.
type Event struct {
	RequestID string             `json:"request_id"`
	OwnerID   string             `json:"owner_id"`
	OldStatus certificate.Status `json:"old_status"`
	NewStatus certificate.Status `json:"new_status"`
	Action    Action             `json:"action"`
	ActorID   string             `json:"actor_id"`
	ActorRole profile.Role       `json:"actor_role"`
	// Only set for reject; never broadcast.
	RejectionReason string `json:"-"`
	// Deleted is set when the request no longer exists (cancel).
	Deleted bool      `json:"deleted,omitempty"`
	At      time.Time `json:"at"`
}

// Change is the invalidation signal broadcast to every listener. It carries
// no request content: receivers re-fetch whatever view they show.
type Change struct {
	RequestID string             `json:"request_id"`
	Status    certificate.Status `json:"status,omitempty"`
	Deleted   bool               `json:"deleted,omitempty"`
	At        time.Time          `json:"at"`
}

func (e Event) Change() Change {
	return Change{RequestID: e.RequestID, Status: e.NewStatus, Deleted: e.Deleted, At: e.At}
}
