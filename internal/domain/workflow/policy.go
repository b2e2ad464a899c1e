package workflow

import (
	"strings"
	"unicode/utf8"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
)

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionRevert   Action = "revert"
	ActionResubmit Action = "resubmit"
	ActionCancel   Action = "cancel"
)

func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionRevert, ActionResubmit, ActionCancel:
		return true
	}
	return false
}

// OwnerOnly reports whether only the request owner may perform a.
func (a Action) OwnerOnly() bool { return a == ActionResubmit || a == ActionCancel }

type rule struct {
	role   profile.Role
	action Action
	from   []certificate.Status
	// empty means the record is deleted
	to    certificate.Status
	label string
}

// rules is the transition table. Every gate (UI labels, actionability,
// tab status sets, engine validation) is derived from it.
var rules = []rule{
	{profile.RoleTutor, ActionApprove, []certificate.Status{certificate.StatusPending}, certificate.StatusApprovedByTutor, "Approve and forward to HOD"},
	{profile.RoleTutor, ActionReject, []certificate.Status{certificate.StatusPending}, certificate.StatusRejectedByTutor, "Reject"},
	{profile.RoleHOD, ActionApprove, []certificate.Status{certificate.StatusApprovedByTutor}, certificate.StatusApprovedByHOD, "Approve and forward to office"},
	{profile.RoleHOD, ActionReject, []certificate.Status{certificate.StatusApprovedByTutor}, certificate.StatusRejectedByHOD, "Reject"},
	{profile.RoleAdmin, ActionApprove, []certificate.Status{certificate.StatusApprovedByHOD}, certificate.StatusCompleted, "Mark as completed"},
	{profile.RoleAdmin, ActionRevert, []certificate.Status{certificate.StatusCompleted}, certificate.StatusApprovedByHOD, "Revert to pending issue"},
	{profile.RoleStudent, ActionResubmit, []certificate.Status{certificate.StatusRejectedByTutor, certificate.StatusRejectedByHOD}, certificate.StatusPending, "Edit and resubmit"},
	{profile.RoleStudent, ActionCancel, []certificate.Status{certificate.StatusPending}, "", "Cancel request"},
}

func find(role profile.Role, action Action) (rule, bool) {
	for _, r := range rules {
		if r.role == role && r.action == action {
			return r, true
		}
	}
	return rule{}, false
}

// Allowed reports whether role may ever perform action, regardless of status.
func Allowed(role profile.Role, action Action) bool {
	_, ok := find(role, action)
	return ok
}

// Next returns the status that follows from when role performs action.
// Cancel returns the empty status: the record is deleted.
func Next(from certificate.Status, role profile.Role, action Action) (certificate.Status, error) {
	r, ok := find(role, action)
	if !ok {
		return "", &certificate.TransitionError{From: from, Role: string(role), Action: string(action)}
	}
	for _, s := range r.from {
		if s == from {
			return r.to, nil
		}
	}
	return "", &certificate.TransitionError{From: from, Role: string(role), Action: string(action)}
}

// SourceStatuses lists the statuses from which role may perform action.
func SourceStatuses(role profile.Role, action Action) []certificate.Status {
	r, ok := find(role, action)
	if !ok {
		return nil
	}
	out := make([]certificate.Status, len(r.from))
	copy(out, r.from)
	return out
}

// Superseded reports whether current is one step past a status role could
// have acted on with action: another actor moved the request first.
func Superseded(current certificate.Status, role profile.Role, action Action) bool {
	for _, src := range SourceStatuses(role, action) {
		for _, r := range rules {
			if r.to != current || r.to == "" {
				continue
			}
			for _, f := range r.from {
				if f == src {
					return true
				}
			}
		}
	}
	return false
}

// Actionable reports whether a request in status awaits role's decision.
func Actionable(status certificate.Status, role profile.Role) bool {
	for _, s := range SourceStatuses(role, ActionApprove) {
		if s == status {
			return true
		}
	}
	return false
}

// ActionableStatuses is the set a role's "actionable" tab shows. Never nil.
func ActionableStatuses(role profile.Role) []certificate.Status {
	out := SourceStatuses(role, ActionApprove)
	if out == nil {
		return []certificate.Status{}
	}
	return out
}

// StatusesFor maps a tab to its status set for role. nil means no restriction.
func StatusesFor(tab certificate.Tab, role profile.Role) []certificate.Status {
	switch tab {
	case certificate.TabActionable:
		return ActionableStatuses(role)
	case certificate.TabInProgress:
		return []certificate.Status{certificate.StatusPending, certificate.StatusApprovedByTutor, certificate.StatusApprovedByHOD}
	case certificate.TabCompleted:
		return []certificate.Status{certificate.StatusCompleted}
	case certificate.TabRejected:
		return []certificate.Status{certificate.StatusRejectedByTutor, certificate.StatusRejectedByHOD}
	}
	return nil
}

// ActionOption is a UI-facing description of an action available to a role.
type ActionOption struct {
	Action Action               `json:"action"`
	Label  string               `json:"label"`
	From   []certificate.Status `json:"from"`
}

// ActionsFor lists every action role may take, in table order.
func ActionsFor(role profile.Role) []ActionOption {
	var out []ActionOption
	for _, r := range rules {
		if r.role == role {
			out = append(out, ActionOption{Action: r.action, Label: r.label, From: append([]certificate.Status(nil), r.from...)})
		}
	}
	return out
}

// Check validates a staff or owner action before anything touches the store.
// text is the rejection reason for reject and the new reason for resubmit.
func Check(role profile.Role, action Action, text string) error {
	if !Allowed(role, action) {
		return &certificate.TransitionError{Role: string(role), Action: string(action)}
	}
	switch action {
	case ActionReject:
		return ValidateRejectionReason(text)
	case ActionResubmit:
		return ValidateReason(text)
	}
	return nil
}

func ValidateReason(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < certificate.MinReasonLength {
		return certificate.NewValidationError("reason", "must be at least 10 characters")
	}
	return nil
}

func ValidateRejectionReason(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < certificate.MinRejectionReasonLength {
		return certificate.NewValidationError("rejection_reason", "must be at least 10 characters")
	}
	return nil
}
