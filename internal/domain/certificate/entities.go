package certificate

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusApprovedByTutor Status = "approved_by_tutor"
	StatusRejectedByTutor Status = "rejected_by_tutor"
	StatusApprovedByHOD   Status = "approved_by_hod"
	StatusRejectedByHOD   Status = "rejected_by_hod"
	StatusCompleted       Status = "completed"
)

// Statuses in workflow order.
var Statuses = []Status{
	StatusPending,
	StatusApprovedByTutor,
	StatusRejectedByTutor,
	StatusApprovedByHOD,
	StatusRejectedByHOD,
	StatusCompleted,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) Rejected() bool { return s == StatusRejectedByTutor || s == StatusRejectedByHOD }

const (
	MinReasonLength          = 10
	MinRejectionReasonLength = 10
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// CleanText trims free text and stores every line break as "\n", the form
// that survives CSV export and re-import unchanged.
func CleanText(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

// Table: certificate_requests
type Request struct {
	// Internal numeric PK, also the insertion-order tiebreaker for sorting.
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	RequestID       string    `gorm:"column:request_id;type:char(32);not null;uniqueIndex:ux_certificate_requests_request_id" json:"id"`
	OwnerID         string    `gorm:"column:owner_id;size:36;not null;index" json:"owner_id"`
	Reason          string    `gorm:"column:reason;type:text;not null" json:"reason"`
	Status          Status    `gorm:"column:status;size:32;not null;default:'pending';index" json:"status"`
	RejectionReason *string   `gorm:"column:rejection_reason;type:text" json:"rejection_reason"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Request) TableName() string { return "certificate_requests" }

// View is a request joined with the requester's profile fields used for
// display, search, sorting and export.
type View struct {
	Request
	FirstName      string  `gorm:"column:first_name" json:"first_name"`
	LastName       string  `gorm:"column:last_name" json:"last_name"`
	RegisterNumber *string `gorm:"column:register_number" json:"register_number"`
	Department     *string `gorm:"column:department" json:"department"`
	TutorID        *string `gorm:"column:tutor_id" json:"tutor_id"`
}

func (v *View) StudentName() string {
	switch {
	case v.FirstName == "":
		return v.LastName
	case v.LastName == "":
		return v.FirstName
	}
	return v.FirstName + " " + v.LastName
}

// Patch is written atomically together with a status change.
// RejectionReason is always written: nil clears the column.
type Patch struct {
	Status          Status
	RejectionReason *string
	Reason          *string
}
