package certificate

import (
	"time"
)

// PageSize is fixed for every staff and student listing.
const PageSize = 10

type Tab string

const (
	TabActionable Tab = "actionable"
	TabInProgress Tab = "in_progress"
	TabCompleted  Tab = "completed"
	TabRejected   Tab = "rejected"
	TabAll        Tab = "all"
)

func (t Tab) Valid() bool {
	switch t {
	case TabActionable, TabInProgress, TabCompleted, TabRejected, TabAll:
		return true
	}
	return false
}

type SortKey string

const (
	SortCreatedAt      SortKey = "created_at"
	SortUpdatedAt      SortKey = "updated_at"
	SortStatus         SortKey = "status"
	SortReason         SortKey = "reason"
	SortDepartment     SortKey = "department"
	SortRegisterNumber SortKey = "register_number"
	SortStudentName    SortKey = "student_name"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortCreatedAt, SortUpdatedAt, SortStatus, SortReason, SortDepartment, SortRegisterNumber, SortStudentName:
		return true
	}
	return false
}

type Sort struct {
	Key  SortKey `json:"key"`
	Desc bool    `json:"desc"`
}

// DefaultSort is newest first.
var DefaultSort = Sort{Key: SortCreatedAt, Desc: true}

// Normalize falls back to DefaultSort for unknown keys.
func (s Sort) Normalize() Sort {
	if !s.Key.Valid() {
		return DefaultSort
	}
	return s
}

// DepartmentAll disables the department filter.
const DepartmentAll = "all"

// Filter is what a user picks in the UI.
type Filter struct {
	Tab        Tab        `json:"tab"`
	Department string     `json:"department"`
	Search     string     `json:"search"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

// Scope restricts visibility to what an actor may see. Empty fields do not restrict.
type Scope struct {
	OwnerID    string
	TutorID    string
	Department string
}

// Criteria is the store-level query derived from an actor, a Filter and a Sort.
// Statuses == nil means no status restriction; an empty non-nil slice matches nothing.
type Criteria struct {
	Statuses   []Status
	Scope      Scope
	Department string
	Search     string
	From       *time.Time
	To         *time.Time
	Sort       Sort
	// Limit <= 0 returns every matching row.
	Offset int
	Limit  int
}

// Offset returns the row offset of a 1-indexed page.
func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

// TotalPages is ceil(total/PageSize) but never less than 1.
func TotalPages(total int64) int {
	if total <= 0 {
		return 1
	}
	return int((total + PageSize - 1) / PageSize)
}
