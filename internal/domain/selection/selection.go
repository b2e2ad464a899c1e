package selection

import (
	"sort"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
	"bonafide-backend/internal/domain/workflow"
)

// Row is the minimum a selection needs to know about a visible request.
type Row struct {
	RequestID string             `json:"id"`
	Status    certificate.Status `json:"status"`
}

// Set tracks selected request ids for one actor across pages of one view.
// The zero value is an empty selection on page 1.
type Set struct {
	ViewKey string              `json:"view_key"`
	Page    int                 `json:"page"`
	IDs     map[string]struct{} `json:"ids"`
}

func New() *Set { return &Set{Page: 1, IDs: map[string]struct{}{}} }

func (s *Set) init() {
	if s.IDs == nil {
		s.IDs = map[string]struct{}{}
	}
	if s.Page < 1 {
		s.Page = 1
	}
}

// Sync moves the selection to viewKey. Any change of filter, sort, tab or
// date range produces a different key, which empties the set and resets the page.
// It reports whether the selection was reset.
func (s *Set) Sync(viewKey string) bool {
	s.init()
	if s.ViewKey == viewKey {
		return false
	}
	s.ViewKey = viewKey
	s.Page = 1
	s.IDs = map[string]struct{}{}
	return true
}

// GoTo changes page without touching the selection.
func (s *Set) GoTo(page int) {
	s.init()
	if page < 1 {
		page = 1
	}
	s.Page = page
}

func Selectable(r Row, role profile.Role) bool {
	return workflow.Actionable(r.Status, role)
}

// Toggle flips one row. Non-selectable rows are ignored; the return value
// reports whether the row is selected afterwards.
func (s *Set) Toggle(r Row, role profile.Role) bool {
	s.init()
	if _, ok := s.IDs[r.RequestID]; ok {
		delete(s.IDs, r.RequestID)
		return false
	}
	if !Selectable(r, role) {
		return false
	}
	s.IDs[r.RequestID] = struct{}{}
	return true
}

// TogglePage selects every selectable row of the current page, or clears
// them when all of them are already selected. Ids from other pages stay.
func (s *Set) TogglePage(rows []Row, role profile.Role) {
	s.init()
	var selectable []string
	all := true
	for _, r := range rows {
		if !Selectable(r, role) {
			continue
		}
		selectable = append(selectable, r.RequestID)
		if _, ok := s.IDs[r.RequestID]; !ok {
			all = false
		}
	}
	if len(selectable) == 0 {
		return
	}
	for _, id := range selectable {
		if all {
			delete(s.IDs, id)
		} else {
			s.IDs[id] = struct{}{}
		}
	}
}

// PageState reports whether every selectable row on a page is selected and
// whether some are.
func (s *Set) PageState(rows []Row, role profile.Role) (all, some bool) {
	s.init()
	n, hit := 0, 0
	for _, r := range rows {
		if !Selectable(r, role) {
			continue
		}
		n++
		if _, ok := s.IDs[r.RequestID]; ok {
			hit++
		}
	}
	return n > 0 && hit == n, hit > 0
}

func (s *Set) Has(id string) bool {
	_, ok := s.IDs[id]
	return ok
}

func (s *Set) Remove(ids ...string) {
	for _, id := range ids {
		delete(s.IDs, id)
	}
}

func (s *Set) Clear() {
	s.IDs = map[string]struct{}{}
}

func (s *Set) Len() int { return len(s.IDs) }

// List returns the selected ids in lexical order.
func (s *Set) List() []string {
	out := make([]string, 0, len(s.IDs))
	for id := range s.IDs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
