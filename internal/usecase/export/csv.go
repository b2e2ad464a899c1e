package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
)

var (
	RequestHeader = []string{"id", "student name", "register number", "department", "reason", "status", "rejection reason", "submitted", "last updated"}
	UserHeader    = []string{"id", "name", "email", "role", "department", "register number"}
)

const timeLayout = time.RFC3339

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteRequests writes rows in the order given. Fields with commas, quotes
// or newlines are quoted.
func WriteRequests(w io.Writer, rows []certificate.View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RequestHeader); err != nil {
		return err
	}
	for i := range rows {
		r := &rows[i]
		rec := []string{
			r.RequestID,
			r.StudentName(),
			deref(r.RegisterNumber),
			deref(r.Department),
			r.Reason,
			string(r.Status),
			deref(r.RejectionReason),
			r.CreatedAt.UTC().Format(timeLayout),
			r.UpdatedAt.UTC().Format(timeLayout),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write request %s: %w", r.RequestID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteUsers(w io.Writer, users []profile.Profile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(UserHeader); err != nil {
		return err
	}
	for i := range users {
		u := &users[i]
		rec := []string{u.ID, u.FullName(), u.Email, string(u.Role), deref(u.Department), deref(u.RegisterNumber)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write user %s: %w", u.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename stamps an export name with the date.
func Filename(kind string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", kind, now.UTC().Format("2006-01-02"))
}
