package id

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns exactly 32 hex characters (a random UUID without separators).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Valid reports whether s is a 32-char lowercase hex id.
func Valid(s string) bool { return reHex32.MatchString(s) }

// Normalize accepts either a 32-char hex id or a canonical UUID and returns the 32-char form.
// ok is false when s is neither.
func Normalize(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if reHex32.MatchString(s) {
		return s, true
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return strings.ReplaceAll(u.String(), "-", ""), true
}
