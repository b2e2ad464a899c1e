package certificate

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ViewKey is the canonical serialization of everything that defines a
// listing except the page: two equal keys always show the same rows.
func ViewKey(f Filter, s Sort) string {
	s = s.Normalize()
	// Encode escapes every value and sorts by name
	return url.Values{
		"tab":  {string(f.Tab)},
		"dept": {strings.ToLower(strings.TrimSpace(f.Department))},
		"q":    {strings.ToLower(strings.TrimSpace(f.Search))},
		"from": {fmtTime(f.From)},
		"to":   {fmtTime(f.To)},
		"sort": {string(s.Key)},
		"desc": {strconv.FormatBool(s.Desc)},
	}.Encode()
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
