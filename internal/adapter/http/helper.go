package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"bonafide-backend/internal/domain/certificate"
	ucCertificate "bonafide-backend/internal/usecase/certificate"
	"bonafide-backend/pkg/id"
)

const dateLayout = "2006-01-02"

// requestIDParam reads :id and writes a 400 when it is not a request id.
// The dashed UUID form printed on certificates is accepted too.
func requestIDParam(c echo.Context) (string, bool, error) {
	raw := strings.TrimSpace(c.Param("id"))
	if raw == "" {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param"})
	}
	rid, ok := id.Normalize(raw)
	if !ok {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
	}
	return rid, true, nil
}

// parseBound accepts a calendar date or an RFC3339 instant. A bare date used
// as an upper bound covers the whole day.
func parseBound(raw string, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if d, err := time.Parse(dateLayout, raw); err == nil {
		if upper {
			d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &d, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func parseRange(fromRaw, toRaw string) (from, to *time.Time, err error) {
	if from, err = parseBound(fromRaw, false); err != nil {
		return nil, nil, certificate.NewValidationError("from", "must be YYYY-MM-DD or RFC3339")
	}
	if to, err = parseBound(toRaw, true); err != nil {
		return nil, nil, certificate.NewValidationError("to", "must be YYYY-MM-DD or RFC3339")
	}
	return from, to, nil
}

// listQuery is the query string shared by listing, export and selection.
type listQuery struct {
	Tab        string `query:"tab" validate:"omitempty,tab"`
	Department string `query:"department" validate:"max=150"`
	Search     string `query:"search" validate:"max=200"`
	From       string `query:"from"`
	To         string `query:"to"`
	Sort       string `query:"sort"`
	Order      string `query:"order" validate:"omitempty,oneof=asc desc"`
	Page       int    `query:"page" validate:"gte=0"`
}

// input converts the query string into a usecase query. Unknown sort keys
// fall back to newest first; order defaults to descending.
func (q listQuery) input() (ucCertificate.QueryInput, error) {
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		return ucCertificate.QueryInput{}, err
	}
	return ucCertificate.QueryInput{
		Filter: certificate.Filter{
			Tab:        certificate.Tab(q.Tab),
			Department: q.Department,
			Search:     q.Search,
			From:       from,
			To:         to,
		},
		Sort: certificate.Sort{Key: certificate.SortKey(q.Sort), Desc: q.Order != "asc"},
		Page: q.Page,
	}, nil
}
