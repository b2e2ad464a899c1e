package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// lifetime of the in-progress marker; a crashed handler frees the key after this
	provisionalLockTTL = 60 * time.Second
	maxClockSkew       = 10 * time.Minute
	storeTimeout       = 2 * time.Second

	HeaderRequestID = "X-Request-Id"
	HeaderRequestAt = "X-Request-At"
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// replayable reports whether e holds a finished response. 204s have no body.
func (e idempEntry) replayable() bool { return !e.InProgress && e.Code != 0 }

type respRecorder struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *respRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func abort(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// mutation is one request that passed header checks.
type mutation struct {
	key   string
	reqID string
	at    time.Time
	hash  string
}

func readMutation(c echo.Context) (*mutation, string) {
	req := c.Request()
	reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
	if reqID == "" {
		return nil, "missing " + HeaderRequestID
	}
	if !validReqID(reqID) {
		return nil, "invalid " + HeaderRequestID + " format"
	}
	at, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
	if err != nil {
		return nil, err.Error()
	}
	if now := nowUTC(); at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return nil, HeaderRequestAt + " too skewed"
	}

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	actorID := "anonymous"
	if a := Actor(c); a != nil {
		actorID = a.ID
	}
	return &mutation{
		key:   buildKey(req.Method, c.Path(), actorID, reqID),
		reqID: reqID,
		at:    at,
		hash:  bodyHash(body),
	}, ""
}

func (m *mutation) entry() idempEntry {
	return idempEntry{
		InProgress:  true,
		BodySHA256:  m.hash,
		RequestID:   m.reqID,
		RequestAtMS: m.at.UnixMilli(),
		CreatedAt:   nowUTC(),
	}
}

// Idempotency makes mutations safe to retry. The key is method, route, actor
// and X-Request-Id. A repeat with the same body replays the stored response;
// a different body or a request still running is a 409. Server errors are
// not stored so the client may retry with the same id.
func Idempotency(rdb redis.UniversalClient, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			m, problem := readMutation(c)
			if m == nil {
				return abort(c, http.StatusBadRequest, problem)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
			defer cancel()
			claimed, err := provisionalSet(ctx, rdb, m.key, m.entry())
			if err != nil {
				log.Error("idempotency store unavailable", zap.Error(err))
				return abort(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !claimed {
				return replay(ctx, c, rdb, m, log)
			}

			rec := &respRecorder{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// detached: the client may already be gone
			store, done := context.WithTimeout(context.Background(), storeTimeout)
			defer done()
			if rec.code >= http.StatusInternalServerError {
				_ = rdb.Del(store, m.key).Err()
				return nil
			}
			final := m.entry()
			final.InProgress = false
			final.Code = rec.code
			final.ContentType = rec.Header().Get(echo.HeaderContentType)
			final.Body = rec.buf.Bytes()
			if err := saveFinal(store, rdb, m.key, final, ttl); err != nil {
				log.Warn("idempotency result not stored", zap.String("key", m.key), zap.Error(err))
			}
			return nil
		}
	}
}

func replay(ctx context.Context, c echo.Context, rdb redis.UniversalClient, m *mutation, log *zap.Logger) error {
	cur, err := loadEntry(ctx, rdb, m.key)
	if err != nil {
		log.Warn("idempotency entry unreadable", zap.String("key", m.key), zap.Error(err))
	}
	if cur.BodySHA256 != "" && cur.BodySHA256 != m.hash {
		return abort(c, http.StatusConflict, HeaderRequestID+" reused with different body")
	}
	if !cur.replayable() {
		return abort(c, http.StatusConflict, "request is already in progress")
	}
	if len(cur.Body) == 0 {
		return c.NoContent(cur.Code)
	}
	ct := cur.ContentType
	if ct == "" {
		ct = echo.MIMEApplicationJSON
	}
	return c.Blob(cur.Code, ct, cur.Body)
}
