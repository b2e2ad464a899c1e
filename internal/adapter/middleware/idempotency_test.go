package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bonafide-backend/internal/domain/profile"
)

const tutorID = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

// helper: new Echo with a fixed actor, the middleware and a simple route
func setupEcho(rdb redis.UniversalClient, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			SetActor(c, &profile.Profile{ID: tutorID, Role: profile.RoleTutor})
			return next(c)
		}
	})
	e.Use(Idempotency(rdb, ttl, zap.NewNop()))
	e.POST("/certificates/bulk", handler)
	e.GET("/certificates", handler)
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"succeeded": []string{"r1"}, "message": "1 of 1 succeeded"})
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okHandler)
	rec := doReq(t, e, http.MethodGet, "/certificates", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okHandler)
	valid := validHeaders()

	tests := []struct {
		name string
		hdr  map[string]string
	}{
		{"missing request id", map[string]string{HeaderRequestAt: valid[HeaderRequestAt]}},
		{"invalid request id", map[string]string{HeaderRequestID: "NOT-VALID", HeaderRequestAt: valid[HeaderRequestAt]}},
		{"invalid request at", map[string]string{HeaderRequestID: valid[HeaderRequestID], HeaderRequestAt: "not-a-time"}},
		{"skewed request at", map[string]string{
			HeaderRequestID: valid[HeaderRequestID],
			HeaderRequestAt: time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doReq(t, e, http.MethodPost, "/certificates/bulk", mkJSONBody(t, map[string]int{"x": 1}), tt.hdr)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d", rec.Code)
			}
		})
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	var calls atomic.Int32
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		calls.Add(1)
		return okHandler(c)
	})

	h := validHeaders()
	payload := map[string]any{"ids": []string{"r1"}, "action": "approve"}

	rec1 := doReq(t, e, http.MethodPost, "/certificates/bulk", mkJSONBody(t, payload), h)
	if rec1.Code != http.StatusOK {
		t.Fatalf("first request => want 200, got %d, body: %s", rec1.Code, rec1.Body.String())
	}
	rec2 := doReq(t, e, http.MethodPost, "/certificates/bulk", mkJSONBody(t, payload), h)
	if rec2.Code != http.StatusOK {
		t.Fatalf("replay => want 200, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if calls.Load() != 1 {
		t.Fatalf("handler ran %d times", calls.Load())
	}
	if !mr.Exists(buildKey(http.MethodPost, "/certificates/bulk", tutorID, h[HeaderRequestID])) {
		t.Fatalf("final entry not stored: %v", mr.Keys())
	}
}

func Test_ServerErrorIsNotStored(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	var calls atomic.Int32
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		if calls.Add(1) == 1 {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return okHandler(c)
	})

	h := validHeaders()
	if rec := doReq(t, e, http.MethodPost, "/certificates/bulk", bytes.NewReader([]byte(`{}`)), h); rec.Code != http.StatusInternalServerError {
		t.Fatalf("first => %d", rec.Code)
	}
	if rec := doReq(t, e, http.MethodPost, "/certificates/bulk", bytes.NewReader([]byte(`{}`)), h); rec.Code != http.StatusOK {
		t.Fatalf("retry => %d", rec.Code)
	}
	if calls.Load() != 2 {
		t.Fatalf("handler ran %d times", calls.Load())
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okHandler)

	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	body := []byte(`{"x":1}`)

	key := buildKey(http.MethodPost, "/certificates/bulk", tutorID, reqID)
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, "/certificates/bulk", bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okHandler)

	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	key := buildKey(http.MethodPost, "/certificates/bulk", tutorID, reqID)
	final := idempEntry{
		Code:        http.StatusOK,
		Body:        []byte(`{"ok":true}`),
		BodySHA256:  bodyHash([]byte(`{"x":1}`)),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, "/certificates/bulk", bytes.NewReader([]byte(`{"x":2}`)), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := setupEcho(rdb, time.Minute, okHandler)

	rec := doReq(t, e, http.MethodPost, "/certificates/bulk", bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}

func Test_NoContentIsReplayed(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	var calls atomic.Int32
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		calls.Add(1)
		return c.NoContent(http.StatusNoContent)
	})
	h := validHeaders()
	for i := 0; i < 2; i++ {
		rec := doReq(t, e, http.MethodPost, "/certificates/bulk", mkJSONBody(t, map[string]int{"x": 1}), h)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("attempt %d => %d %s", i, rec.Code, rec.Body.String())
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("handler ran %d times", calls.Load())
	}
}
