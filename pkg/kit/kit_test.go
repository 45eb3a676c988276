package kit_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"Ubermelon/pkg/kit"
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestIPRateLimiter_AllowsBurstThenBlocks(t *testing.T) {
	l := kit.NewIPRateLimiter(3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1", now) {
			t.Fatalf("request %d blocked", i)
		}
	}
	if l.Allow("10.0.0.1", now) {
		t.Fatalf("4th request allowed")
	}
	if !l.Allow("10.0.0.2", now) {
		t.Fatalf("other ip blocked")
	}
	if !l.Allow("10.0.0.1", now.Add(21*time.Second)) {
		t.Fatalf("token not refilled")
	}
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := kit.NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(okHandler))

	post := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.7:51000"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post("203.0.113.9"); code != http.StatusOK {
		t.Fatalf("first status=%d", code)
	}
	// a forged header must not buy a fresh bucket
	for _, xff := range []string{"203.0.113.10", "198.51.100.1, 10.0.0.1"} {
		if code := post(xff); code != http.StatusTooManyRequests {
			t.Fatalf("xff %q status=%d want 429", xff, code)
		}
	}
}

func TestIPRateLimiter_BehindRealIP(t *testing.T) {
	l := kit.NewIPRateLimiter(1, time.Minute)
	h := chimw.RealIP(l.Middleware(http.HandlerFunc(okHandler)))

	post := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:51000"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post("203.0.113.9"); code != http.StatusOK {
		t.Fatalf("first client status=%d", code)
	}
	if code := post("203.0.113.9"); code != http.StatusTooManyRequests {
		t.Fatalf("repeat client status=%d", code)
	}
	if code := post("203.0.113.10"); code != http.StatusOK {
		t.Fatalf("second client status=%d", code)
	}
}

func TestMetricsAuth(t *testing.T) {
	cases := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"no token configured", "", "Bearer x", http.StatusForbidden},
		{"missing header", "s3cret", "", http.StatusForbidden},
		{"wrong token", "s3cret", "Bearer nope", http.StatusForbidden},
		{"ok", "s3cret", "Bearer s3cret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := kit.MetricsAuth(tc.token)(http.HandlerFunc(okHandler))
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status=%d want=%d", rec.Code, tc.want)
			}
		})
	}
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := kit.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware("test"))
	r.Get("/melon/{id}", okHandler)

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/melon/"+id, nil))
	}

	got := testutil.ToFloat64(m.Requests.WithLabelValues("test", http.MethodGet, "/melon/{id}", "200"))
	if got != 3 {
		t.Fatalf("requests=%v want 3", got)
	}
}

func TestMetrics_UnmatchedPathsShareOneSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := kit.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware("test"))
	r.Get("/melon/{id}", okHandler)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/melon/a", nil))
	for i := 0; i < 5; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, fmt.Sprintf("/no-such-%d", i), nil))
	}

	if n := testutil.CollectAndCount(m.Requests); n != 2 {
		t.Fatalf("series=%d want 2", n)
	}
	got := testutil.ToFloat64(m.Requests.WithLabelValues("test", http.MethodGet, kit.UnmatchedRoute, "404"))
	if got != 5 {
		t.Fatalf("unmatched requests=%v want 5", got)
	}
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Logging(zap.NewNop()))
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": "x"})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
	var body kit.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "not found" || body.RequestID == "" {
		t.Fatalf("body=%+v", body)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := kit.NewLogger("svc", "debug", false); err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if _, err := kit.NewLogger("svc", "loud", false); err == nil {
		t.Fatalf("expected bad level error")
	}
}
