package request

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backupauth/pkg/requestcontext"
)

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		reused bool
	}{
		{name: "absent", header: "", reused: false},
		{name: "plain", header: "backup-7f3a", reused: true},
		{name: "dots and underscores", header: "trace.span_1234", reused: true},
		{name: "at max length", header: strings.Repeat("a", MaxRequestIDLength), reused: true},
		{name: "over max length", header: strings.Repeat("a", MaxRequestIDLength+1), reused: false},
		{name: "newline", header: "ok\nforged-log-line", reused: false},
		{name: "space", header: "two words", reused: false},
		{name: "quote", header: `say"hi`, reused: false},
		{name: "null byte", header: "a\x00b", reused: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inContext string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inContext = requestcontext.RequestID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			echoed := serve(h, req).Header().Get("X-Request-ID")

			assert.Equal(t, echoed, inContext)
			if tt.reused {
				assert.Equal(t, tt.header, echoed)
			} else {
				assert.NotEqual(t, tt.header, echoed)
				assert.Len(t, echoed, 36)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := serve(h, httptest.NewRequest(http.MethodGet, "/v1/archives/auth", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error","error_description":"internal server error"}`, w.Body.String())
	assert.Contains(t, logs.String(), "panic in handler")
	assert.Contains(t, logs.String(), "/v1/archives/auth")
}

func TestRecoveryRepanicsOnAbort(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLogger(t *testing.T) {
	respond := func(status int) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
	}

	t.Run("logs status and platform", func(t *testing.T) {
		var logs bytes.Buffer
		h := Logger(slog.New(slog.NewJSONHandler(&logs, nil)))(respond(http.StatusTooManyRequests))
		req := httptest.NewRequest(http.MethodPut, "/v1/archives/backupid", nil)
		req = req.WithContext(requestcontext.WithClientPlatform(req.Context(), "android"))
		serve(h, req)

		out := logs.String()
		assert.Contains(t, out, `"status":429`)
		assert.Contains(t, out, `"client_platform":"android"`)
		assert.Contains(t, out, `"level":"INFO"`)
	})

	t.Run("server errors log at error level", func(t *testing.T) {
		var logs bytes.Buffer
		h := Logger(slog.New(slog.NewJSONHandler(&logs, nil)))(respond(http.StatusBadGateway))
		serve(h, httptest.NewRequest(http.MethodGet, "/v1/archives/auth", nil))
		assert.Contains(t, logs.String(), `"level":"ERROR"`)
	})

	t.Run("healthy probes are silent", func(t *testing.T) {
		var logs bytes.Buffer
		h := Logger(slog.New(slog.NewJSONHandler(&logs, nil)))(respond(http.StatusOK))
		serve(h, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Empty(t, logs.String())
	})

	t.Run("failing probes are logged", func(t *testing.T) {
		var logs bytes.Buffer
		h := Logger(slog.New(slog.NewJSONHandler(&logs, nil)))(respond(http.StatusServiceUnavailable))
		serve(h, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Contains(t, logs.String(), `"status":503`)
	})
}

func TestStatusWriterKeepsFirstCode(t *testing.T) {
	sw := newStatusWriter(httptest.NewRecorder())
	_, err := sw.Write([]byte("ok"))
	require.NoError(t, err)
	sw.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, sw.status)
}

func TestTimeout(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "timeout")
}

func TestContentTypeJSON(t *testing.T) {
	tests := []struct {
		method      string
		contentType string
		want        int
	}{
		{http.MethodPut, "application/json", http.StatusOK},
		{http.MethodPut, "application/json; charset=utf-8", http.StatusOK},
		{http.MethodPost, "", http.StatusOK},
		{http.MethodPost, "text/plain", http.StatusUnsupportedMediaType},
		{http.MethodPatch, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{http.MethodPost, ";;;", http.StatusUnsupportedMediaType},
		{http.MethodGet, "text/plain", http.StatusOK},
	}
	h := ContentTypeJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.contentType, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			assert.Equal(t, tt.want, serve(h, req).Code)
		})
	}
}

func TestLatencyMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(promauto.With(reg))

	r := chi.NewRouter()
	r.Use(LatencyMiddleware(m))
	r.Get("/v1/archives/{kind}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/v1/archives/auth", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/v1/archives/backupid", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.latency), "both paths share one route label")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	metric := families[0].GetMetric()[0]
	assert.Equal(t, uint64(2), metric.GetHistogram().GetSampleCount())
	labels := map[string]string{}
	for _, lp := range metric.GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}
	assert.Equal(t, map[string]string{"route": "/v1/archives/{kind}", "status": "204"}, labels)
}

func TestLatencyMiddlewareWithoutMetrics(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	assert.Equal(t, http.StatusOK, serve(LatencyMiddleware(nil)(next), httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
