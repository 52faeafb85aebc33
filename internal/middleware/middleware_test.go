package middleware

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgo/huddle/api/internal/model"
)

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func writeString(s string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(s))
	})
}

// ============================================================================
// Chain
// ============================================================================

func TestChain_AppliesOutermostFirst(t *testing.T) {
	t.Parallel()

	tag := func(s string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(s + "("))
				next.ServeHTTP(w, r)
				_, _ = w.Write([]byte(")"))
			})
		}
	}

	rr := serve(Chain(writeString("h"), tag("a"), tag("b"), tag("c")), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "a(b(c(h)))", rr.Body.String())

	rr = serve(Chain(writeString("h")), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "h", rr.Body.String())
}

// ============================================================================
// RequestID
// ============================================================================

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when absent", "", false},
		{"generated when blank", "   ", false},
		{"incoming kept", "req-from-proxy", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			next := &captureHandler{}
			req := httptest.NewRequest(http.MethodGet, "/profiles/bob", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}

			rr := serve(RequestID(next), req)

			id := rr.Header().Get("X-Request-ID")
			assert.Equal(t, id, GetRequestID(next.ctx))
			if tt.keep {
				assert.Equal(t, tt.incoming, id)
			} else {
				assert.Len(t, id, 36)
			}
		})
	}
}

func TestGetRequestID_MissingOrWrongType(t *testing.T) {
	t.Parallel()
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetRequestID(context.WithValue(context.Background(), RequestIDKey, 7)))
}

// ============================================================================
// Recovery
// ============================================================================

func TestRecovery(t *testing.T) {
	t.Parallel()

	rr := serve(Recovery(writeString("fine")), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "fine", rr.Body.String())

	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("nil map write") })
	rr = serve(Recovery(panicky), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"code":5001`)
	assert.NotContains(t, rr.Body.String(), "nil map")
}

func TestRecovery_AbortHandler_Repanics(t *testing.T) {
	t.Parallel()

	aborting := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(Recovery(aborting), httptest.NewRequest(http.MethodGet, "/chat", nil))
	})
}

// ============================================================================
// CORS
// ============================================================================

func TestCORS_Origins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"listed", []string{"https://huddle.example", "https://admin.example"}, "https://admin.example", "https://admin.example"},
		{"unlisted", []string{"https://huddle.example"}, "https://evil.example", ""},
		{"wildcard echoes origin", []string{"*"}, "https://anywhere.example", "https://anywhere.example"},
		{"no origin", []string{"*"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/activities", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			rr := serve(CORS(tt.allowed)(&captureHandler{}), req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.want, rr.Header().Get("Access-Control-Allow-Origin"))
			if tt.want != "" {
				assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
				assert.Equal(t, "Origin", rr.Header().Get("Vary"))
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()
	next := &captureHandler{}
	req := httptest.NewRequest(http.MethodOptions, "/profiles", nil)
	req.Header.Set("Origin", "https://huddle.example")

	rr := serve(CORS([]string{"https://huddle.example"})(next), req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, next.called)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "traceparent")
	assert.Contains(t, rr.Header().Get("Access-Control-Expose-Headers"), "X-Trace-Id")
	assert.Equal(t, "86400", rr.Header().Get("Access-Control-Max-Age"))
}

// ============================================================================
// SecurityHeaders
// ============================================================================

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	for _, dev := range []bool{false, true} {
		next := &captureHandler{}
		rr := serve(SecurityHeaders(dev)(next), httptest.NewRequest(http.MethodGet, "/", nil))

		require.True(t, next.called)
		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "no-referrer", rr.Header().Get("Referrer-Policy"))
		assert.Equal(t, "1; mode=block", rr.Header().Get("X-XSS-Protection"))
		assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))

		csp := rr.Header().Get("Content-Security-Policy")
		for _, source := range []string{"https://fonts.googleapis.com", "https://fonts.gstatic.com", "https://res.cloudinary.com", "blob:", "wss:"} {
			assert.Contains(t, csp, source)
		}

		if dev {
			assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
		} else {
			assert.Equal(t, "max-age=31536000", rr.Header().Get("Strict-Transport-Security"))
		}
	}
}

// ============================================================================
// Compress
// ============================================================================

func TestCompress_Gzip(t *testing.T) {
	t.Parallel()
	body := strings.Repeat(`{"title":"Quiz night"}`, 20)
	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	rr := serve(Compress(writeString(body)), req)

	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", rr.Header().Get("Vary"))
	reader, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()
	plain, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))
}

func TestCompress_Skipped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no gzip accepted", map[string]string{}},
		{"server-sent events", map[string]string{"Accept": "text/event-stream", "Accept-Encoding": "gzip"}},
		{"websocket upgrade", map[string]string{"Upgrade": "websocket", "Accept-Encoding": "gzip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var wrapped bool
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, wrapped = w.(*gzipResponseWriter)
				_, _ = w.Write([]byte("plain"))
			})
			req := httptest.NewRequest(http.MethodGet, "/chat", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			rr := serve(Compress(h), req)

			assert.False(t, wrapped)
			assert.Empty(t, rr.Header().Get("Content-Encoding"))
			assert.Equal(t, "plain", rr.Body.String())
		})
	}
}

// ============================================================================
// Tracing
// ============================================================================

func TestTracing_NoProvider(t *testing.T) {
	t.Parallel()
	next := &captureHandler{}

	rr := serve(Tracing("huddle-test")(next), httptest.NewRequest(http.MethodGet, "/profiles/bob", nil))

	assert.True(t, next.called)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// Not parallel: installs a global tracer provider for its duration.
func TestTracing_RecordsServerSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, trace.SpanContextFromContext(r.Context()).IsValid())
		model.NewInternalError("").WriteJSON(w)
	})
	req := httptest.NewRequest(http.MethodGet, "/profiles/bob", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	rr := serve(Tracing("huddle-test")(failing), req)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rr.Header().Get("X-Trace-Id"))
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /profiles/bob", span.Name)
	assert.Equal(t, trace.SpanKindServer, span.SpanKind)
	assert.Equal(t, "00f067aa0ba902b7", span.Parent.SpanID().String())
	assert.Equal(t, codes.Error, span.Status.Code)
	assert.Contains(t, span.Attributes, attribute.Int("http.response.status_code", http.StatusInternalServerError))
}

// ============================================================================
// Logger and response wrappers
// ============================================================================

func TestLogger_PassesResponseThrough(t *testing.T) {
	t.Parallel()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	})

	rr := serve(Logger(h), httptest.NewRequest(http.MethodPost, "/activities", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "created", rr.Body.String())
}

func TestResponseWriter(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

	_, _ = rw.Write([]byte("body"))
	assert.Equal(t, http.StatusOK, rw.statusCode)

	rw.WriteHeader(http.StatusAccepted)
	assert.Equal(t, http.StatusAccepted, rw.statusCode)
	assert.Same(t, rr, rw.Unwrap())

	_, _, err := rw.Hijack()
	assert.ErrorIs(t, err, errNotHijacker)
}
