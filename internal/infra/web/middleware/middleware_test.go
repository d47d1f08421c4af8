package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordUseCaseExecution(string, bool, time.Duration) {}
func (m *mockMetrics) RecordRequestRejected(string)                       {}
func (m *mockMetrics) RecordStudentEvent(string, string)                  {}
func (m *mockMetrics) ObserveHTTPRequestDuration(method, path, code string, d float64) {
	m.Called(method, path, code, d)
}
func (m *mockMetrics) IncRateLimited(path string)      { m.Called(path) }
func (m *mockMetrics) IncCacheHit(string)              {}
func (m *mockMetrics) IncCacheMiss(string)             {}
func (m *mockMetrics) IncOutboxEventsProcessed(string) {}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	// Arrange
	m := new(mockMetrics)
	m.On("ObserveHTTPRequestDuration", http.MethodGet, "/students/{cpf}", "404", mock.AnythingOfType("float64")).Once()

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/students/{cpf}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	// Act
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/11144477735", nil))

	// Assert
	m.AssertExpectations(t)
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{name: "success logs info", status: http.StatusOK, wantLevel: zapcore.InfoLevel, wantMsg: "http request processed"},
		{name: "server error logs error", status: http.StatusInternalServerError, wantLevel: zapcore.ErrorLevel, wantMsg: "http request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			log := logger.NewFromZap(zap.New(core))

			h := chimw.RequestID(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/students", nil))

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.wantLevel, entry.Level)
			assert.Equal(t, tt.wantMsg, entry.Message)
			fields := entry.ContextMap()
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.NotEmpty(t, fields["request_id"])
		})
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	// Arrange
	m := new(mockMetrics)
	m.On("IncRateLimited", "/api/v1/students").Once()
	limiter := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, Burst: 2})
	h := limiter.Handler(logger.NewNop(), m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Act
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	// Assert
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	m.AssertExpectations(t)

	other := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	other.RemoteAddr = "10.1.1.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_RotatingForwardedForSharesOneBucket(t *testing.T) {
	// Arrange
	m := new(mockMetrics)
	m.On("IncRateLimited", "/api/v1/students").Twice()
	limiter := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, Burst: 1})
	h := limiter.Handler(logger.NewNop(), m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Act
	codes := make([]int, 0, 3)
	for _, spoofed := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
		req.RemoteAddr = "10.1.1.9:5000"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	// Assert
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, limiter.size())
	m.AssertExpectations(t)
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, Burst: 1, ClientTimeout: time.Minute})
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	limiter.visitor("10.0.0.1")
	current = current.Add(30 * time.Second)
	limiter.visitor("10.0.0.2")
	current = current.Add(45 * time.Second)

	limiter.evictIdle()

	assert.Equal(t, 1, limiter.size())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{name: "remote addr without port", remoteAddr: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "forwarded header ignored", remoteAddr: "10.0.0.1:80", forwarded: "203.0.113.7, 10.0.0.1", want: "10.0.0.1"},
		{name: "unparseable remote addr", remoteAddr: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
