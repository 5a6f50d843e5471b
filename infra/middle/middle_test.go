package middle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/eventpay/infra/logger"
	"github.com/mstgnz/eventpay/infra/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	})
}

func TestRateLimiter(t *testing.T) {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     2, // 2 requests per window
		window:   100 * time.Millisecond,
	}

	clientIP := "192.168.1.1"

	if !rl.Allow(clientIP) {
		t.Error("First request should be allowed")
	}
	if !rl.Allow(clientIP) {
		t.Error("Second request should be allowed")
	}
	if rl.Allow(clientIP) {
		t.Error("Third request should be blocked")
	}
	if !rl.Allow("10.0.0.1") {
		t.Error("Other clients have their own window")
	}

	time.Sleep(150 * time.Millisecond)
	if !rl.Allow(clientIP) {
		t.Error("Request after window should be allowed")
	}
}

func TestNewRateLimiter_Default(t *testing.T) {
	if rl := NewRateLimiter(0); rl.rate != 100 {
		t.Errorf("Expected default rate 100, got %d", rl.rate)
	}
	if rl := NewRateLimiter(5); rl.rate != 5 {
		t.Errorf("Expected rate 5, got %d", rl.rate)
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(10)
	rl.Allow("1.1.1.1")

	rl.sweep(time.Now())
	if len(rl.visitors) != 1 {
		t.Fatal("Fresh visitors must be kept")
	}

	rl.sweep(time.Now().Add(3 * time.Minute))
	if len(rl.visitors) != 0 {
		t.Error("Stale visitors must be removed")
	}
}

func TestRateLimiter_RunStopsOnCancel(t *testing.T) {
	rl := NewRateLimiter(1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Run did not return after cancel")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     1,
		window:   time.Second,
	}
	handler := RateLimitMiddleware(rl)(okHandler())

	req1 := httptest.NewRequest("GET", "/test", nil)
	req1.RemoteAddr = "192.168.1.1:12345"
	rr1 := httptest.NewRecorder()
	handler.ServeHTTP(rr1, req1)

	if rr1.Code != http.StatusOK {
		t.Errorf("First request should succeed, got status %d", rr1.Code)
	}

	req2 := httptest.NewRequest("GET", "/test", nil)
	req2.RemoteAddr = "192.168.1.1:12346"
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req2)

	if rr2.Code != http.StatusTooManyRequests {
		t.Errorf("Second request should be rate limited, got status %d", rr2.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{name: "forwarded list", headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, remoteAddr: "10.0.0.1:80", want: "203.0.113.5"},
		{name: "forwarded single", headers: map[string]string{"X-Forwarded-For": " 203.0.113.6 "}, remoteAddr: "10.0.0.1:80", want: "203.0.113.6"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, remoteAddr: "10.0.0.1:80", want: "198.51.100.7"},
		{name: "remote addr", remoteAddr: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "ipv6 localhost", remoteAddr: "[::1]:5555", want: "127.0.0.1"},
		{name: "ipv6", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "no port", remoteAddr: "192.0.2.9", want: "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := SecurityHeadersMiddleware()(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))

	expectedHeaders := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "1; mode=block",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}

	for header, expectedValue := range expectedHeaders {
		if rr.Header().Get(header) != expectedValue {
			t.Errorf("Expected %s: %s, got: %s", header, expectedValue, rr.Header().Get(header))
		}
	}
}

func TestIPWhitelistMiddleware(t *testing.T) {
	handler := IPWhitelistMiddleware("127.0.0.1, 192.168.1.100")(okHandler())

	tests := []struct {
		name           string
		clientIP       string
		expectedStatus int
	}{
		{name: "Whitelisted IP", clientIP: "127.0.0.1", expectedStatus: http.StatusOK},
		{name: "Another whitelisted IP", clientIP: "192.168.1.100", expectedStatus: http.StatusOK},
		{name: "Non-whitelisted IP", clientIP: "192.168.1.99", expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = tt.clientIP + ":12345"

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}

	t.Run("empty whitelist allows all", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "8.8.8.8:1"
		rr := httptest.NewRecorder()
		IPWhitelistMiddleware("")(okHandler()).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rr.Code)
		}
	})
}

func TestRequestValidationMiddleware(t *testing.T) {
	handler := RequestValidationMiddleware()(okHandler())

	tests := []struct {
		name           string
		method         string
		contentType    string
		contentLength  int64
		expectedStatus int
	}{
		{name: "Valid JSON POST", method: "POST", contentType: "application/json; charset=utf-8", contentLength: 100, expectedStatus: http.StatusOK},
		{name: "GET request without content type", method: "GET", expectedStatus: http.StatusOK},
		{name: "POST without content type", method: "POST", contentLength: 10, expectedStatus: http.StatusBadRequest},
		{name: "POST with form content type", method: "POST", contentType: "application/x-www-form-urlencoded", contentLength: 10, expectedStatus: http.StatusUnsupportedMediaType},
		{name: "Request too large", method: "POST", contentType: "application/json", contentLength: 2 << 20, expectedStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/test", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			req.ContentLength = tt.contentLength

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.GetRequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

		if seen == "" {
			t.Fatal("Expected a generated request id")
		}
		if rr.Header().Get(RequestIDHeader) != seen {
			t.Errorf("Expected response header %s, got %s", seen, rr.Header().Get(RequestIDHeader))
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if seen != "req-42" {
			t.Errorf("Expected req-42, got %s", seen)
		}
	})
}

func TestRequestLoggingMiddleware_PassesThrough(t *testing.T) {
	handler := RequestLoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/x", nil))

	if rr.Code != http.StatusCreated || rr.Body.String() != "created" {
		t.Errorf("Unexpected response %d %q", rr.Code, rr.Body.String())
	}
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	rw.WriteHeader(http.StatusFound)
	rw.WriteHeader(http.StatusInternalServerError)
	n, _ := rw.Write([]byte("abc"))

	if rw.statusCode != http.StatusFound || rec.Code != http.StatusFound {
		t.Errorf("Expected 302, got %d/%d", rw.statusCode, rec.Code)
	}
	if n != 3 || rw.bytes != 3 {
		t.Errorf("Expected 3 bytes, got %d", rw.bytes)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware())
	r.Get("/api/registrations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues("/api/registrations/{id}", "GET", "404")
	before := testutil.ToFloat64(counter)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/registrations/MO-1", nil))

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected counter %v, got %v", before+1, got)
	}
}
