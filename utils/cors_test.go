package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		origin  string
		allowed bool
	}{
		// Extension origins
		{"chrome-extension://abcdefghijklmnop", true},
		{"moz-extension://4b3f-1c2d", true},

		// Localhost and loopback
		{"http://localhost", true},
		{"http://localhost:8090", true},
		{"http://127.0.0.1:8090", true},
		{"http://[::1]:8090", true},

		// Private ranges
		{"http://192.168.1.50:8090", true},
		{"http://10.0.0.5", true},
		{"http://172.16.0.1", true},
		{"http://169.254.1.1", true},

		// LAN names
		{"http://mybox.local", true},
		{"http://mybox.local:8090", true},
		{"http://nas", true},

		// Public origins
		{"https://example.com", false},
		{"http://8.8.8.8", false},
		{"http://172.32.0.1", false}, // just outside 172.16/12

		// Garbage
		{"", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		if got := IsAllowedOrigin(tt.origin); got != tt.allowed {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.allowed)
		}
	}
}

func TestCORSMiddlewareSetsHeadersForAllowedOrigin(t *testing.T) {
	r := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "chrome-extension://abcdefghijklmnop")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "chrome-extension://abcdefghijklmnop" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORSMiddlewareIgnoresPublicOrigin(t *testing.T) {
	r := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestPreflightShortCircuits(t *testing.T) {
	r := NewRouter()

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", rec.Code)
	}
}
