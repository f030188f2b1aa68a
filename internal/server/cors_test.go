package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{"no origin", "", nil, true},
		{"localhost any port", "http://localhost:3000", DefaultAllowedOrigins, true},
		{"loopback", "https://127.0.0.1:8443", DefaultAllowedOrigins, true},
		{"scheme must match", "https://localhost:3000", []string{"http://localhost"}, false},
		{"remote rejected", "http://evil.example", DefaultAllowedOrigins, false},
		{"localhost prefix trick", "http://localhost.evil.example", DefaultAllowedOrigins, false},
		{"exact with port", "http://docs.local:9000", []string{"http://docs.local:9000"}, true},
		{"other port rejected", "http://docs.local:9001", []string{"http://docs.local:9000"}, false},
		{"wildcard", "http://anything", []string{"*"}, true},
		{"subdomain", "https://docs.example.com", []string{"*.example.com"}, true},
		{"apex not a subdomain", "https://example.com", []string{"*.example.com"}, false},
		{"garbage", "::", DefaultAllowedOrigins, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, originAllowed(tt.origin, tt.allowed))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestCORS_RejectedOrigin(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
