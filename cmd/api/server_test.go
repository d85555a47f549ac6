package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRedirectHandler(t *testing.T) {
	tests := []struct {
		name         string
		allowed      []string
		host         string
		forwarded    string
		target       string
		wantStatus   int
		wantLocation string
	}{
		{
			name:         "drops port",
			host:         "finance.example.com:80",
			target:       "/financial?tab=payments",
			wantStatus:   http.StatusMovedPermanently,
			wantLocation: "https://finance.example.com/financial?tab=payments",
		},
		{
			name:         "ipv6 keeps brackets",
			host:         "[::1]:80",
			target:       "/health",
			wantStatus:   http.StatusMovedPermanently,
			wantLocation: "https://[::1]/health",
		},
		{
			name:         "forwarded host wins",
			allowed:      []string{"finance.example.com"},
			host:         "10.0.0.5",
			forwarded:    "finance.example.com",
			target:       "/api/financial/summary",
			wantStatus:   http.StatusMovedPermanently,
			wantLocation: "https://finance.example.com/api/financial/summary",
		},
		{
			name:       "unknown host rejected",
			allowed:    []string{"finance.example.com"},
			host:       "evil.com",
			target:     "/",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.Host = tt.host
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Host", tt.forwarded)
			}
			rr := httptest.NewRecorder()
			redirectHandler(tt.allowed).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}
