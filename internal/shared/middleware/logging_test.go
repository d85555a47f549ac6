package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRecorder(t *testing.T) {
	tests := []struct {
		name       string
		handler    func(w http.ResponseWriter)
		wantStatus int
		wantBytes  int
	}{
		{
			name:       "nothing written",
			handler:    func(w http.ResponseWriter) {},
			wantStatus: 0,
		},
		{
			name:       "explicit status",
			handler:    func(w http.ResponseWriter) { w.WriteHeader(http.StatusNotFound) },
			wantStatus: http.StatusNotFound,
		},
		{
			name: "second WriteHeader ignored",
			handler: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusCreated)
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "implicit 200 on write",
			handler:    func(w http.ResponseWriter) { w.Write([]byte("hello")) },
			wantStatus: http.StatusOK,
			wantBytes:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newStatusRecorder(httptest.NewRecorder())
			tt.handler(rec)

			if rec.Status() != tt.wantStatus {
				t.Errorf("Status() = %d, want %d", rec.Status(), tt.wantStatus)
			}
			if rec.bytes != tt.wantBytes {
				t.Errorf("bytes = %d, want %d", rec.bytes, tt.wantBytes)
			}
		})
	}
}

func TestLogging_AssignsRequestID(t *testing.T) {
	var seen string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusAccepted)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/financial/summary", nil))

	if rr.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusAccepted)
	}
	if seen == "" {
		t.Fatal("request id missing from context")
	}
	if got := rr.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("%s = %q, want %q", RequestIDHeader, got, seen)
	}
}

func TestLogging_KeepsIncomingRequestID(t *testing.T) {
	var seen string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if seen != "req-42" {
		t.Errorf("context request id = %q, want req-42", seen)
	}
	if rr.Header().Get(RequestIDHeader) != "req-42" {
		t.Errorf("response request id = %q, want req-42", rr.Header().Get(RequestIDHeader))
	}
}

func TestRouteArea(t *testing.T) {
	tests := map[string]string{
		"/api/financial/transactions/abc123": "/api/financial/transactions",
		"/api/financial/summary/rebuild":     "/api/financial/summary",
		"/financial":                         "/financial",
		"/":                                  "/",
	}
	for path, want := range tests {
		if got := routeArea(path); got != want {
			t.Errorf("routeArea(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestTracing_PassesThroughStatus(t *testing.T) {
	handler := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/financial/summary/rebuild", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}
