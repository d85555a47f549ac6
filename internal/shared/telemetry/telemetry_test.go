package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStackRunsInReverseAndJoinsErrors(t *testing.T) {
	var order []string
	errMeter := errors.New("meter")

	var s stack
	s.push(func(context.Context) error { order = append(order, "meter"); return errMeter })
	s.push(func(context.Context) error { order = append(order, "tracer"); return nil })
	s.push(func(context.Context) error { order = append(order, "server"); return nil })

	err := s.run(context.Background())
	if !errors.Is(err, errMeter) {
		t.Errorf("run() error = %v, want wrapping %v", err, errMeter)
	}
	if strings.Join(order, ",") != "server,tracer,meter" {
		t.Errorf("order = %v", order)
	}

	var empty stack
	if err := empty.run(context.Background()); err != nil {
		t.Errorf("empty run() error = %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := map[float64]string{
		0:    "AlwaysOnSampler",
		1:    "AlwaysOnSampler",
		1.5:  "AlwaysOnSampler",
		0.25: "ParentBased{root:TraceIDRatioBased{0.25}",
	}
	for ratio, want := range tests {
		if got := sampler(ratio).Description(); !strings.HasPrefix(got, want) {
			t.Errorf("sampler(%v) = %q, want prefix %q", ratio, got, want)
		}
	}
}

func TestMetricsServerServesMetrics(t *testing.T) {
	srv := newMetricsServer("9464")
	if srv.Addr != ":9464" {
		t.Errorf("Addr = %q, want :9464", srv.Addr)
	}

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/other", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("GET /other status = %d, want 404", rr.Code)
	}
}
