package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	httpTracer             = otel.Tracer("finmgmt/http")
	httpMeter              = otel.Meter("finmgmt/http")
	httpRequestDuration, _ = httpMeter.Float64Histogram("finmgmt.http.request.duration",
		metric.WithDescription("Financial API request duration in seconds"),
		metric.WithUnit("s"),
	)
	httpResponseSize, _ = httpMeter.Int64Histogram("finmgmt.http.response.size",
		metric.WithDescription("Financial API response body size"),
		metric.WithUnit("By"),
	)
)

// Tracing starts a server span per request and records duration and
// response size, grouped by area so that ids in paths do not explode the
// metric cardinality.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		area := routeArea(r.URL.Path)
		ctx, span := httpTracer.Start(r.Context(), r.Method+" "+area,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.request_id", RequestIDFromContext(r.Context())),
			),
		)
		defer span.End()

		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.Status()
		if status == 0 {
			status = http.StatusOK
		}

		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		attrs := metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", area),
			attribute.Int("http.status_code", status),
		)
		httpRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		httpResponseSize.Record(ctx, int64(rec.bytes), attrs)
	})
}

// routeArea reduces a path to its first three segments, e.g.
// /api/financial/transactions/abc -> /api/financial/transactions.
func routeArea(path string) string {
	parts := strings.SplitN(strings.Trim(path, "/"), "/", 4)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return "/" + strings.Join(parts, "/")
}
