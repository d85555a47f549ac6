package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Telemetry adds the standard otelhttp server metrics and extracts incoming
// trace context. Health checks are not traced.
func Telemetry(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "finmgmt-api",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return !corsExemptPaths[r.URL.Path]
		}),
	)
}
