package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"finmgmt/internal/shared/auth"
)

type ContextKey string

const PrincipalKey ContextKey = "principal"

// Auth resolves the caller from the session cookie or, for API clients, a
// bearer token, and stores the auth.Principal in the request context.
func Auth(verifier auth.Verifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, problem := requestToken(r, cookieName)
			if problem == "" {
				principal, err := verifier.Verify(r.Context(), token)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
					return
				}
				problem = "Invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					problem = "Token expired"
				}
			}

			w.Header().Set("WWW-Authenticate", `Bearer realm="finmgmt"`)
			http.Error(w, problem, http.StatusUnauthorized)
		})
	}
}

// requestToken returns the credential carried by r, or a reason why none
// was usable. The cookie wins over the Authorization header.
func requestToken(r *http.Request, cookieName string) (token, problem string) {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value, ""
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "Authentication required"
	}
	scheme, value, found := strings.Cut(header, " ")
	value = strings.TrimSpace(value)
	if !found || !strings.EqualFold(scheme, "Bearer") || value == "" {
		return "", "Invalid authorization header format"
	}
	return value, ""
}

// RequireRole rejects authenticated callers that lack role with 403.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !PrincipalFromContext(r.Context()).HasRole(role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectUnlessRole sends callers that lack role to target instead of
// serving the page.
func RedirectUnlessRole(role, target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !PrincipalFromContext(r.Context()).HasRole(role) {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext returns the authenticated caller, or nil.
func PrincipalFromContext(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(PrincipalKey).(*auth.Principal)
	return p
}
