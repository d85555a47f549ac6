package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const hstsMaxAge = 365 * 24 * time.Hour

// HSTS sets Strict-Transport-Security for one year, subdomains included.
func HSTS(next http.Handler) http.Handler {
	value := "max-age=" + strconv.Itoa(int(hstsMaxAge.Seconds())) + "; includeSubDomains"
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", value)
		next.ServeHTTP(w, r)
	})
}

// SecureCookies forces Secure and HttpOnly on every cookie the handler sets,
// and SameSite=Strict unless the handler chose a mode.
func SecureCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cookieGuard{ResponseWriter: w}, r)
	})
}

type cookieGuard struct {
	http.ResponseWriter
	wroteHeader bool
}

func (g *cookieGuard) Write(b []byte) (int, error) {
	if !g.wroteHeader {
		g.WriteHeader(http.StatusOK)
	}
	return g.ResponseWriter.Write(b)
}

func (g *cookieGuard) WriteHeader(code int) {
	if g.wroteHeader {
		return
	}
	g.wroteHeader = true

	h := g.ResponseWriter.Header()
	if raw := h.Values("Set-Cookie"); len(raw) > 0 {
		h.Del("Set-Cookie")
		for _, line := range raw {
			h.Add("Set-Cookie", hardenCookie(line))
		}
	}
	g.ResponseWriter.WriteHeader(code)
}

func (g *cookieGuard) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}

func hardenCookie(line string) string {
	c, err := http.ParseSetCookie(line)
	if err != nil {
		return line
	}
	c.Secure = true
	c.HttpOnly = true
	if c.SameSite == http.SameSiteDefaultMode {
		c.SameSite = http.SameSiteStrictMode
	}
	return c.String()
}

// IsHostAllowed reports whether host may be used in a redirect. An empty
// allow list accepts every host.
func IsHostAllowed(host string, allowedHosts []string) bool {
	if len(allowedHosts) == 0 {
		return true
	}
	return hostMatches(host, allowedHosts)
}

// hostMatches compares host against each allowed entry, first exactly and
// then by hostname alone so that ports on either side are ignored.
func hostMatches(host string, allowedHosts []string) bool {
	host, hostname := splitHost(host)
	if host == "" {
		return false
	}

	for _, entry := range allowedHosts {
		allowed, allowedHostname := splitHost(entry)
		if allowed == "" {
			continue
		}
		if host == allowed || hostname == allowedHostname {
			return true
		}
	}
	return false
}

// splitHost lowercases h and returns it along with its hostname, without
// port or IPv6 brackets.
func splitHost(h string) (full, hostname string) {
	full = strings.ToLower(strings.TrimSpace(h))
	if name, _, err := net.SplitHostPort(full); err == nil {
		return full, name
	}
	return full, strings.TrimSuffix(strings.TrimPrefix(full, "["), "]")
}
