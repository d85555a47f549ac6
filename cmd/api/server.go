package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"finmgmt/internal/interfaces/scheduler"
	"finmgmt/internal/shared/config"
	"finmgmt/internal/shared/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Handler      http.Handler
	Addr         string
	TLSEnabled   bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
	AllowedHosts []string
}

// Servers are the running listeners. Errors receives the first fatal
// error from any of them.
type Servers struct {
	Main     *http.Server
	Redirect *http.Server
	Errors   <-chan error
}

// StartServers starts the API server and, when TLS redirect is enabled, the
// plain HTTP redirect server on :80.
func StartServers(scfg ServerConfig) *Servers {
	errCh := make(chan error, 2)
	s := &Servers{
		Main: &http.Server{
			Addr:              scfg.Addr,
			Handler:           scfg.Handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Errors: errCh,
	}

	if scfg.TLSEnabled && scfg.RedirectHTTP {
		s.Redirect = newRedirectServer(scfg.AllowedHosts)
		go serve(errCh, "HTTP redirect", s.Redirect.Addr, s.Redirect.ListenAndServe)
	}

	if scfg.TLSEnabled {
		go serve(errCh, "HTTPS", scfg.Addr, func() error {
			return s.Main.ListenAndServeTLS(scfg.CertPath, scfg.KeyPath)
		})
	} else {
		go serve(errCh, "HTTP", scfg.Addr, s.Main.ListenAndServe)
	}

	return s
}

func serve(errCh chan<- error, name, addr string, listen func() error) {
	log.Printf("%s server starting on %s", name, addr)
	if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- fmt.Errorf("%s server: %w", name, err)
	}
}

type changeListener interface {
	Stop()
}

// GracefulShutdown stops intake first (listener, scheduler) and then drains
// the HTTP servers within timeout.
func GracefulShutdown(s *Servers, sched *scheduler.Scheduler, lst changeListener, timeout time.Duration) {
	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if lst != nil {
		lst.Stop()
	}
	if sched != nil {
		sched.Shutdown(timeout)
	}

	if s.Redirect != nil {
		if err := s.Redirect.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down HTTP redirect server: %v", err)
		}
	}
	if err := s.Main.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down main server: %v", err)
	}

	log.Println("Server stopped")
}

func newRedirectServer(allowedHosts []string) *http.Server {
	return &http.Server{
		Addr:              ":80",
		Handler:           redirectHandler(allowedHosts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// redirectHandler sends every request to the https:// URL of the same host,
// dropping the port. Hosts outside allowedHosts get 400.
func redirectHandler(allowedHosts []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}

		if !middleware.IsHostAllowed(host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}

		target := host
		if h, _, err := net.SplitHostPort(host); err == nil {
			target = h
			if ip := net.ParseIP(h); ip != nil && ip.To4() == nil {
				target = "[" + h + "]"
			}
		}

		http.Redirect(w, r, "https://"+target+r.RequestURI, http.StatusMovedPermanently)
	})
}

// NewServerConfigFromConfig creates ServerConfig from application config.
func NewServerConfigFromConfig(handler http.Handler, cfg *config.Config) ServerConfig {
	return ServerConfig{
		Handler:      handler,
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		TLSEnabled:   cfg.TLS.Enabled,
		CertPath:     cfg.TLS.CertPath,
		KeyPath:      cfg.TLS.KeyPath,
		RedirectHTTP: cfg.TLS.RedirectHTTP,
		AllowedHosts: cfg.Server.AllowedHosts,
	}
}
