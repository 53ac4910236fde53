package server

import (
	"context"
	"net/http"

	"github.com/kyrios-fx/backend/internal/config"
)

type Server struct {
	httpServer *http.Server
}

// NewServer bounds every phase of a request: headers, body, response and keep-alive idle.
func NewServer(cfg *config.Config, handler http.Handler) *Server {
	readHeaderTimeout := cfg.HttpServer.ReadHeaderTimeout
	if readHeaderTimeout <= 0 || readHeaderTimeout > cfg.HttpServer.Timeout {
		readHeaderTimeout = cfg.HttpServer.Timeout
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.HttpServer.Port,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       cfg.HttpServer.Timeout,
			WriteTimeout:      cfg.HttpServer.Timeout,
			IdleTimeout:       cfg.HttpServer.IdleTimeout,
			MaxHeaderBytes:    cfg.HttpServer.MaxHeaderBytes,
		},
	}
}

func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
