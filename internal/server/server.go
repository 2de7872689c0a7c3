package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/regintel/riskscan/internal/govern"
	"github.com/regintel/riskscan/internal/model"
)

// Server exposes the analysis pipeline over HTTP. One route does the work;
// the rest is lifecycle plumbing.
type Server struct {
	cfg      *model.Config
	governor *govern.Governor
	log      hclog.Logger

	mu       sync.Mutex
	httpSrv  *http.Server
	listener net.Listener
	started  time.Time
}

// New creates a Server around a governor.
func New(cfg *model.Config, governor *govern.Governor, log hclog.Logger) *Server {
	return &Server{cfg: cfg, governor: governor, log: log}
}

// Start binds the listener and serves in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("server already started")
	}

	listener, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.started = time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)

	s.httpSrv = &http.Server{
		Handler:      s.recoverPanics(mux),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("serve failed", "error", err)
		}
	}()

	s.log.Info("listening", "addr", listener.Addr().String())
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpSrv == nil {
		return nil
	}
	err := s.httpSrv.Shutdown(ctx)
	s.httpSrv = nil
	s.listener = nil
	return err
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}
