// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package devserver serves the compiled artifact during watch mode.
//
// The server exposes the output directory, a websocket live-reload
// channel at /__chtl/reload, and Prometheus metrics at /metrics.
package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	rebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chtl_dev_rebuilds_total",
		Help: "Rebuild notifications pushed to live-reload clients.",
	})
	reloadClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chtl_dev_reload_clients",
		Help: "Connected live-reload websocket clients.",
	})
)

// Server serves one output directory with live reload.
type Server struct {
	dir string
	log *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and reload output.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a Server over the output directory.
func New(dir string, opts ...Option) *Server {
	s := &Server{
		dir:     dir,
		log:     slog.Default(),
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			// The dev server is local-only tooling.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the gin engine serving artifacts, reload and metrics.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/__chtl/reload", s.handleReload)
	engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.dir))))
	return engine
}

// Run serves until the context ends.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("dev server listening", "addr", addr, "dir", s.dir)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleReload(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("reload upgrade failed", "error", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	reloadClients.Inc()

	// Reads drain until the client goes away.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			reloadClients.Dec()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// NotifyReload tells every connected client to refresh.
func (s *Server) NotifyReload() {
	rebuildsTotal.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			s.log.Debug("reload push failed", "error", err)
		}
	}
}
