/*
 * Copyright 2025 LANPulse Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api serves the classified device list and the embedded dashboard.
package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	lphttp "github.com/lanpulse/lanpulse/pkg/http"
	"github.com/lanpulse/lanpulse/pkg/logger"
	"github.com/lanpulse/lanpulse/pkg/models"
	"github.com/lanpulse/lanpulse/pkg/registry"
)

//go:embed static/index.html
var staticFS embed.FS

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server is the HTTP front end. It only ever reads registry snapshots, so
// requests never block the sweep loop.
type Server struct {
	config     *models.Config
	registry   *registry.DeviceRegistry
	router     *mux.Router
	httpServer *http.Server
	logger     logger.Logger
	now        func() time.Time
}

// NewServer creates the API server and wires its routes.
func NewServer(config *models.Config, reg *registry.DeviceRegistry, log logger.Logger) *Server {
	s := &Server{
		config:   config,
		registry: reg,
		router:   mux.NewRouter(),
		logger:   log.WithComponent("api"),
		now:      time.Now,
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(lphttp.CommonMiddleware(s.logger))

	s.router.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/devices", s.handleDevices).Methods(http.MethodGet, http.MethodOptions)
}

// Router exposes the handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves HTTP until the context is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.config.ListenAddr).Msg("HTTP server listening")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown failed")

		return err
	}

	s.logger.Info().Msg("HTTP server stopped")

	return ctx.Err()
}

// handleDevices returns the classified device list. Before the first sweep
// completes this is still a well-formed response, listing only whatever the
// known-hosts seed made visible.
func (s *Server) handleDevices(w http.ResponseWriter, _ *http.Request) {
	devices, baselineDone := s.registry.Snapshot()

	resp := models.DevicesResponse{
		Network: s.config.Network,
		Devices: BuildDeviceList(devices, baselineDone, s.now(), s.config.NewDeviceWindow),
	}

	s.writeJSON(w, &resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if _, err := w.Write(page); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write dashboard response")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}
