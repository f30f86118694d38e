// Package server exposes the game core over a websocket endpoint plus an
// HTTP health probe.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cardbattle/war-server-go/internal/config"
	"github.com/cardbattle/war-server-go/internal/game"
	"go.uber.org/zap"
)

// Server is the HTTP/WebSocket front of the game core.
type Server struct {
	cfg    config.ServerConfig
	sync   *game.Synchronizer
	logger *zap.Logger
	http   *http.Server
}

// New wires the transport over the synchronizer.
func New(cfg config.ServerConfig, sync *game.Synchronizer, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		sync:   sync,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)

	s.http = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return s
}

// Start serves until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("address", s.cfg.Address))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// healthResponse is the health probe payload.
type healthResponse struct {
	Status      string `json:"status"`
	ActiveRooms int    `json:"active_rooms"`
	ServerTime  string `json:"server_time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:      "ok",
		ActiveRooms: s.sync.LiveRoomCount(),
		ServerTime:  time.Now().UTC().Format(time.RFC3339),
	})
}
