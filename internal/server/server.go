// Package server exposes each player's inventory actor over a WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/gravitas-games/armory/internal/config"
	"github.com/gravitas-games/armory/internal/network"
	"github.com/gravitas-games/armory/pkg/inventory"
	"github.com/gravitas-games/armory/pkg/models"
	"github.com/sirupsen/logrus"
)

// TokenValidator turns a bearer token into an authenticated player.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.Player, error)
}

// Server represents the game server
type Server struct {
	config    *config.Config
	catalog   *inventory.Registry
	log       logrus.FieldLogger
	upgrader  websocket.Upgrader
	httpSrv   *http.Server
	validator TokenValidator
	redis     *redis.Client

	// Connection tracking
	connections map[*Connection]bool
	connMu      sync.RWMutex
	wg          sync.WaitGroup

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New connects to Redis, fetches the token signing key and returns a server
// ready to Start.
func New(cfg *config.Config, catalog *inventory.Registry, log logrus.FieldLogger) (*Server, error) {
	log.Info("Initializing server...")

	ctx, cancel := context.WithCancel(context.Background())

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.WithField("address", cfg.Redis.Address).Info("Connected to Redis")

	validator, err := NewJWTValidator(ctx, cfg.JWT, newRedisBlacklist(redisClient, cfg.Redis.BlacklistPrefix), log)
	if err != nil {
		cancel()
		redisClient.Close()
		return nil, fmt.Errorf("failed to initialize JWT validator: %w", err)
	}

	srv := newServer(ctx, cancel, cfg, catalog, validator, log)
	srv.redis = redisClient

	log.WithField("items", catalog.Len()).Info("Server initialized successfully")
	return srv, nil
}

func newServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, catalog *inventory.Registry, validator TokenValidator, log logrus.FieldLogger) *Server {
	return &Server{
		config:      cfg,
		catalog:     catalog,
		log:         log,
		validator:   validator,
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{"access_token"},
			CheckOrigin: func(r *http.Request) bool {
				// TODO: check origin against a configured allow list
				return true
			},
		},
	}
}

// Handler returns the HTTP routes served by the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.WithFields(logrus.Fields{
		"websocket": fmt.Sprintf("ws://%s/ws", addr),
		"health":    fmt.Sprintf("http://%s/health", addr),
	}).Info("Starting WebSocket server")

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.log.Info("Shutting down server...")

	// Stops every session and the key refresher.
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.log.WithError(err).Warn("HTTP server shutdown error")
		}
	}

	s.connMu.Lock()
	for conn := range s.connections {
		conn.Close()
	}
	s.connMu.Unlock()
	s.wg.Wait()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.WithError(err).Warn("Redis close error")
		}
	}

	s.log.Info("Server shutdown complete")
	return nil
}

// PlayerCount returns the number of connected players.
func (s *Server) PlayerCount() int {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return len(s.connections)
}

// handleWebSocket handles WebSocket connection requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	entry := s.log.WithField("remote", r.RemoteAddr)

	tokenString := extractTokenFromHeader(r)
	if tokenString == "" {
		entry.Info("Missing JWT token")
		http.Error(w, "Missing authentication token", http.StatusUnauthorized)
		return
	}

	player, err := s.validator.ValidateToken(r.Context(), tokenString)
	if err != nil {
		entry.WithError(err).Info("Invalid JWT token")
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	if s.PlayerCount() >= s.config.Session.MaxPlayers {
		entry.WithField("player", player.ID).Warn("Server full, rejecting player")
		http.Error(w, "Server full", http.StatusServiceUnavailable)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		entry.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	entry = entry.WithFields(logrus.Fields{
		"player":   player.ID,
		"username": player.Username,
	})
	player.Connected = true
	player.ConnectedAt = time.Now()
	player.SessionID = uuid.NewString()

	conn := NewConnection(ws, player, entry)
	session, err := NewSession(player.SessionID, player, s.config, s.catalog, conn, entry)
	if err != nil {
		entry.WithError(err).Error("Failed to create session")
		conn.SendError("session_failed", "Failed to create session")
		conn.Close()
		return
	}
	conn.session = session

	s.connMu.Lock()
	s.connections[conn] = true
	s.connMu.Unlock()
	s.wg.Add(1)

	ctx, stop := context.WithCancel(s.ctx)
	conn.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeWelcome,
		Payload: network.WelcomePayload{
			PlayerID:      player.ID,
			Username:      player.Username,
			SessionID:     session.ID,
			InventorySize: s.config.Inventory.InventorySize,
			EquippedSize:  s.config.Inventory.EquippedSize,
		},
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run(ctx)
	}()
	entry.Info("WebSocket connection established")

	conn.Handle(ctx) // Blocking

	stop()
	<-done

	s.connMu.Lock()
	delete(s.connections, conn)
	s.connMu.Unlock()
	s.wg.Done()

	entry.Info("WebSocket connection closed")
}

type healthResponse struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Items   int    `json:"items"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Players: s.PlayerCount(),
		Items:   s.catalog.Len(),
	})
}
