// Package server assembles the application: configuration, database,
// message bus, connection registry, and the HTTP surface.
package server

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/courier/internal/auth"
	"github.com/nfrund/courier/internal/chat"
	"github.com/nfrund/courier/internal/config"
	"github.com/nfrund/courier/internal/database"
	"github.com/nfrund/courier/internal/domain"
	"github.com/nfrund/courier/internal/handlers"
	"github.com/nfrund/courier/internal/heartbeat"
	"github.com/nfrund/courier/internal/logging"
	"github.com/nfrund/courier/internal/presence"
	"github.com/nfrund/courier/internal/pubsub"
	"github.com/nfrund/courier/internal/registry"
	"github.com/nfrund/courier/internal/storage"
	"github.com/nfrund/courier/internal/websocket"
)

// tokenValidity is how long an issued session token stays valid.
const tokenValidity = 24 * time.Hour

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	DB  *surrealdb.DB
	Cfg *config.Config

	bus       *pubsub.Bridge
	registry  *registry.Registry
	monitor   *heartbeat.Monitor
	tokens    *auth.TokenService
	userStore domain.UserRepository
	msgStore  domain.MessageRepository
	uploads   storage.Store
	wsHandler *websocket.Handler

	// cancel stops the background goroutines (heartbeat, subscriptions).
	cancel context.CancelFunc
}

// New creates a fully wired Server instance.
func New() *Server {
	logging.New()
	cfg := config.New()

	ctx, cancel := context.WithCancel(context.Background())

	db, err := database.NewDB(ctx, cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	userStore := database.NewUserStore(db, cfg.DBNs, cfg.DBDb)
	msgStore := database.NewMessageStore(db, cfg.DBNs, cfg.DBDb)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), tokenValidity)

	uploads, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize attachment storage", "error", err)
		os.Exit(1)
	}

	bus := pubsub.NewBridge()
	reg := registry.New()
	pres := presence.NewBroadcaster(reg)
	pipeline := chat.NewPipeline(msgStore, bus)

	// The delivery subscription is established once for the life of the
	// process; it fans every published message out to the recipient's
	// local connections.
	delivery := chat.NewDelivery(reg)
	if err := delivery.Start(ctx, bus); err != nil {
		slog.Error("Failed to subscribe for message delivery", "error", err)
		os.Exit(1)
	}

	monitor := heartbeat.NewMonitor(reg, pres)
	go monitor.Run(ctx)

	wsHandler := websocket.NewHandler(tokens, reg, pres, pipeline)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowCredentials: true,
	}))

	return &Server{
		E:         e,
		DB:        db,
		Cfg:       cfg,
		bus:       bus,
		registry:  reg,
		monitor:   monitor,
		tokens:    tokens,
		userStore: userStore,
		msgStore:  msgStore,
		uploads:   uploads,
		wsHandler: wsHandler,
		cancel:    cancel,
	}
}

// Registry is a getter for the server's connection registry, useful for
// testing.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// UserStore is a getter for the server's user store, useful for testing.
func (s *Server) UserStore() domain.UserRepository {
	return s.userStore
}
