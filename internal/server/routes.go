package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/courier/internal/handlers"
	"github.com/nfrund/courier/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	authHandler := handlers.NewAuthHandler(s.userStore, s.tokens)
	messageHandler := handlers.NewMessageHandler(s.msgStore, s.userStore)
	uploadHandler := handlers.NewUploadHandler(s.uploads)

	rateLimiter := middleware.RateLimiter()
	protected := middleware.Auth(s.tokens)

	s.E.POST("/api/register", authHandler.Register, rateLimiter)
	s.E.POST("/api/login", authHandler.Login, rateLimiter)
	s.E.POST("/api/logout", authHandler.Logout)
	s.E.GET("/api/profile", authHandler.Profile)

	s.E.GET("/api/messages/:userId", messageHandler.History, protected)
	s.E.GET("/api/people", messageHandler.People, protected)
	s.E.POST("/api/upload", uploadHandler.Upload, protected)

	s.E.GET("/ws", s.wsHandler.Serve)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
