package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	healthPingTimeout = 2 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// QueueStats reports the depth of the event queue for health output.
type QueueStats interface {
	Pending() int
}

type Server struct {
	Engine *gin.Engine
	Addr   string
	db     *sql.DB
	queue  QueueStats
}

func New(addr string, db *sql.DB, mode string) *Server {
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		Engine: gin.Default(),
		Addr:   addr,
		db:     db,
	}

	s.Engine.GET("/health", s.healthHandler)

	return s
}

// WithQueueStats attaches a dispatcher queue to the health endpoint.
func (s *Server) WithQueueStats(q QueueStats) *Server {
	s.queue = q
	return s
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			slog.Error("[Server] Health check failed: database unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
	}

	body := gin.H{
		"status":   "healthy",
		"database": "connected",
	}
	if s.queue != nil {
		body["queued_events"] = s.queue.Pending()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr,
		Handler: s.Engine,
	}

	slog.Info("[Server] Starting HTTP server", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("[Server] Stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("[Server] Forced shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
