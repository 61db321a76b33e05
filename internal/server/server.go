// Package server exposes the points ledger over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillpath/internal/ledger"
	"github.com/abhisek/skillpath/internal/syncbus"
)

// Publisher announces ledger changes to local views.
type Publisher interface {
	Publish(ctx context.Context, scope syncbus.Scope) error
}

// Server serves the ledger API.
type Server struct {
	ledger *ledger.Ledger
	bus    Publisher
	logger *slog.Logger
	router *gin.Engine
}

// New builds the server and its routes. bus may be nil.
func New(led *ledger.Ledger, bus Publisher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{ledger: led, bus: bus, logger: logger}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.health)

	accounts := r.Group("/v1/accounts")
	{
		accounts.POST("", s.ensureAccount)
		accounts.GET("/:id", s.getAccount)
		accounts.POST("/:id/awards", s.award)
		accounts.GET("/:id/awards", s.history)
	}

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("ledger api listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("ledger api stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds())
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
