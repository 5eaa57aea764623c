// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"storebot/internal/logger"
)

const (
	Version = "1.0.0"
	BotName = "CSR2 MODS STORE"
)

// Catalogs provides the catalog statistics the health report describes.
type Catalogs interface {
	Stats() map[string]interface{}
}

// SessionCounter reports how many sessions exist.
type SessionCounter interface {
	Count() int
}

// App is the health HTTP server.
type App struct {
	addr          string
	engine        *gin.Engine
	catalogs      Catalogs
	sessions      SessionCounter
	connections   sync.WaitGroup
	totalRequests int64
	now           func() time.Time
}

func New(addr string, catalogs Catalogs, sessions SessionCounter) *App {
	gin.SetMode(gin.ReleaseMode)

	a := &App{
		addr:     addr,
		catalogs: catalogs,
		sessions: sessions,
		now:      time.Now,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), logRequests(), a.trackConnections())
	engine.NoRoute(notFound)
	engine.GET("/health", a.health)
	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	a.engine = engine

	return a
}

// Handler returns the full middleware chain.
func (a *App) Handler() http.Handler {
	return withTimeout(a.engine, 15*time.Second)
}

func (a *App) health(c *gin.Context) {
	stats := a.catalogs.Stats()

	sessions := 0
	if a.sessions != nil {
		sessions = a.sessions.Count()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   a.now().UTC().Format(time.RFC3339Nano),
		"version":     Version,
		"bot":         BotName,
		"cars_loaded": stats["cars_count"],
		"brands":      stats["brands_count"],
		"items":       stats["items_count"],
		"degraded":    stats["degraded"],
		"source":      stats["source"],
		"last_loaded": stats["last_loaded"],
		"cache_age":   stats["cache_age"],
		"sessions":    sessions,
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         a.addr,
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.LogInfo("Starting health server on %s", a.addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "health server failed")
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.LogInfo("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError("Server shutdown error: %v", err)
	}

	logger.LogInfo("Waiting for active connections to finish...")
	a.connections.Wait()
	logger.LogInfo("All connections closed. Total requests handled: %d", a.TotalRequests())
	logger.LogInfo("Server shut down gracefully")
	return nil
}

func (a *App) TotalRequests() int64 {
	return atomic.LoadInt64(&a.totalRequests)
}

// Middleware: timeout handler
func withTimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.TimeoutHandler(h, timeout, "Request timed out")
}

const requestIDKey = "request_id"

// Middleware: tag each request with an id, echoed in X-Request-ID
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Middleware: log requests
func logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(map[string]interface{}{
			"request_id":  c.GetString(requestIDKey),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration":    time.Since(start).String(),
		}).Info("health request")
	}
}

// Middleware: track active connections and total requests
func (a *App) trackConnections() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.connections.Add(1)
		atomic.AddInt64(&a.totalRequests, 1)
		defer a.connections.Done()
		c.Next()
	}
}

func notFound(c *gin.Context) {
	logger.LogInfo("404 not found: %s", c.Request.URL.Path)
	c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "not found"})
}
