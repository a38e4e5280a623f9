package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"quote-board/src/logger"
	"quote-board/src/models"
	"quote-board/src/reconcile"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// BoardServer
//
// The renderer-facing surface: JSON endpoints for pull-based refresh and a
// websocket hub that pushes every refreshed view to connected dashboards.
// -----------------------------------------------------------------------------

type BoardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	Engine *reconcile.Engine
	engine *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MBoardUpdate
	register   chan *Client
	unregister chan *Client

	// Latest pushed state, replayed to new connections
	latestState *models.MBoardUpdate
	stateMutex  sync.RWMutex

	// Owned by the hub goroutine; mirrored here for the status endpoint.
	clientCount atomic.Int32

	startedAt time.Time
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewBoardServer(cfg *models.MConfig, eng *reconcile.Engine, log *logger.Logger) *BoardServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &BoardServer{
		Config:     cfg,
		Logger:     log,
		Engine:     eng,
		engine:     gin.Default(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MBoardUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latestState: &models.MBoardUpdate{
			Type:   "INITIAL",
			Quotes: make(map[string]models.MQuoteView),
		},
		startedAt: time.Now(),
	}

	s.engine.Use(corsMiddleware())
	s.registerRoutes()

	return s
}

// -----------------------------------------------------------------------------

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *BoardServer) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/quote/:symbol", s.handleQuote)
		api.GET("/session/:market", s.handleSession)
		api.POST("/refresh", s.handleRefresh)
		api.GET("/status", s.handleStatus)
	}
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------

// handleQuote reconciles one instrument on demand. A fully unavailable quote
// is an explicit 503 error state; a degraded one is served with provenance so
// the renderer can mark it estimated/delayed.
func (s *BoardServer) handleQuote(c *gin.Context) {
	symbol := c.Param("symbol")

	view, err := s.Engine.Quote(c.Request.Context(), symbol)
	if err != nil {
		if err == reconcile.ErrUnavailable {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable", "symbol": symbol})
			return
		}
		s.Logger.Error("quote %s: %v", symbol, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "symbol": symbol})
		return
	}

	c.JSON(http.StatusOK, view)
}

// -----------------------------------------------------------------------------

func (s *BoardServer) handleSession(c *gin.Context) {
	market := c.Param("market")

	state, err := s.Engine.SessionState(market)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

// -----------------------------------------------------------------------------

// handleRefresh is the explicit user-triggered full flush.
func (s *BoardServer) handleRefresh(c *gin.Context) {
	s.Engine.ForceRefresh()
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

// -----------------------------------------------------------------------------

func (s *BoardServer) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":           s.Config.Name,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"cache":          s.Engine.CacheStats(),
		"markets":        s.Engine.Markets(),
		"ws_clients":     s.clientCount.Load(),
	})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the hub loop and serves HTTP until ctx is cancelled.
func (s *BoardServer) Run(ctx context.Context) error {
	go s.runHub(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Board server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
