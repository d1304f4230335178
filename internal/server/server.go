// Package server provides the HTTP API for the swarm.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/codecollab/swarm/internal/history"
	"github.com/codecollab/swarm/internal/swarm"
	"github.com/codecollab/swarm/pkg/models"
)

// Processor runs one task through the swarm pipeline.
type Processor interface {
	Process(ctx context.Context, task string) (*models.RunResult, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server provides HTTP endpoints over the swarm pipeline.
type Server struct {
	echo      *echo.Echo
	processor Processor
	ring      *history.Ring
	store     *history.Store
	logger    *swarm.DebugLogger
	config    *Config
}

// NewServer creates a new HTTP server. The store may be nil; run history
// is then served from the in-memory ring only.
func NewServer(processor Processor, ring *history.Ring, store *history.Store, logger *swarm.DebugLogger, cfg *Config) (*Server, error) {
	if processor == nil {
		return nil, fmt.Errorf("processor cannot be nil")
	}
	if ring == nil {
		ring = history.NewRing(history.DefaultRingCapacity)
	}
	if logger == nil {
		logger = swarm.NopLogger()
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8000,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Log("http %s %s status=%d duration=%s",
				c.Request().Method,
				c.Request().RequestURI,
				c.Response().Status,
				time.Since(start),
			)
			return err
		}
	})

	s := &Server{
		echo:      e,
		processor: processor,
		ring:      ring,
		store:     store,
		logger:    logger,
		config:    cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)

	api := s.echo.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/agents", s.handleAgents)
	api.POST("/process", s.handleProcess)
	api.GET("/history", s.handleHistory)
	api.GET("/history/:id", s.handleHistoryByID)
	api.GET("/stats", s.handleStats)
}

// RootResponse is the response body for GET /.
type RootResponse struct {
	Service string   `json:"service"`
	Status  string   `json:"status"`
	Agents  []string `json:"agents"`
}

// HealthResponse is the response body for GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// AgentInfo describes one fixed role.
type AgentInfo struct {
	Name     string `json:"name"`
	Initial  bool   `json:"initial,omitempty"`
	Terminal bool   `json:"terminal,omitempty"`
}

// AgentsResponse is the response body for GET /api/agents.
type AgentsResponse struct {
	Agents []AgentInfo `json:"agents"`
}

// ProcessRequest is the request body for POST /api/process.
type ProcessRequest struct {
	TaskDescription string `json:"task_description"`
}

// HistoryResponse is the response body for GET /api/history.
type HistoryResponse struct {
	Runs []*models.RunResult `json:"runs"`
}

func (s *Server) handleRoot(c echo.Context) error {
	names := make([]string, 0, len(models.AllRoles()))
	for _, role := range models.AllRoles() {
		names = append(names, string(role))
	}
	return c.JSON(http.StatusOK, RootResponse{
		Service: "codecollab-swarm",
		Status:  "running",
		Agents:  names,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleAgents(c echo.Context) error {
	agents := make([]AgentInfo, 0, len(models.AllRoles()))
	for _, role := range models.AllRoles() {
		agents = append(agents, AgentInfo{
			Name:     string(role),
			Initial:  role == models.InitialRole,
			Terminal: role == models.TerminalRole,
		})
	}
	return c.JSON(http.StatusOK, AgentsResponse{Agents: agents})
}

// handleProcess runs one task synchronously and returns its result.
// Concurrent requests each get an independent run.
func (s *Server) handleProcess(c echo.Context) error {
	var req ProcessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.TaskDescription == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task_description field is required")
	}

	result, err := s.processor.Process(c.Request().Context(), req.TaskDescription)
	if err != nil {
		s.logger.Log("process failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "task processing failed")
	}

	s.ring.Add(result)
	if s.store != nil {
		if err := s.store.SaveRun(result); err != nil {
			// History persistence must not fail the request.
			s.logger.Log("save run %s: %v", result.ID, err)
		}
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, HistoryResponse{Runs: s.ring.List()})
}

func (s *Server) handleHistoryByID(c echo.Context) error {
	id := c.Param("id")

	for _, run := range s.ring.List() {
		if run.ID == id {
			return c.JSON(http.StatusOK, run)
		}
	}

	if s.store != nil {
		run, err := s.store.GetRun(id)
		if err != nil {
			s.logger.Log("get run %s: %v", id, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "history lookup failed")
		}
		if run != nil {
			return c.JSON(http.StatusOK, run)
		}
	}

	return echo.NewHTTPError(http.StatusNotFound, "run not found")
}

func (s *Server) handleStats(c echo.Context) error {
	if s.store == nil {
		stats := history.Stats{}
		for _, run := range s.ring.List() {
			stats.TotalRuns++
			if run.Success {
				stats.SuccessfulRuns++
			}
			if run.Payment != nil {
				stats.TotalEarned += run.Payment.Amount
			}
			stats.TotalTokens += run.TotalTokens
		}
		return c.JSON(http.StatusOK, stats)
	}

	stats, err := s.store.Stats()
	if err != nil {
		s.logger.Log("history stats: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "stats lookup failed")
	}
	return c.JSON(http.StatusOK, stats)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Log("starting http server on %s", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Log("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
