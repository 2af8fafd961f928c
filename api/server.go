package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shortsbot/captions"
	"shortsbot/jobs"
	"shortsbot/logger"
	"shortsbot/workflow"
)

// Server serves the job and caption planning API.
type Server struct {
	jobs    *jobs.Manager
	queue   workflow.Enqueuer
	runner  *workflow.Runner
	presets *captions.Presets

	httpServer *http.Server
}

// Options configures optional server collaborators.
type Options struct {
	// Runner enables POST /api/workflow/run.
	Runner *workflow.Runner
	// Presets are the named caption styles for /api/timeline.
	Presets *captions.Presets
}

func NewServer(manager *jobs.Manager, queue workflow.Enqueuer, opts Options) *Server {
	return &Server{
		jobs:    manager,
		queue:   queue,
		runner:  opts.Runner,
		presets: opts.Presets,
	}
}

// NewRouter constructs a Gin engine with registered routes.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	s.RegisterHealthRoutes(r)
	s.RegisterJobRoutes(r)
	s.RegisterTimelineRoutes(r)
	return r
}

// Start listens on port in the background.
func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Sugar().Infof("🚀 API listening on %s", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("HTTP server error: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	logger.Sugar().Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
