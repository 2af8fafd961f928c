package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shortsbot/jobs"
	"shortsbot/logger"
	"shortsbot/workflow"
)

const defaultListLimit = 50

// CreateJobRequest starts a job from a topic or an existing metadata file.
type CreateJobRequest struct {
	Topic        string `json:"topic"`
	Context      string `json:"context"`
	SourceURL    string `json:"sourceUrl"`
	MetadataPath string `json:"metadataPath"`
}

// RegisterJobRoutes registers job and workflow endpoints.
func (s *Server) RegisterJobRoutes(r *gin.Engine) {
	g := r.Group("/api/jobs")
	g.POST("", s.handleCreateJob)
	g.GET("", s.handleListJobs)
	g.GET("/:id", s.handleGetJob)

	r.GET("/api/logs", s.handleLogs)
	r.POST("/api/workflow/run", s.handleRunWorkflow)
}

func (s *Server) handleCreateJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid JSON payload", err)
		return
	}
	if req.Topic == "" && req.MetadataPath == "" {
		respondWithError(c, http.StatusBadRequest, "topic or metadataPath is required", nil)
		return
	}

	job := jobs.New(req.Topic, req.MetadataPath)
	job.Context = req.Context
	job.SourceURL = req.SourceURL

	ctx := c.Request.Context()
	if err := s.jobs.Create(ctx, job); err != nil {
		respondWithError(c, http.StatusInternalServerError, "Failed to create job", err)
		return
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		_ = s.jobs.Fail(ctx, job.ID, err)
		respondWithError(c, http.StatusServiceUnavailable, "Failed to enqueue job", err)
		return
	}

	logger.Sugar().Infof("📥 Job %s queued", job.ID)
	respondWithSuccess(c, http.StatusAccepted, "Job queued", job)
}

func (s *Server) handleListJobs(c *gin.Context) {
	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondWithError(c, http.StatusBadRequest, "limit must be a non-negative integer", err)
			return
		}
		limit = n
	}
	list, err := s.jobs.List(c.Request.Context(), limit)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, "Failed to list jobs", err)
		return
	}
	respondWithSuccess(c, http.StatusOK, "ok", list)
}

func (s *Server) handleGetJob(c *gin.Context) {
	job, err := s.jobs.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) {
		respondWithError(c, http.StatusNotFound, "Job not found", err)
		return
	}
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, "Failed to load job", err)
		return
	}
	respondWithSuccess(c, http.StatusOK, "ok", job)
}

func (s *Server) handleLogs(c *gin.Context) {
	respondWithSuccess(c, http.StatusOK, "ok", s.jobs.Logs())
}

// handleRunWorkflow starts a feed run in the background and returns 202.
func (s *Server) handleRunWorkflow(c *gin.Context) {
	if s.runner == nil {
		respondWithError(c, http.StatusNotImplemented, "Workflow is not configured", nil)
		return
	}
	if s.runner.Busy() {
		respondWithError(c, http.StatusConflict, "Workflow already running", workflow.ErrBusy)
		return
	}
	go func() {
		if _, err := s.runner.Run(context.Background()); err != nil {
			logger.Sugar().Errorf("Workflow error: %v", err)
		}
	}()
	respondWithSuccess(c, http.StatusAccepted, "Workflow initiated", nil)
}
