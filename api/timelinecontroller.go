package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortsbot/captions"
)

// TimelineRequest asks for the caption plan of a word sequence. Settings
// override the named preset, which overrides the defaults.
type TimelineRequest struct {
	Words    []captions.Word  `json:"words"`
	Preset   string           `json:"preset"`
	Settings *captions.Preset `json:"settings"`
}

// TimelineResponse is a caption plan with its merged spans.
type TimelineResponse struct {
	*captions.Plan
	BatchSpans  []captions.Span `json:"batchSpans"`
	ActiveSpans []captions.Span `json:"activeSpans"`
}

// RegisterTimelineRoutes registers the caption planning endpoint.
func (s *Server) RegisterTimelineRoutes(r *gin.Engine) {
	r.POST("/api/timeline", s.handleTimeline)
}

func (s *Server) handleTimeline(c *gin.Context) {
	var req TimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid JSON payload", err)
		return
	}

	settings, err := s.presets.Resolve(req.Preset)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid caption preset", err)
		return
	}
	if req.Settings != nil {
		settings = req.Settings.Apply(settings)
	}

	plan, err := captions.Build(c.Request.Context(), req.Words, settings)
	switch {
	case errors.Is(err, captions.ErrNoWords), errors.Is(err, captions.ErrInvalidBatchSize):
		respondWithError(c, http.StatusBadRequest, "Invalid timeline request", err)
		return
	case err != nil:
		// Remaining failures are settings validation errors or cancellation.
		if c.Request.Context().Err() != nil {
			respondWithError(c, http.StatusRequestTimeout, "Request cancelled", err)
			return
		}
		respondWithError(c, http.StatusBadRequest, "Invalid caption settings", err)
		return
	}

	respondWithSuccess(c, http.StatusOK, "ok", TimelineResponse{
		Plan:        plan,
		BatchSpans:  plan.BatchSpans(),
		ActiveSpans: plan.ActiveSpans(),
	})
}
