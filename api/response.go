package api

import (
	"github.com/gin-gonic/gin"

	"shortsbot/logger"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondWithError(c *gin.Context, status int, message string, err error) {
	resp := Response{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
		logger.Sugar().Warnf("❌ API Error: %s - %v", message, err)
	}
	c.AbortWithStatusJSON(status, resp)
}

func respondWithSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}
