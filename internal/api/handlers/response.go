package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/paraphe-sign/internal/apperrors"
	"go.uber.org/zap"
)

// Envelope is the uniform response shape every endpoint returns.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// respondError maps the error kind onto an HTTP status. Message carries
// the user-facing summary; Error the developer-diagnostic detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(kind.HTTPStatus(), Envelope{
		Success: false,
		Message: apperrors.UserMessage(err),
		Error:   err.Error(),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(400, Envelope{Success: false, Message: message, Error: "validation: " + message})
}
