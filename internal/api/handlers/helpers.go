package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"kr-eta-service/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// decodeJSON reads exactly one JSON object. An empty body leaves v untouched.
func decodeJSON(c *gin.Context, v any) bool {
	dec := json.NewDecoder(c.Request.Body)
	defer c.Request.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeError(c, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(c, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// writeServiceError maps domain errors to HTTP statuses. Anything unexpected
// is logged and reported as a 500.
func writeServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, "flow not found")
	case errors.Is(err, domain.ErrEntryNotFound):
		writeError(c, http.StatusNotFound, "entry not found")
	case errors.Is(err, domain.ErrSessionDone), errors.Is(err, domain.ErrUnknownState):
		writeError(c, http.StatusConflict, "flow cannot accept this step")
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		writeError(c, http.StatusInternalServerError, "internal server error")
	}
}
