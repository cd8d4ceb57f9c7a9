package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selfai-labs/selfai/src/approvals"
	"github.com/selfai-labs/selfai/src/companions"
	"github.com/selfai-labs/selfai/src/interactions"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, companions.ErrNotFound), errors.Is(err, approvals.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, companions.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, companions.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, interactions.ErrGeneration):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("request failed")
	}
	c.JSON(status, gin.H{"err": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"err": msg})
}
