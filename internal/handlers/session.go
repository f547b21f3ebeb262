package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"listing-wizard-backend/internal/middleware"
	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/session"
)

// currentSession resolves the caller's wizard session, creating or rehydrating it.
// Writes the error response itself when resolution fails.
func currentSession(c *gin.Context, registry *session.Registry) (*session.Session, bool) {
	ownerID, exists := c.Get(middleware.OwnerIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "owner id not found"})
		return nil, false
	}

	sess, err := registry.GetOrCreate(c.Request.Context(), ownerID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to open wizard session",
			Message: err.Error(),
		})
		return nil, false
	}
	return sess, true
}
