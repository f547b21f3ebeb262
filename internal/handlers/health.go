package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"listing-wizard-backend/internal/models"
)

// HealthHandler reports service liveness.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
