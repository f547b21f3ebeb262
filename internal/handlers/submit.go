package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/session"
	"listing-wizard-backend/internal/submit"
)

type SubmitHandler struct {
	registry  *session.Registry
	assembler *submit.Assembler
}

func NewSubmitHandler(registry *session.Registry, assembler *submit.Assembler) *SubmitHandler {
	return &SubmitHandler{registry: registry, assembler: assembler}
}

// Submit runs the authoritative full-draft validation, posts the listing, and on
// success resets the wizard. Every failure preserves the draft.
func (h *SubmitHandler) Submit(c *gin.Context) {
	sess, ok := currentSession(c, h.registry)
	if !ok {
		return
	}

	listingID, submitErr := h.assembler.Submit(c.Request.Context(), sess.Wizard, sess.Photos)
	if submitErr != nil {
		switch {
		case len(submitErr.Validation) > 0:
			fields := make(map[string][]string, len(submitErr.Validation))
			for field, msg := range submitErr.Validation {
				fields[field] = []string{msg}
			}
			c.JSON(http.StatusUnprocessableEntity, models.SubmitErrorResponse{
				Error:  "draft failed validation",
				Fields: fields,
				Steps:  submitErr.Steps,
			})
		case len(submitErr.Fields) > 0:
			c.JSON(http.StatusUnprocessableEntity, models.SubmitErrorResponse{
				Error:  "listing rejected by backend",
				Fields: submitErr.Fields,
				Steps:  submitErr.Steps,
			})
		default:
			c.JSON(http.StatusBadGateway, models.SubmitErrorResponse{
				Error: "listing submission failed, draft preserved for retry",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, models.SubmitResponse{ListingID: listingID})
}
