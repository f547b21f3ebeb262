package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/session"
	"listing-wizard-backend/internal/validate"
)

type DraftHandler struct {
	registry       *session.Registry
	previewBaseURL string
}

func NewDraftHandler(registry *session.Registry, previewBaseURL string) *DraftHandler {
	return &DraftHandler{registry: registry, previewBaseURL: previewBaseURL}
}

// GetDraft returns the current draft with its photo collection.
func (h *DraftHandler) GetDraft(c *gin.Context) {
	sess, ok := currentSession(c, h.registry)
	if !ok {
		return
	}

	assets := sess.Photos.Assets()
	photos := make([]models.PhotoResponse, len(assets))
	for i, a := range assets {
		photos[i] = a.ToResponse(h.previewBaseURL)
	}

	c.JSON(http.StatusOK, models.DraftResponse{
		Draft:      sess.Wizard.Draft(),
		PhotoCount: len(assets),
		Photos:     photos,
	})
}

// UpdateDraft applies a partial field update; each committed change is written
// through to the session store immediately.
func (h *DraftHandler) UpdateDraft(c *gin.Context) {
	sess, ok := currentSession(c, h.registry)
	if !ok {
		return
	}

	var req models.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	sess.Wizard.Apply(c.Request.Context(), req)
	c.JSON(http.StatusOK, models.DraftResponse{
		Draft:      sess.Wizard.Draft(),
		PhotoCount: sess.Photos.Count(),
	})
}

// Advance validates the current step and, if it passes, moves one step forward.
func (h *DraftHandler) Advance(c *gin.Context) {
	sess, ok := currentSession(c, h.registry)
	if !ok {
		return
	}

	draft := sess.Wizard.Draft()
	errs, notices := validate.ForStep(draft.Step, draft, sess.Photos.Count())
	if !errs.Valid() {
		c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
			Error:  "step validation failed",
			Step:   draft.Step,
			Fields: errs,
		})
		return
	}

	step, err := sess.Wizard.Advance(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "cannot advance",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.AdvanceResponse{Step: step, Notices: notices})
}

// GoTo jumps to a step directly. The empty-name guard may redirect to step 1.
func (h *DraftHandler) GoTo(c *gin.Context) {
	sess, ok := currentSession(c, h.registry)
	if !ok {
		return
	}

	var req models.GoToRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	step := sess.Wizard.GoTo(c.Request.Context(), req.Step)
	c.JSON(http.StatusOK, models.AdvanceResponse{Step: step})
}

// Reset discards the draft, its photos, and both persisted channels.
func (h *DraftHandler) Reset(c *gin.Context) {
	sess, ok := currentSession(c, h.registry)
	if !ok {
		return
	}

	sess.Wizard.Reset(c.Request.Context())
	c.JSON(http.StatusOK, models.DraftResponse{Draft: sess.Wizard.Draft()})
}
