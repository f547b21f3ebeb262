package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"listing-wizard-backend/internal/imagecodec"
	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/photos"
	"listing-wizard-backend/internal/session"
)

type PhotosHandler struct {
	registry       *session.Registry
	previews       *imagecodec.PreviewRegistry
	previewBaseURL string
}

func NewPhotosHandler(registry *session.Registry, previews *imagecodec.PreviewRegistry, previewBaseURL string) *PhotosHandler {
	return &PhotosHandler{
		registry:       registry,
		previews:       previews,
		previewBaseURL: previewBaseURL,
	}
}

// Upload ingests a multipart batch of photos. Failures are per-file; one unreadable
// file never aborts the rest of the batch.
func (h *PhotosHandler) Upload(c *gin.Context) {
	sess, ok := currentSession(c, h.registry)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	form := c.Request.MultipartForm
	if form == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: "multipart form is nil",
		})
		return
	}

	files := form.File["photos"]
	if len(files) == 0 {
		files = form.File["images"]
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files uploaded",
			Message: "provide files under the 'photos' field",
		})
		return
	}

	inputs := make([]photos.FileInput, len(files))
	for i, file := range files {
		file := file
		inputs[i] = photos.FileInput{
			Name: file.Filename,
			Size: file.Size,
			Open: func() (io.ReadCloser, error) {
				return file.Open()
			},
		}
	}

	added, failed, persistErr := sess.Photos.AddPhotos(c.Request.Context(), inputs)

	response := models.UploadResponse{
		Photos: make([]models.PhotoResponse, len(added)),
	}
	for i, a := range added {
		response.Photos[i] = a.ToResponse(h.previewBaseURL)
	}
	for _, fe := range failed {
		response.Errors = append(response.Errors, models.UploadErrorInfo{
			Filename: fe.Filename,
			Error:    fe.Err.Error(),
			Stage:    fe.Stage,
		})
	}
	if persistErr != nil {
		response.Warning = fmt.Sprintf("photos kept in memory only: %v", persistErr)
	}

	if len(added) == 0 && len(failed) > 0 {
		c.JSON(http.StatusUnprocessableEntity, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// List returns the photo collection in display order.
func (h *PhotosHandler) List(c *gin.Context) {
	sess, ok := currentSession(c, h.registry)
	if !ok {
		return
	}

	assets := sess.Photos.Assets()
	response := make([]models.PhotoResponse, len(assets))
	for i, a := range assets {
		response[i] = a.ToResponse(h.previewBaseURL)
	}
	c.JSON(http.StatusOK, gin.H{"photos": response})
}

// Delete removes one photo. Deleting an unknown id succeeds; removal is idempotent.
func (h *PhotosHandler) Delete(c *gin.Context) {
	sess, ok := currentSession(c, h.registry)
	if !ok {
		return
	}

	if err := sess.Photos.RemovePhoto(c.Request.Context(), c.Param("photo_id")); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"removed": true,
			"warning": fmt.Sprintf("photo removed but persistence degraded: %v", err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// Preview serves the bytes behind a live preview handle. Released handles are gone.
func (h *PhotosHandler) Preview(c *gin.Context) {
	token := imagecodec.Handle(c.Param("token"))
	data, mimeType, ok := h.previews.Resolve(token)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "preview not found"})
		return
	}
	c.Data(http.StatusOK, mimeType, data)
}
