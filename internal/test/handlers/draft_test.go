package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-wizard-backend/internal/handlers"
	"listing-wizard-backend/internal/imagecodec"
	"listing-wizard-backend/internal/middleware"
	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/session"
	"listing-wizard-backend/internal/storage"
)

// testRouter wires the wizard routes over a memory store with a stub auth layer.
func testRouter(t *testing.T) (*gin.Engine, *imagecodec.PreviewRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	previews := imagecodec.NewPreviewRegistry()
	registry := session.NewRegistry(storage.NewMemoryStore(5<<20), previews, time.Hour)
	t.Cleanup(registry.Close)

	draftHandler := handlers.NewDraftHandler(registry, "http://test/previews")
	photosHandler := handlers.NewPhotosHandler(registry, previews, "http://test/previews")

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.OwnerIDKey, "owner-1")
	})
	router.GET("/draft", draftHandler.GetDraft)
	router.PATCH("/draft", draftHandler.UpdateDraft)
	router.POST("/draft/advance", draftHandler.Advance)
	router.POST("/draft/reset", draftHandler.Reset)
	router.POST("/draft/photos", photosHandler.Upload)
	router.DELETE("/draft/photos/:photo_id", photosHandler.Delete)
	router.GET("/previews/:token", photosHandler.Preview)
	return router, previews
}

func TestGetDraft_FreshSession(t *testing.T) {
	router, _ := testRouter(t)

	req, _ := http.NewRequest("GET", "/draft", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StepFirst, resp.Draft.Step)
	assert.Equal(t, "owner-1", resp.Draft.OwnerID)
	assert.Zero(t, resp.PhotoCount)
}

func TestUpdateDraft_AppliesPartialFields(t *testing.T) {
	router, _ := testRouter(t)

	body := `{"name": "Cozy Seaside Flat", "property_type": 4}`
	req, _ := http.NewRequest("PATCH", "/draft", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Cozy Seaside Flat", resp.Draft.Name)
	assert.Equal(t, models.PropertyTypeApartment, resp.Draft.PropertyType)
}

func TestAdvance_BlockedByStepValidation(t *testing.T) {
	router, _ := testRouter(t)

	// Step 1 with an empty draft cannot advance.
	req, _ := http.NewRequest("POST", "/draft/advance", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp models.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Step)
	assert.Contains(t, resp.Fields, "name")
}

func TestAdvance_PassesAfterFixingStep(t *testing.T) {
	router, _ := testRouter(t)

	body := `{"name": "Cozy Seaside Flat", "property_type": 3}`
	req, _ := http.NewRequest("PATCH", "/draft", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", "/draft/advance", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.AdvanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Step)
}

func multipartPhoto(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadAndDeletePhoto(t *testing.T) {
	router, previews := testRouter(t)

	buf, contentType := multipartPhoto(t, "photos", "front.jpg", []byte("jpeg-bytes"))
	req, _ := http.NewRequest("POST", "/draft/photos", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var upload models.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upload))
	require.Len(t, upload.Photos, 1)
	assert.True(t, upload.Photos[0].PreviewAvailable)
	assert.Equal(t, 1, previews.Len())

	req, _ = http.NewRequest("DELETE", "/draft/photos/"+upload.Photos[0].ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, previews.Len())

	// Idempotent: deleting the same photo again still succeeds.
	req, _ = http.NewRequest("DELETE", "/draft/photos/"+upload.Photos[0].ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUpload_NoFiles(t *testing.T) {
	router, _ := testRouter(t)

	buf, contentType := multipartPhoto(t, "unrelated", "front.jpg", []byte("jpeg-bytes"))
	req, _ := http.NewRequest("POST", "/draft/photos", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreview_ServesAndExpires(t *testing.T) {
	router, previews := testRouter(t)

	h := previews.Acquire([]byte("png-bytes"), "image/png")
	req, _ := http.NewRequest("GET", "/previews/"+string(h), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())

	previews.Release(h)
	req, _ = http.NewRequest("GET", "/previews/"+string(h), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReset_ClearsDraft(t *testing.T) {
	router, previews := testRouter(t)

	body := `{"name": "Cozy Seaside Flat"}`
	req, _ := http.NewRequest("PATCH", "/draft", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	buf, contentType := multipartPhoto(t, "photos", "front.jpg", []byte("jpeg-bytes"))
	req, _ = http.NewRequest("POST", "/draft/photos", buf)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", "/draft/reset", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Draft.Name)
	assert.Equal(t, models.StepFirst, resp.Draft.Step)
	assert.Equal(t, 0, previews.Len(), "reset releases every preview handle")
}
