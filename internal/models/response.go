package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ValidationErrorResponse carries the field->message map produced by a step validator.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Step   int               `json:"step"`
	Fields map[string]string `json:"fields"`
}

type DraftResponse struct {
	Draft      Draft           `json:"draft"`
	PhotoCount int             `json:"photo_count"`
	Photos     []PhotoResponse `json:"photos,omitempty"`
}

type PhotoResponse struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	Size             int64     `json:"size"`
	MimeType         string    `json:"mime_type"`
	PreviewURL       string    `json:"preview_url,omitempty"`
	PreviewAvailable bool      `json:"preview_available"`
	CreatedAt        time.Time `json:"created_at"`
}

type UploadErrorInfo struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
	Stage    string `json:"stage"`
}

type UploadResponse struct {
	Photos  []PhotoResponse   `json:"photos"`
	Errors  []UploadErrorInfo `json:"errors,omitempty"`
	Warning string            `json:"warning,omitempty"`
}

type AdvanceResponse struct {
	Step    int               `json:"step"`
	Notices map[string]string `json:"notices,omitempty"`
}

type SubmitResponse struct {
	ListingID string `json:"listing_id"`
}

// SubmitErrorResponse maps each rejected backend field to the wizard step that owns it
// so the UI can send the user back to the right screen.
type SubmitErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
	Steps  map[string]int      `json:"steps,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
