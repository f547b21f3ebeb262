// Package listings is the client for the booking-platform creation endpoint.
package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateListingRequest is the wire payload for listing creation.
type CreateListingRequest struct {
	Name         string   `json:"name"`
	PropertyType int      `json:"propertyType"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Features     uint32   `json:"features"`
	Description  string   `json:"description"`
	CheckInTime  string   `json:"checkInTime"`
	CheckOutTime string   `json:"checkOutTime"`
	OwnerID      string   `json:"ownerId"`
	Photos       []string `json:"photos"`
}

type CreateListingResponse struct {
	ID string `json:"id"`
}

// APIError is a structured rejection from the listing backend. Fields maps each
// backend field name to its messages; an empty map means the failure was generic.
type APIError struct {
	StatusCode int
	Fields     map[string][]string
	Body       string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("listing API rejected request (status %d): %d field errors", e.StatusCode, len(e.Fields))
	}
	return fmt.Sprintf("listing API request failed: status %d, body: %s", e.StatusCode, e.Body)
}

// CreateListing posts the assembled payload and returns the created listing id.
func (c *Client) CreateListing(ctx context.Context, payload CreateListingRequest) (*CreateListingResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/establishments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		var errBody struct {
			Errors map[string][]string `json:"errors"`
		}
		if json.Unmarshal(body, &errBody) == nil && len(errBody.Errors) > 0 {
			apiErr.Fields = errBody.Errors
		}
		return nil, apiErr
	}

	var result CreateListingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if result.ID == "" {
		return nil, fmt.Errorf("listing id is empty in response, body: %s", string(body))
	}

	return &result, nil
}

// RetryWithBackoff retries fn for transient failures. Structured API rejections are
// not retried; the user has to fix the draft first.
func (c *Client) RetryWithBackoff(fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if apiErr, ok := err.(*APIError); ok && len(apiErr.Fields) > 0 {
			return err
		}

		lastErr = err
		if i < len(backoffs) {
			time.Sleep(backoffs[i])
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
