// Package imagecodec converts binary images to and from the data-URI form that the
// session store can hold, and owns the lifecycle of ephemeral preview handles.
package imagecodec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrMalformedEncoding is returned when a persisted photo string does not match the
// data-URI pattern. Callers keep the asset but mark it preview-unavailable.
var ErrMalformedEncoding = errors.New("malformed image encoding")

const dataURIPrefix = "data:"

// Encode wraps raw image bytes into a self-describing data URI. The result is pure
// text and safe to store in the session channel.
func Encode(data []byte, mimeType string) string {
	return dataURIPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// EncodeReader drains r and encodes the bytes. A failed read is reported to the
// caller per-file; it must not abort a whole upload batch.
func EncodeReader(r io.Reader, mimeType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read image data: %w", err)
	}
	return Encode(data, mimeType), nil
}

// Decode parses a data URI back into its byte payload and MIME type. Base64 is
// lossless, so Decode(Encode(b, m)) always reproduces b exactly.
func Decode(encoded string) ([]byte, string, error) {
	if !strings.HasPrefix(encoded, dataURIPrefix) {
		return nil, "", ErrMalformedEncoding
	}
	header, payload, ok := strings.Cut(encoded[len(dataURIPrefix):], ",")
	if !ok {
		return nil, "", ErrMalformedEncoding
	}
	mimeType, found := strings.CutSuffix(header, ";base64")
	if !found || mimeType == "" {
		return nil, "", ErrMalformedEncoding
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return data, mimeType, nil
}

// DetectMimeType resolves an image MIME type from the filename extension. Unknown
// extensions come back as application/octet-stream so callers can reject them.
func DetectMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
