package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxProofSize caps verification proof uploads
const MaxProofSize = int64(10 * 1024 * 1024)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidMimeType = errors.New("file type not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// ProofMimeTypes are the accepted proof document types
var ProofMimeTypes = []string{"application/pdf", "image/jpeg", "image/png", "image/webp"}

// ValidateProof reads r, checks size and sniffed content type, and returns a
// buffer ready for upload
func ValidateProof(r io.Reader) (*bytes.Buffer, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxProofSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyFile
	}
	if int64(len(data)) > MaxProofSize {
		return nil, "", ErrFileTooLarge
	}

	mimeType := http.DetectContentType(data)
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	for _, t := range ProofMimeTypes {
		if t == mimeType {
			return bytes.NewBuffer(data), mimeType, nil
		}
	}
	return nil, "", ErrInvalidMimeType
}

// ExtensionFor returns the file extension for a MIME type
func ExtensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
