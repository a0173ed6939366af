package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"corralon_backend/platform/apperr"
)

// MaxDocumentSize caps a stored quote document.
const MaxDocumentSize int64 = 10 << 20

const contentTypePDF = "application/pdf"

// ValidateDocument checks the content type and size of a document upload.
func ValidateDocument(contentType string, sizeBytes int64) error {
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if normalized != contentTypePDF {
		return apperr.Validation(fmt.Sprintf("content type %q is not allowed", contentType))
	}
	if sizeBytes <= 0 {
		return apperr.Validation("file size must be greater than 0")
	}
	if sizeBytes > MaxDocumentSize {
		return apperr.Validation(fmt.Sprintf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, MaxDocumentSize))
	}
	return nil
}

// QuoteKey is the object key for a quote: "<yyyy>/<mm>/<number>.pdf".
func QuoteKey(number string, createdAt time.Time) string {
	return path.Join(createdAt.Format("2006"), createdAt.Format("01"), number+".pdf")
}

// DocumentName is the file name part of a key.
func DocumentName(key string) string {
	return path.Base(key)
}
