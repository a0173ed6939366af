// Package storage keeps rendered quote documents in S3-compatible object storage.
package storage

import (
	"context"
	"io"
	"time"
)

// PresignedURL contains the URL and metadata for a presigned download.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DocumentStore stores and serves quote documents from a single bucket.
type DocumentStore interface {
	// Upload writes data under key and returns the stored key.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)

	// DownloadURL creates a presigned URL for the object.
	DownloadURL(ctx context.Context, key string) (*PresignedURL, error)

	// Download streams the object. The caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// EnsureBucket creates the bucket if it doesn't exist.
	EnsureBucket(ctx context.Context) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketQuotePDFs() string
	IsMinIOEnabled() bool
}
