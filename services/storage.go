package services

import (
	"context"
	"time"
)

// StoredObject describes a blob after upload.
type StoredObject struct {
	Key       string
	URL       string
	Bucket    string
	ETag      string
	VersionID string
}

// ObjectStore is the blob storage holding client documents.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (*StoredObject, error)
	// SignedURL returns a time-limited GET link for key.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}
