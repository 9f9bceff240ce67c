package storage

import (
	"context"
	"errors"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrDisabled is returned by the no-op storage used when S3 is not configured.
var ErrDisabled = errors.New("object storage is disabled")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// PutObject stores body under objectKey, replacing any existing object.
	PutObject(ctx context.Context, objectKey string, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// disabledStorage satisfies FileStorage when no bucket is configured.
type disabledStorage struct{}

// NewDisabledStorage returns a FileStorage whose operations all fail with ErrDisabled.
func NewDisabledStorage() FileStorage { return disabledStorage{} }

func (disabledStorage) PutObject(context.Context, string, string, []byte) error { return ErrDisabled }

func (disabledStorage) GeneratePresignedDownloadURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrDisabled
}

func (disabledStorage) DeleteObject(context.Context, string) error { return ErrDisabled }
