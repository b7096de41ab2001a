// Package storage uploads media assets (team crests, tournament hero
// images) to an S3-compatible object store.
package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader abstracts the object store. Keys are stable per asset
// ("teams/42/crest.png"), so re-uploading replaces the object in place.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
