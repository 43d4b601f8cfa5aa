package repositories

import (
	"context"
	"io"

	"video-uploader/internal/domain/entities"
)

type PutObjectInput struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectStorage is the durable store published files end up in.
type ObjectStorage interface {
	PutObject(ctx context.Context, in PutObjectInput) error
	DeleteObject(ctx context.Context, key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// StagingArea hands out per-invocation scopes over the local staging root.
type StagingArea interface {
	Begin() StagingScope
}

// StagingScope tracks every file it stages or derives; Close releases all of
// them and is safe to call more than once.
type StagingScope interface {
	Stage(ctx context.Context, r io.Reader, ext string) (*entities.StagedFile, error)
	Derive(parent *entities.StagedFile, suffix string) *entities.StagedFile
	Close() error
}
