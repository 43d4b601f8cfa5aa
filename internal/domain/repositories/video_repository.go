package repositories

import (
	"context"
	"errors"

	"video-uploader/internal/domain/entities"

	"github.com/google/uuid"
)

var ErrVideoNotFound = errors.New("video not found")

// VideoRepository stores video records. Unknown ids yield ErrVideoNotFound.
// The Set methods write only their own columns in one statement and return
// the record as stored afterwards, so concurrent writers of other columns are
// not overwritten.
type VideoRepository interface {
	CreateVideo(ctx context.Context, video *entities.Video) error
	GetVideoByID(ctx context.Context, id uuid.UUID) (*entities.Video, error)
	ListVideosByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Video, error)
	SetVideoLocation(ctx context.Context, id uuid.UUID, url, key string) (*entities.Video, error)
	SetThumbnailURL(ctx context.Context, id uuid.UUID, url string) (*entities.Video, error)
	DeleteVideo(ctx context.Context, id uuid.UUID) error
}
