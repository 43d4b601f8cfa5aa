package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) CreateVideo(ctx context.Context, video *entities.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetVideoByID(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	var video entities.Video
	err := r.db.WithContext(ctx).First(&video, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repositories.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return &video, nil
}

func (r *VideoRepository) ListVideosByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Video, error) {
	var videos []*entities.Video
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&videos).Error
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

func (r *VideoRepository) SetVideoLocation(ctx context.Context, id uuid.UUID, url, key string) (*entities.Video, error) {
	return r.updateColumns(ctx, id, map[string]any{"video_url": url, "video_key": key})
}

func (r *VideoRepository) SetThumbnailURL(ctx context.Context, id uuid.UUID, url string) (*entities.Video, error) {
	return r.updateColumns(ctx, id, map[string]any{"thumbnail_url": url})
}

func (r *VideoRepository) updateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) (*entities.Video, error) {
	columns["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&entities.Video{}).
		Where("id = ?", id).
		Updates(columns)
	if res.Error != nil {
		return nil, fmt.Errorf("update video %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, repositories.ErrVideoNotFound
	}
	return r.GetVideoByID(ctx, id)
}

func (r *VideoRepository) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entities.Video{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete video %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrVideoNotFound
	}
	return nil
}
