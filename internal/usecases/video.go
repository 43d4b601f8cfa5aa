package usecases

import (
	"context"
	"errors"
	"strings"

	"video-uploader/internal/domain/dto"
	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/repositories"
	apperr "video-uploader/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VideoService interface {
	CreateVideo(ctx context.Context, userID uuid.UUID, req *dto.CreateVideoRequestDTO) (*entities.Video, error)
	GetVideo(ctx context.Context, userID, videoID uuid.UUID) (*entities.Video, error)
	ListVideos(ctx context.Context, userID uuid.UUID) ([]*entities.Video, error)
	DeleteVideo(ctx context.Context, userID, videoID uuid.UUID) error
}

type videoService struct {
	videos    repositories.VideoRepository
	publisher VideoPublisher
	validate  *validator.Validate
	log       *zap.Logger
}

func NewVideoService(videos repositories.VideoRepository, publisher VideoPublisher, log *zap.Logger) VideoService {
	return &videoService{
		videos:    videos,
		publisher: publisher,
		validate:  validator.New(),
		log:       log,
	}
}

func (s *videoService) CreateVideo(ctx context.Context, userID uuid.UUID, req *dto.CreateVideoRequestDTO) (*entities.Video, error) {
	if req == nil {
		return nil, apperr.ErrInvalidRequest(errors.New("empty body"))
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.ErrInvalidRequest(err)
	}

	video := &entities.Video{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.videos.CreateVideo(ctx, video); err != nil {
		return nil, apperr.ErrInternal(err)
	}
	s.log.Info("video draft created", zap.String("video_id", video.ID.String()), zap.String("user_id", userID.String()))
	return video, nil
}

func (s *videoService) GetVideo(ctx context.Context, userID, videoID uuid.UUID) (*entities.Video, error) {
	return loadOwnedVideo(ctx, s.videos, userID, videoID)
}

func (s *videoService) ListVideos(ctx context.Context, userID uuid.UUID) ([]*entities.Video, error) {
	videos, err := s.videos.ListVideosByUser(ctx, userID)
	if err != nil {
		return nil, apperr.ErrInternal(err)
	}
	return videos, nil
}

// DeleteVideo removes the record; the published object is removed best-effort.
func (s *videoService) DeleteVideo(ctx context.Context, userID, videoID uuid.UUID) error {
	video, err := loadOwnedVideo(ctx, s.videos, userID, videoID)
	if err != nil {
		return err
	}
	if err := s.videos.DeleteVideo(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return apperr.ErrNotFound(err)
		}
		return apperr.ErrInternal(err)
	}

	if video.VideoKey != nil && s.publisher != nil {
		if err := s.publisher.Unpublish(ctx, *video.VideoKey); err != nil {
			s.log.Warn("published object removal failed",
				zap.String("video_id", videoID.String()),
				zap.String("key", *video.VideoKey),
				zap.Error(err))
		}
	}
	s.log.Info("video deleted", zap.String("video_id", videoID.String()))
	return nil
}
