package usecases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/infrastructure/processor"
	apperr "video-uploader/pkg/errors"
	"video-uploader/pkg/file"
	"video-uploader/pkg/helper"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ThumbnailPolicy struct {
	MaxUploadSize int64
	AllowedTypes  []string
	AssetsRoot    string
	PublicBaseURL string
	Size          processor.ResizeOption
}

// assetURL returns the public URL of a file stored in the assets root.
func (p ThumbnailPolicy) assetURL(name string) string {
	return fmt.Sprintf("%s/assets/%s", p.PublicBaseURL, name)
}

// assetPath maps a URL produced by assetURL back to its file, or "" when the
// URL points elsewhere.
func (p ThumbnailPolicy) assetPath(url string) string {
	prefix := p.PublicBaseURL + "/assets/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	name := filepath.Base(strings.TrimPrefix(url, prefix))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return filepath.Join(p.AssetsRoot, name)
}

type ThumbnailService interface {
	UploadThumbnail(ctx context.Context, userID, videoID uuid.UUID, source UploadSource) (*entities.Video, error)
}

type thumbnailService struct {
	videos repositories.VideoRepository
	policy ThumbnailPolicy
	log    *zap.Logger
}

func NewThumbnailService(videos repositories.VideoRepository, policy ThumbnailPolicy, log *zap.Logger) ThumbnailService {
	if policy.Size.Width == 0 || policy.Size.Height == 0 {
		policy.Size = processor.DefaultThumbnailSize
	}
	return &thumbnailService{videos: videos, policy: policy, log: log}
}

func (s *thumbnailService) UploadThumbnail(ctx context.Context, userID, videoID uuid.UUID, source UploadSource) (*entities.Video, error) {
	log := s.log.With(zap.String("video_id", videoID.String()), zap.String("user_id", userID.String()))

	video, err := loadOwnedVideo(ctx, s.videos, userID, videoID)
	if err != nil {
		return nil, err
	}

	req, err := resolveSource(source)
	if err != nil {
		return nil, err
	}
	if req.Size > s.policy.MaxUploadSize {
		return nil, apperr.ErrFileTooBig(fmt.Errorf("declared size %d exceeds %d", req.Size, s.policy.MaxUploadSize))
	}
	if !helper.IsAllowedMediaType(req.MediaType, s.policy.AllowedTypes) {
		return nil, apperr.ErrInvalidFileType(fmt.Errorf("media type %q", req.MediaType))
	}

	data, err := s.read(req)
	if err != nil {
		return nil, err
	}

	detected := mimetype.Detect(data)
	if !helper.IsAllowedMediaType(detected.String(), s.policy.AllowedTypes) {
		return nil, apperr.ErrInvalidFileType(fmt.Errorf("content is %s, declared %s", detected.String(), req.MediaType))
	}

	resized, bounds, err := processor.FitImage(bytes.NewReader(data), detected.String(), s.policy.Size)
	if err != nil {
		return nil, apperr.ErrImage(err)
	}

	name, err := file.RandomName()
	if err != nil {
		return nil, apperr.ErrInternal(err)
	}
	filename := name + "." + helper.ExtensionForMediaType(detected.String())
	path := filepath.Join(s.policy.AssetsRoot, filename)
	if err := os.MkdirAll(s.policy.AssetsRoot, 0755); err != nil {
		return nil, apperr.ErrIO(err)
	}
	if err := os.WriteFile(path, resized, 0644); err != nil {
		return nil, apperr.ErrIO(err)
	}

	updated, err := s.videos.SetThumbnailURL(ctx, video.ID, s.policy.assetURL(filename))
	if err != nil {
		s.remove(log, path)
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return nil, apperr.ErrNotFound(err)
		}
		return nil, apperr.ErrInternal(err)
	}

	if video.ThumbnailURL != nil {
		if old := s.policy.assetPath(*video.ThumbnailURL); old != "" && old != path {
			s.remove(log, old)
		}
	}

	log.Info("thumbnail stored",
		zap.String("file", filename),
		zap.Int("width", bounds.X),
		zap.Int("height", bounds.Y))
	return updated, nil
}

func (s *thumbnailService) read(req *UploadRequest) ([]byte, error) {
	body, err := req.Open()
	if err != nil {
		return nil, apperr.ErrMissingFile(err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, s.policy.MaxUploadSize+1))
	if err != nil {
		return nil, apperr.ErrIO(err)
	}
	if int64(len(data)) > s.policy.MaxUploadSize {
		return nil, apperr.ErrFileTooBig(fmt.Errorf("received more than %d bytes", s.policy.MaxUploadSize))
	}
	return data, nil
}

func (s *thumbnailService) remove(log *zap.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("thumbnail removal failed", zap.String("path", path), zap.Error(err))
	}
}
