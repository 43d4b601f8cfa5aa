package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/infrastructure/processor"
	"video-uploader/internal/infrastructure/queue"
	apperr "video-uploader/pkg/errors"
	"video-uploader/pkg/file"
	"video-uploader/pkg/helper"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProcessedSuffix is appended to a staged input to name the fast-start output.
const ProcessedSuffix = ".processed"

// UploadRequest is one uploaded file as declared by the client.
type UploadRequest struct {
	Size      int64
	MediaType string
	Open      func() (io.ReadCloser, error)
}

// UploadSource resolves the uploaded file lazily, so the request body is only
// touched after the caller is known to own the record.
type UploadSource func() (*UploadRequest, error)

type VideoUploadPolicy struct {
	MaxUploadSize  int64
	AllowedTypes   []string
	ProcessTimeout time.Duration
}

type VideoProber interface {
	ProbeOrientation(ctx context.Context, path string) (entities.Orientation, error)
}

type VideoRewriter interface {
	RewriteFastStart(ctx context.Context, inputPath, outputPath string) error
}

type VideoPublisher interface {
	Publish(ctx context.Context, localPath, key, mediaType string) (*entities.PublishedLocation, error)
	Unpublish(ctx context.Context, key string) error
}

type PublishNotifier interface {
	NotifyProcessed(ctx context.Context, event queue.ProcessedVideo) error
}

type VideoUploadService interface {
	UploadVideo(ctx context.Context, userID, videoID uuid.UUID, source UploadSource) (*entities.Video, error)
}

type videoUploadService struct {
	videos    repositories.VideoRepository
	staging   repositories.StagingArea
	prober    VideoProber
	rewriter  VideoRewriter
	publisher VideoPublisher
	notifier  PublishNotifier
	policy    VideoUploadPolicy
	log       *zap.Logger
}

func NewVideoUploadService(
	videos repositories.VideoRepository,
	staging repositories.StagingArea,
	prober VideoProber,
	rewriter VideoRewriter,
	publisher VideoPublisher,
	notifier PublishNotifier,
	policy VideoUploadPolicy,
	log *zap.Logger,
) VideoUploadService {
	if notifier == nil {
		notifier = queue.NoopNotifier{}
	}
	return &videoUploadService{
		videos:    videos,
		staging:   staging,
		prober:    prober,
		rewriter:  rewriter,
		publisher: publisher,
		notifier:  notifier,
		policy:    policy,
		log:       log,
	}
}

// UploadVideo stages the upload, probes its orientation, rewrites it for fast
// start, publishes it and points the record at the published URL. Staged files
// are removed on every path; the record is written only when every stage
// succeeded, and only its video columns are touched.
func (s *videoUploadService) UploadVideo(ctx context.Context, userID, videoID uuid.UUID, source UploadSource) (*entities.Video, error) {
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
	ext := helper.ExtensionForMediaType(req.MediaType)

	log.Info("uploading video", zap.Int64("size", req.Size))

	scope := s.staging.Begin()
	defer func() {
		if err := scope.Close(); err != nil {
			log.Warn("staging cleanup failed", zap.Error(err))
		}
	}()

	staged, err := s.stage(ctx, scope, req, ext)
	if err != nil {
		log.Warn("staging failed", zap.String("stage", "stage"), zap.Error(err))
		return nil, err
	}
	log.Debug("upload staged", zap.String("path", staged.Path), zap.Int64("size", staged.Size))

	orientation, err := s.probe(ctx, staged.Path)
	if err != nil {
		logToolFailure(log, "probe", err)
		return nil, err
	}
	log.Debug("orientation probed", zap.String("orientation", orientation.String()))

	processed := scope.Derive(staged, ProcessedSuffix)
	if err := s.rewrite(ctx, staged.Path, processed.Path); err != nil {
		logToolFailure(log, "rewrite", err)
		return nil, err
	}
	log.Debug("fast start rewrite done", zap.String("path", processed.Path))

	name, err := file.RandomName()
	if err != nil {
		return nil, apperr.ErrInternal(err)
	}
	key := file.MakeVideoKey(orientation.String(), name, ext)

	location, err := s.publisher.Publish(ctx, processed.Path, key, req.MediaType)
	if err != nil {
		log.Error("publish failed", zap.String("stage", "publish"), zap.String("key", key), zap.Error(err))
		return nil, apperr.ErrPublish(err)
	}

	updated, err := s.videos.SetVideoLocation(ctx, video.ID, location.URL, location.Key)
	if err != nil {
		log.Error("record update failed", zap.String("stage", "update_record"), zap.Error(err))
		s.unpublish(log, location.Key)
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return nil, apperr.ErrNotFound(err)
		}
		return nil, apperr.ErrInternal(err)
	}

	if video.VideoKey != nil && *video.VideoKey != location.Key {
		s.unpublish(log, *video.VideoKey)
	}

	event := queue.ProcessedVideo{
		VideoID:     updated.ID.String(),
		UserID:      updated.UserID.String(),
		Key:         location.Key,
		URL:         location.URL,
		Orientation: orientation,
	}
	if err := s.notifier.NotifyProcessed(ctx, event); err != nil {
		log.Warn("processed notification failed", zap.Error(err))
	}

	log.Info("video published", zap.String("key", location.Key), zap.String("url", location.URL))
	return updated, nil
}

func (s *videoUploadService) stage(ctx context.Context, scope repositories.StagingScope, req *UploadRequest, ext string) (*entities.StagedFile, error) {
	body, err := req.Open()
	if err != nil {
		return nil, apperr.ErrMissingFile(err)
	}
	defer body.Close()

	// one byte over the limit is enough to tell an understated size apart
	limited := &io.LimitedReader{R: body, N: s.policy.MaxUploadSize + 1}
	staged, err := scope.Stage(ctx, limited, ext)
	if err != nil {
		return nil, apperr.ErrIO(err)
	}
	if staged.Size > s.policy.MaxUploadSize {
		return nil, apperr.ErrFileTooBig(fmt.Errorf("received more than %d bytes", s.policy.MaxUploadSize))
	}
	return staged, nil
}

func (s *videoUploadService) probe(ctx context.Context, path string) (entities.Orientation, error) {
	toolCtx, cancel := s.toolContext(ctx)
	defer cancel()

	orientation, err := s.prober.ProbeOrientation(toolCtx, path)
	if err != nil {
		return "", classifyToolError(err, apperr.ErrProbe)
	}
	return orientation, nil
}

func (s *videoUploadService) rewrite(ctx context.Context, in, out string) error {
	toolCtx, cancel := s.toolContext(ctx)
	defer cancel()

	if err := s.rewriter.RewriteFastStart(toolCtx, in, out); err != nil {
		return classifyToolError(err, apperr.ErrTranscode)
	}
	return nil
}

func (s *videoUploadService) toolContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.policy.ProcessTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.policy.ProcessTimeout)
}

// unpublish removes an object without failing the request.
func (s *videoUploadService) unpublish(log *zap.Logger, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.publisher.Unpublish(ctx, key); err != nil {
		log.Warn("object removal failed", zap.String("key", key), zap.Error(err))
	}
}

func classifyToolError(err error, wrap func(error, string) *apperr.UploadError) error {
	if errors.Is(err, processor.ErrToolUnavailable) {
		return apperr.ErrExternalTool(err)
	}
	var toolErr *processor.ToolError
	if errors.As(err, &toolErr) {
		return wrap(err, toolErr.Stderr)
	}
	return wrap(err, "")
}

func logToolFailure(log *zap.Logger, stage string, err error) {
	fields := []zap.Field{zap.String("stage", stage), zap.Error(err)}
	var ue *apperr.UploadError
	if errors.As(err, &ue) && ue.Detail != "" {
		fields = append(fields, zap.String("stderr", ue.Detail))
	}
	log.Error("video processing failed", fields...)
}

// loadOwnedVideo returns the record when it exists and belongs to userID.
func loadOwnedVideo(ctx context.Context, videos repositories.VideoRepository, userID, videoID uuid.UUID) (*entities.Video, error) {
	video, err := videos.GetVideoByID(ctx, videoID)
	if errors.Is(err, repositories.ErrVideoNotFound) {
		return nil, apperr.ErrNotFound(err)
	}
	if err != nil {
		return nil, apperr.ErrInternal(err)
	}
	if video.UserID != userID {
		return nil, apperr.ErrForbidden(nil)
	}
	return video, nil
}

func resolveSource(source UploadSource) (*UploadRequest, error) {
	if source == nil {
		return nil, apperr.ErrMissingFile(errors.New("no upload source"))
	}
	req, err := source()
	if err != nil {
		return nil, apperr.ErrMissingFile(err)
	}
	if req == nil || req.Open == nil {
		return nil, apperr.ErrMissingFile(errors.New("no file in form"))
	}
	return req, nil
}
