package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/infrastructure/processor"
	infra_repo "video-uploader/internal/infrastructure/repositories"
	"video-uploader/internal/infrastructure/storage"
	apperr "video-uploader/pkg/errors"
	"video-uploader/pkg/file"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testCDN      = "https://d111.cloudfront.net"
	testMaxBytes = 1024
	mp4Body      = "ftyp-isom-fake-mp4-bytes"
)

type uploadFixture struct {
	svc        VideoUploadService
	repo       *infra_repo.InMemoryVideoRepository
	store      *storage.MemoryStorage
	prober     *fakeProber
	rewriter   *copyRewriter
	notifier   *recordingNotifier
	stagingDir string
	owner      uuid.UUID
	video      *entities.Video
	policy     VideoUploadPolicy
}

func newUploadFixture(t *testing.T) *uploadFixture {
	t.Helper()
	f := &uploadFixture{
		repo:       infra_repo.NewInMemoryVideoRepository(),
		store:      storage.NewMemoryStorage(),
		prober:     &fakeProber{orientation: entities.OrientationLandscape},
		rewriter:   &copyRewriter{},
		notifier:   &recordingNotifier{},
		stagingDir: filepath.Join(t.TempDir(), "staging"),
		owner:      uuid.New(),
		policy: VideoUploadPolicy{
			MaxUploadSize:  testMaxBytes,
			AllowedTypes:   []string{"video/mp4"},
			ProcessTimeout: time.Minute,
		},
	}
	f.video = &entities.Video{UserID: f.owner, Title: "boots"}
	require.NoError(t, f.repo.CreateVideo(context.Background(), f.video))
	f.build()
	return f
}

func (f *uploadFixture) build() {
	log := zap.NewNop()
	publisher := storage.NewPublisher(f.store, storage.URLBuilder{Distribution: testCDN}, log)
	f.svc = NewVideoUploadService(
		f.repo,
		storage.NewLocalStorage(f.stagingDir, log),
		f.prober,
		f.rewriter,
		publisher,
		f.notifier,
		f.policy,
		log,
	)
}

func (f *uploadFixture) upload(source UploadSource) (*entities.Video, error) {
	return f.svc.UploadVideo(context.Background(), f.owner, f.video.ID, source)
}

func (f *uploadFixture) assertRecordUnchanged(t *testing.T) {
	t.Helper()
	got, err := f.repo.GetVideoByID(context.Background(), f.video.ID)
	require.NoError(t, err)
	assert.Nil(t, got.VideoURL)
	assert.Nil(t, got.VideoKey)
}

func TestUploadVideo_Success(t *testing.T) {
	f := newUploadFixture(t)

	video, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	require.NoError(t, err)
	require.NotNil(t, video.VideoURL)
	require.NotNil(t, video.VideoKey)

	key := *video.VideoKey
	assert.True(t, strings.HasPrefix(key, "videos/landscape/"), key)
	assert.True(t, strings.HasSuffix(key, ".mp4"), key)
	name := strings.TrimSuffix(strings.TrimPrefix(key, "videos/landscape/"), ".mp4")
	assert.Len(t, name, 43)
	assert.Equal(t, testCDN+"/"+key, *video.VideoURL)

	obj, ok := f.store.Get(key)
	require.True(t, ok)
	assert.Equal(t, mp4Body, string(obj.Data))
	assert.Equal(t, "video/mp4", obj.ContentType)

	stored, err := f.repo.GetVideoByID(context.Background(), f.video.ID)
	require.NoError(t, err)
	assert.Equal(t, *video.VideoURL, *stored.VideoURL)
	assert.Equal(t, "boots", stored.Title)

	assert.Empty(t, dirEntries(t, f.stagingDir))
	require.Len(t, f.rewriter.outputs, 1)
	assert.True(t, strings.HasSuffix(f.rewriter.outputs[0], ProcessedSuffix))

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, key, f.notifier.events[0].Key)
	assert.Equal(t, entities.OrientationLandscape, f.notifier.events[0].Orientation)
}

func TestUploadVideo_OrientationInKey(t *testing.T) {
	for _, o := range []entities.Orientation{entities.OrientationPortrait, entities.OrientationOther} {
		t.Run(string(o), func(t *testing.T) {
			f := newUploadFixture(t)
			f.prober.orientation = o

			video, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(*video.VideoKey, fmt.Sprintf("videos/%s/", o)))
		})
	}
}

func TestUploadVideo_DirectS3URL(t *testing.T) {
	f := newUploadFixture(t)
	log := zap.NewNop()
	urls := storage.URLBuilder{Bucket: "tubely-1", Region: "us-east-2"}
	f.svc = NewVideoUploadService(f.repo, storage.NewLocalStorage(f.stagingDir, log), f.prober, f.rewriter,
		storage.NewPublisher(f.store, urls, log), nil, f.policy, log)

	video, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	require.NoError(t, err)
	assert.Equal(t, "https://tubely-1.s3.us-east-2.amazonaws.com/"+*video.VideoKey, *video.VideoURL)
}

func TestUploadVideo_NotFound(t *testing.T) {
	f := newUploadFixture(t)
	opened := false

	_, err := f.svc.UploadVideo(context.Background(), f.owner, uuid.New(), sourceOf(mp4Body, 10, "video/mp4", &opened))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.False(t, opened)
}

func TestUploadVideo_NonOwnerRejectedBeforeBodyIsRead(t *testing.T) {
	f := newUploadFixture(t)
	resolved := false
	source := func() (*UploadRequest, error) {
		resolved = true
		return nil, errors.New("should not be called")
	}

	_, err := f.svc.UploadVideo(context.Background(), uuid.New(), f.video.ID, source)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.False(t, resolved)
	assert.Empty(t, dirEntries(t, f.stagingDir))
	assert.Zero(t, f.prober.calls)
}

func TestUploadVideo_ValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		source func(opened *bool) UploadSource
		code   string
	}{
		{"missing field", func(*bool) UploadSource { return missingSource() }, "missing_file"},
		{"declared too big", func(o *bool) UploadSource {
			return sourceOf(mp4Body, testMaxBytes+1, "video/mp4", o)
		}, "file_too_big"},
		{"wrong media type", func(o *bool) UploadSource {
			return sourceOf(mp4Body, int64(len(mp4Body)), "video/quicktime", o)
		}, "invalid_file_type"},
		{"media type with parameters", func(o *bool) UploadSource {
			return sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4; codecs=avc1", o)
		}, "invalid_file_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newUploadFixture(t)
			opened := false

			_, err := f.upload(tc.source(&opened))
			var ue *apperr.UploadError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, apperr.KindValidation, ue.Kind)
			assert.Equal(t, tc.code, ue.Code)
			assert.False(t, opened, "body must not be consumed")
			assert.Empty(t, dirEntries(t, f.stagingDir))
			assert.Zero(t, f.prober.calls)
			f.assertRecordUnchanged(t)
		})
	}
}

func TestUploadVideo_UnderstatedSize(t *testing.T) {
	f := newUploadFixture(t)
	body := strings.Repeat("x", testMaxBytes+10)

	_, err := f.upload(sourceOf(body, 10, "video/mp4", nil))
	var ue *apperr.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "file_too_big", ue.Code)
	assert.Empty(t, dirEntries(t, f.stagingDir))
	assert.Zero(t, f.prober.calls)
	f.assertRecordUnchanged(t)
}

func TestUploadVideo_ProbeFailure(t *testing.T) {
	f := newUploadFixture(t)
	f.prober.err = &processor.ToolError{Tool: "ffprobe", ExitCode: 1, Stderr: "moov atom not found"}

	_, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	var ue *apperr.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, apperr.KindProbe, ue.Kind)
	assert.Equal(t, "moov atom not found", ue.Detail)

	assert.Empty(t, dirEntries(t, f.stagingDir))
	assert.Empty(t, f.rewriter.outputs)
	assert.Empty(t, f.store.Keys())
	assert.Empty(t, f.notifier.events)
	f.assertRecordUnchanged(t)
}

func TestUploadVideo_ToolUnavailable(t *testing.T) {
	f := newUploadFixture(t)
	f.prober.err = fmt.Errorf("%w: ffprobe: executable file not found in $PATH", processor.ErrToolUnavailable)

	_, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	assert.True(t, apperr.Is(err, apperr.KindExternalTool))
	assert.Empty(t, dirEntries(t, f.stagingDir))
}

func TestUploadVideo_ProbeTimeout(t *testing.T) {
	f := newUploadFixture(t)
	f.prober.block = true
	f.policy.ProcessTimeout = 20 * time.Millisecond
	f.build()

	_, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	assert.True(t, apperr.Is(err, apperr.KindProbe))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, dirEntries(t, f.stagingDir))
}

func TestUploadVideo_RewriteFailure(t *testing.T) {
	f := newUploadFixture(t)
	f.rewriter.err = &processor.ToolError{Tool: "ffmpeg", ExitCode: 1, Stderr: "Invalid data found"}

	_, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	var ue *apperr.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, apperr.KindTranscode, ue.Kind)
	assert.Equal(t, "Invalid data found", ue.Detail)

	assert.Empty(t, dirEntries(t, f.stagingDir), "partial tool output must be released")
	assert.Empty(t, f.store.Keys())
	f.assertRecordUnchanged(t)
}

func TestUploadVideo_PublishFailure(t *testing.T) {
	f := newUploadFixture(t)
	f.store.Err = errors.New("AccessDenied")

	_, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	assert.True(t, apperr.Is(err, apperr.KindPublish))
	assert.Empty(t, dirEntries(t, f.stagingDir))
	assert.Empty(t, f.notifier.events)
	f.assertRecordUnchanged(t)
}

// failingLocationRepo fails the record update after publishing succeeded.
type failingLocationRepo struct {
	*infra_repo.InMemoryVideoRepository
	err error
}

func (r *failingLocationRepo) SetVideoLocation(context.Context, uuid.UUID, string, string) (*entities.Video, error) {
	return nil, r.err
}

func TestUploadVideo_RecordUpdateFailureUnpublishes(t *testing.T) {
	f := newUploadFixture(t)
	log := zap.NewNop()
	repo := &failingLocationRepo{InMemoryVideoRepository: f.repo, err: errors.New("db down")}
	f.svc = NewVideoUploadService(repo, storage.NewLocalStorage(f.stagingDir, log), f.prober, f.rewriter,
		storage.NewPublisher(f.store, storage.URLBuilder{Distribution: testCDN}, log), f.notifier, f.policy, log)

	_, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	var ue *apperr.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "internal_error", ue.Code)

	assert.Empty(t, f.store.Keys(), "published object must be removed again")
	assert.Empty(t, dirEntries(t, f.stagingDir))
	assert.Empty(t, f.notifier.events)
	f.assertRecordUnchanged(t)
}

// cancellingReader cancels the request after handing out its first chunk.
type cancellingReader struct {
	r      io.Reader
	cancel context.CancelFunc
	reads  int
}

func (c *cancellingReader) Read(p []byte) (int, error) {
	c.reads++
	if c.reads == 2 {
		c.cancel()
	}
	if len(p) > 4 {
		p = p[:4]
	}
	return c.r.Read(p)
}

func TestUploadVideo_CancelledMidUpload(t *testing.T) {
	f := newUploadFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	body := &cancellingReader{r: strings.NewReader(mp4Body), cancel: cancel}
	source := func() (*UploadRequest, error) {
		return &UploadRequest{
			Size:      int64(len(mp4Body)),
			MediaType: "video/mp4",
			Open:      func() (io.ReadCloser, error) { return io.NopCloser(body), nil },
		}, nil
	}

	_, err := f.svc.UploadVideo(ctx, f.owner, f.video.ID, source)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, apperr.Is(err, apperr.KindIO))

	assert.Empty(t, dirEntries(t, f.stagingDir))
	assert.Empty(t, f.store.Keys())
	assert.Zero(t, f.prober.calls)
	f.assertRecordUnchanged(t)
}

func TestUploadVideo_KeepsConcurrentThumbnail(t *testing.T) {
	f := newUploadFixture(t)
	thumb := "http://localhost:8091/assets/fresh.png"
	f.prober.onProbe = func() {
		_, err := f.repo.SetThumbnailURL(context.Background(), f.video.ID, thumb)
		require.NoError(t, err)
	}

	video, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	require.NoError(t, err)
	require.NotNil(t, video.ThumbnailURL)
	assert.Equal(t, thumb, *video.ThumbnailURL)

	stored, err := f.repo.GetVideoByID(context.Background(), f.video.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ThumbnailURL)
	assert.Equal(t, thumb, *stored.ThumbnailURL)
	assert.NotNil(t, stored.VideoURL)
}

func TestUploadVideo_NotificationFailureIsIgnored(t *testing.T) {
	f := newUploadFixture(t)
	f.notifier.err = errors.New("redis down")

	video, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	require.NoError(t, err)
	assert.NotNil(t, video.VideoURL)
}

func TestUploadVideo_ReplacesPreviousObject(t *testing.T) {
	f := newUploadFixture(t)

	first, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	require.NoError(t, err)
	second, err := f.upload(sourceOf(mp4Body, int64(len(mp4Body)), "video/mp4", nil))
	require.NoError(t, err)

	assert.NotEqual(t, *first.VideoKey, *second.VideoKey)
	assert.Equal(t, []string{*second.VideoKey}, f.store.Keys())
}

func TestRandomNamesDoNotRepeat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		name, err := file.RandomName()
		require.NoError(t, err)
		require.False(t, seen[name])
		seen[name] = true
	}
}
