package usecases

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/infrastructure/processor"
	infra_repo "video-uploader/internal/infrastructure/repositories"
	apperr "video-uploader/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngImage(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.String()
}

type thumbFixture struct {
	svc    ThumbnailService
	repo   *infra_repo.InMemoryVideoRepository
	assets string
	owner  uuid.UUID
	video  *entities.Video
}

func newThumbFixture(t *testing.T) *thumbFixture {
	t.Helper()
	f := &thumbFixture{
		repo:   infra_repo.NewInMemoryVideoRepository(),
		assets: t.TempDir(),
		owner:  uuid.New(),
	}
	f.video = &entities.Video{UserID: f.owner, Title: "t"}
	require.NoError(t, f.repo.CreateVideo(context.Background(), f.video))
	f.svc = NewThumbnailService(f.repo, ThumbnailPolicy{
		MaxUploadSize: 10 << 20,
		AllowedTypes:  []string{"image/jpeg", "image/png"},
		AssetsRoot:    f.assets,
		PublicBaseURL: "http://localhost:8091",
	}, zap.NewNop())
	return f
}

func (f *thumbFixture) upload(body, mediaType string) (*entities.Video, error) {
	return f.svc.UploadThumbnail(context.Background(), f.owner, f.video.ID,
		sourceOf(body, int64(len(body)), mediaType, nil))
}

func TestUploadThumbnail_Success(t *testing.T) {
	f := newThumbFixture(t)

	video, err := f.upload(pngImage(t, 2560, 1440), "image/png")
	require.NoError(t, err)
	require.NotNil(t, video.ThumbnailURL)
	assert.True(t, strings.HasPrefix(*video.ThumbnailURL, "http://localhost:8091/assets/"))
	assert.True(t, strings.HasSuffix(*video.ThumbnailURL, ".png"))

	files := dirEntries(t, f.assets)
	require.Len(t, files, 1)
	data, err := os.ReadFile(filepath.Join(f.assets, files[0]))
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
}

func TestUploadThumbnail_ReplacesOldFile(t *testing.T) {
	f := newThumbFixture(t)

	_, err := f.upload(pngImage(t, 64, 36), "image/png")
	require.NoError(t, err)
	second, err := f.upload(pngImage(t, 64, 36), "image/png")
	require.NoError(t, err)

	files := dirEntries(t, f.assets)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(*second.ThumbnailURL, files[0]))
}

func TestUploadThumbnail_Rejections(t *testing.T) {
	f := newThumbFixture(t)

	_, err := f.upload(pngImage(t, 10, 10), "image/gif")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// declared png, actually text
	_, err = f.upload("definitely not an image", "image/png")
	var ue *apperr.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "invalid_file_type", ue.Code)

	_, err = f.svc.UploadThumbnail(context.Background(), uuid.New(), f.video.ID, missingSource())
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.UploadThumbnail(context.Background(), f.owner, f.video.ID, missingSource())
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "missing_file", ue.Code)

	assert.Empty(t, dirEntries(t, f.assets))
}

func TestUploadThumbnail_RejectsHugeDimensions(t *testing.T) {
	f := newThumbFixture(t)

	// IHDR for a 100000x100000 RGB image, no pixel data
	chunk := append([]byte("IHDR"), make([]byte, 13)...)
	binary.BigEndian.PutUint32(chunk[4:], 100_000)
	binary.BigEndian.PutUint32(chunk[8:], 100_000)
	chunk[12], chunk[13] = 8, 2
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))

	_, err := f.upload(buf.String(), "image/png")
	var ue *apperr.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "invalid_image", ue.Code)
	assert.True(t, errors.Is(err, processor.ErrImageTooLarge))

	assert.Empty(t, dirEntries(t, f.assets))
	stored, err := f.repo.GetVideoByID(context.Background(), f.video.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ThumbnailURL)
}

func TestThumbnailPolicy_AssetPath(t *testing.T) {
	p := ThumbnailPolicy{AssetsRoot: "/srv/assets", PublicBaseURL: "http://localhost:8091"}
	assert.Equal(t, "/srv/assets/a.png", p.assetPath(p.assetURL("a.png")))
	assert.Equal(t, "", p.assetPath("https://elsewhere.example.com/a.png"))
	assert.Equal(t, "/srv/assets/passwd", p.assetPath("http://localhost:8091/assets/../../etc/passwd"))
}
