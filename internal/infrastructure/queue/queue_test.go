package queue

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/infrastructure/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProcessedVideoSerialization(t *testing.T) {
	event := ProcessedVideo{
		VideoID:     "0b6c6a3e-8f0f-4f5e-9a43-0b0f2f1d6e11",
		Key:         "videos/landscape/abc.mp4",
		URL:         "https://cdn.example.com/videos/landscape/abc.mp4",
		Orientation: entities.OrientationLandscape,
	}
	payload, err := SerializeProcessedVideo(event)
	require.NoError(t, err)
	assert.Contains(t, payload, `"orientation":"landscape"`)

	got, err := DeserializeProcessedVideo(payload)
	require.NoError(t, err)
	assert.Equal(t, event, *got)

	_, err = DeserializeProcessedVideo("{")
	assert.Error(t, err)
	_, err = DeserializeProcessedVideo(`{"video_id":"x"}`)
	assert.Error(t, err)
}

func TestWorkerPool_ProcessesAllJobs(t *testing.T) {
	var handled int64
	var mu sync.Mutex
	seen := map[string]bool{}

	pool := NewWorkerPool(3, func(_ context.Context, e ProcessedVideo) error {
		atomic.AddInt64(&handled, 1)
		mu.Lock()
		seen[e.Key] = true
		mu.Unlock()
		return nil
	}, zap.NewNop())

	keys := []string{"a", "b", "c", "d", "e"}
	for _, k := range keys {
		pool.AddJob(ProcessedVideo{Key: k})
	}
	pool.Close()
	pool.Close()

	assert.EqualValues(t, len(keys), atomic.LoadInt64(&handled))
	assert.Len(t, seen, len(keys))
}

func TestVerifyPublished(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.PutObject(ctx, repositories.PutObjectInput{
		Key:         "videos/landscape/a.mp4",
		Body:        strings.NewReader("x"),
		Size:        1,
		ContentType: "video/mp4",
	}))

	verify := VerifyPublished(store, zap.NewNop())
	assert.NoError(t, verify(ctx, ProcessedVideo{Key: "videos/landscape/a.mp4"}))
	assert.ErrorIs(t, verify(ctx, ProcessedVideo{Key: "videos/other/missing.mp4"}), ErrObjectMissing)
}
