package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestURLBuilder(t *testing.T) {
	cdn := URLBuilder{Distribution: "https://d111.cloudfront.net", Bucket: "tubely", Region: "us-east-2"}
	assert.Equal(t, "https://d111.cloudfront.net/videos/landscape/abc.mp4", cdn.URL("videos/landscape/abc.mp4"))

	direct := URLBuilder{Bucket: "tubely", Region: "us-east-2"}
	assert.Equal(t, "https://tubely.s3.us-east-2.amazonaws.com/videos/other/abc.mp4", direct.URL("videos/other/abc.mp4"))
}

func TestPublisher_Publish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4.processed")
	require.NoError(t, os.WriteFile(path, []byte("fast start bytes"), 0644))

	store := NewMemoryStorage()
	p := NewPublisher(store, URLBuilder{Bucket: "tubely", Region: "us-east-1"}, zap.NewNop())

	loc, err := p.Publish(context.Background(), path, "videos/portrait/abc.mp4", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "videos/portrait/abc.mp4", loc.Key)
	assert.Equal(t, "https://tubely.s3.us-east-1.amazonaws.com/videos/portrait/abc.mp4", loc.URL)

	obj, ok := store.Get("videos/portrait/abc.mp4")
	require.True(t, ok)
	assert.Equal(t, "fast start bytes", string(obj.Data))
	assert.Equal(t, "video/mp4", obj.ContentType)
	assert.Len(t, obj.Metadata["sha256"], 64)

	require.NoError(t, p.Unpublish(context.Background(), loc.Key))
	_, ok = store.Get(loc.Key)
	assert.False(t, ok)
}

func TestPublisher_StoreFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	store := NewMemoryStorage()
	store.Err = errors.New("access denied")
	p := NewPublisher(store, URLBuilder{Distribution: "https://cdn"}, zap.NewNop())

	_, err := p.Publish(context.Background(), path, "videos/other/x.mp4", "video/mp4")
	assert.EqualError(t, err, "access denied")
	assert.Empty(t, store.Keys())
}

func TestPublisher_MissingFile(t *testing.T) {
	p := NewPublisher(NewMemoryStorage(), URLBuilder{Distribution: "https://cdn"}, zap.NewNop())
	_, err := p.Publish(context.Background(), filepath.Join(t.TempDir(), "nope"), "k", "video/mp4")
	assert.Error(t, err)
}
