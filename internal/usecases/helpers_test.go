package usecases

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/infrastructure/queue"

	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	orientation entities.Orientation
	err         error
	block       bool
	calls       int
	// onProbe runs while the pipeline is mid-flight
	onProbe func()
}

func (f *fakeProber) ProbeOrientation(ctx context.Context, path string) (entities.Orientation, error) {
	f.calls++
	if f.onProbe != nil {
		f.onProbe()
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return f.orientation, nil
}

// copyRewriter stands in for ffmpeg: it copies the input to the output.
type copyRewriter struct {
	err     error
	outputs []string
}

func (r *copyRewriter) RewriteFastStart(ctx context.Context, in, out string) error {
	r.outputs = append(r.outputs, out)
	if r.err != nil {
		// leave a partial output behind like a crashed tool would
		_ = os.WriteFile(out, []byte("partial"), 0644)
		return r.err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0644)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []queue.ProcessedVideo
	err    error
}

func (n *recordingNotifier) NotifyProcessed(_ context.Context, e queue.ProcessedVideo) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

// sourceOf returns an UploadSource over body and records whether the body was opened.
func sourceOf(body string, size int64, mediaType string, opened *bool) UploadSource {
	return func() (*UploadRequest, error) {
		return &UploadRequest{
			Size:      size,
			MediaType: mediaType,
			Open: func() (io.ReadCloser, error) {
				if opened != nil {
					*opened = true
				}
				return io.NopCloser(strings.NewReader(body)), nil
			},
		}, nil
	}
}

func missingSource() UploadSource {
	return func() (*UploadRequest, error) {
		return nil, errors.New("there is no uploaded file associated with the given key")
	}
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
