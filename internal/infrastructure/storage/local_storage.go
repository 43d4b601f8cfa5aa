package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/repositories"
	"video-uploader/pkg/file"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var errScopeClosed = errors.New("staging scope is closed")

// LocalStorage is the staging area for files that are being processed.
// Concurrent scopes share the directory but only ever touch the names they created.
type LocalStorage struct {
	BasePath string
	log      *zap.Logger
}

var _ repositories.StagingArea = (*LocalStorage)(nil)

func NewLocalStorage(basePath string, log *zap.Logger) *LocalStorage {
	return &LocalStorage{BasePath: basePath, log: log}
}

func (l *LocalStorage) Begin() repositories.StagingScope {
	return &stagingScope{area: l}
}

// Release deletes a staged file. Missing files are not an error.
func (l *LocalStorage) Release(f *entities.StagedFile) error {
	if f == nil || f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Debug("staged file already gone", zap.String("path", f.Path))
			return nil
		}
		return fmt.Errorf("remove %s: %w", f.Path, err)
	}
	l.log.Debug("staged file released", zap.String("path", f.Path))
	return nil
}

// SweepOlderThan removes regular files in the staging root last modified before now-maxAge.
func (l *LocalStorage) SweepOlderThan(maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(l.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	var (
		removed int
		errs    error
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		path := filepath.Join(l.BasePath, entry.Name())
		if err := l.Release(&entities.StagedFile{Path: path}); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	return removed, errs
}

type stagingScope struct {
	area   *LocalStorage
	mu     sync.Mutex
	files  []*entities.StagedFile
	closed bool
}

func (s *stagingScope) track(f *entities.StagedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errScopeClosed
	}
	s.files = append(s.files, f)
	return nil
}

// Stage copies r into a new uniquely named file. The file is tracked before the
// first byte is written so a failed copy is still released on Close.
func (s *stagingScope) Stage(ctx context.Context, r io.Reader, ext string) (*entities.StagedFile, error) {
	if err := os.MkdirAll(s.area.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	name, err := file.RandomName()
	if err != nil {
		return nil, err
	}
	if ext != "" {
		name += "." + ext
	}

	staged := &entities.StagedFile{Path: filepath.Join(s.area.BasePath, name)}
	if err := s.track(staged); err != nil {
		return nil, err
	}

	out, err := os.OpenFile(staged.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	n, copyErr := io.Copy(out, &contextReader{ctx: ctx, r: r})
	closeErr := out.Close()
	staged.Size = n
	if copyErr != nil {
		return nil, fmt.Errorf("write staged file: %w", copyErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("close staged file: %w", closeErr)
	}
	return staged, nil
}

// Derive reserves a sibling path for tool output and tracks it.
func (s *stagingScope) Derive(parent *entities.StagedFile, suffix string) *entities.StagedFile {
	derived := &entities.StagedFile{Path: parent.Path + suffix}
	if err := s.track(derived); err != nil {
		// A closed scope cannot own new files; release eagerly instead.
		_ = s.area.Release(derived)
	}
	return derived
}

func (s *stagingScope) Close() error {
	s.mu.Lock()
	files := s.files
	s.files = nil
	s.closed = true
	s.mu.Unlock()

	var errs error
	for i := len(files) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, s.area.Release(files[i]))
	}
	return errs
}

// contextReader stops a copy as soon as ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
