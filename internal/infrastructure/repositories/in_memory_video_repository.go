package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"video-uploader/internal/domain/entities"
	"video-uploader/internal/domain/repositories"

	"github.com/google/uuid"
)

// InMemoryVideoRepository keeps records in a map. Callers always receive
// copies, so a record only changes through the Set methods.
type InMemoryVideoRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*entities.Video
}

func NewInMemoryVideoRepository() *InMemoryVideoRepository {
	return &InMemoryVideoRepository{
		data: make(map[uuid.UUID]*entities.Video),
	}
}

func (r *InMemoryVideoRepository) CreateVideo(_ context.Context, video *entities.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	now := time.Now().UTC()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now
	r.data[video.ID] = video.Clone()
	return nil
}

func (r *InMemoryVideoRepository) GetVideoByID(_ context.Context, id uuid.UUID) (*entities.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	video, ok := r.data[id]
	if !ok {
		return nil, repositories.ErrVideoNotFound
	}
	return video.Clone(), nil
}

func (r *InMemoryVideoRepository) ListVideosByUser(_ context.Context, userID uuid.UUID) ([]*entities.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Video, 0)
	for _, video := range r.data {
		if video.UserID != userID {
			continue
		}
		result = append(result, video.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryVideoRepository) SetVideoLocation(_ context.Context, id uuid.UUID, url, key string) (*entities.Video, error) {
	return r.update(id, func(v *entities.Video) {
		v.VideoURL = &url
		v.VideoKey = &key
	})
}

func (r *InMemoryVideoRepository) SetThumbnailURL(_ context.Context, id uuid.UUID, url string) (*entities.Video, error) {
	return r.update(id, func(v *entities.Video) {
		v.ThumbnailURL = &url
	})
}

func (r *InMemoryVideoRepository) update(id uuid.UUID, mutate func(v *entities.Video)) (*entities.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[id]
	if !ok {
		return nil, repositories.ErrVideoNotFound
	}
	updated := existing.Clone()
	mutate(updated)
	updated.UpdatedAt = time.Now().UTC()
	r.data[id] = updated
	return updated.Clone(), nil
}

func (r *InMemoryVideoRepository) DeleteVideo(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return repositories.ErrVideoNotFound
	}
	delete(r.data, id)
	return nil
}
