package queue

import (
	"context"
	"errors"
	"time"

	consts "video-uploader/pkg/constants"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Consume moves events from the processed queue into pool until ctx is done.
func Consume(ctx context.Context, rdb *redis.Client, pool *WorkerPool, log *zap.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}
		val, err := rdb.BRPop(ctx, 5*time.Second, consts.ProcessedQueue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("BRPop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		event, err := DeserializeProcessedVideo(val[1])
		if err != nil {
			log.Warn("dropping malformed event", zap.Error(err))
			continue
		}
		pool.AddJob(*event)
	}
}

// ObjectChecker reports whether a published object is present in storage.
type ObjectChecker interface {
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// VerifyPublished returns a Handler that checks each event's object exists.
func VerifyPublished(store ObjectChecker, log *zap.Logger) Handler {
	return func(ctx context.Context, event ProcessedVideo) error {
		ok, err := store.ObjectExists(ctx, event.Key)
		if err != nil {
			return err
		}
		if !ok {
			log.Warn("published object missing",
				zap.String("video_id", event.VideoID), zap.String("key", event.Key))
			return ErrObjectMissing
		}
		log.Info("published object verified",
			zap.String("video_id", event.VideoID),
			zap.String("key", event.Key),
			zap.String("orientation", string(event.Orientation)))
		return nil
	}
}

var ErrObjectMissing = errors.New("published object missing")
