package queue

import (
	"context"

	consts "video-uploader/pkg/constants"

	"github.com/go-redis/redis/v8"
)

type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (n *RedisNotifier) NotifyProcessed(ctx context.Context, event ProcessedVideo) error {
	payload, err := SerializeProcessedVideo(event)
	if err != nil {
		return err
	}
	return n.rdb.LPush(ctx, consts.ProcessedQueue, payload).Err()
}

// NoopNotifier is used when no redis host is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyProcessed(context.Context, ProcessedVideo) error { return nil }
