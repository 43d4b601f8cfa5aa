package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Handler processes one event taken off the processed queue.
type Handler func(ctx context.Context, event ProcessedVideo) error

type Worker struct {
	ID      int                   // worker id
	JobChan <-chan ProcessedVideo // iş kuyruğu
	Wg      *sync.WaitGroup
	Handle  Handler
	Log     *zap.Logger
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case event, ok := <-w.JobChan:
				if !ok {
					w.Log.Debug("job channel closed", zap.Int("worker", w.ID))
					return
				}
				if ctx.Err() != nil {
					w.Log.Info("event dropped on shutdown",
						zap.Int("worker", w.ID), zap.String("video_id", event.VideoID))
					continue
				}
				w.process(ctx, event)
			case <-ctx.Done():
				w.Log.Debug("worker stopping", zap.Int("worker", w.ID))
				return
			}
		}
	}()
}

func (w *Worker) process(ctx context.Context, event ProcessedVideo) {
	if err := w.Handle(ctx, event); err != nil {
		w.Log.Warn("processed video handling failed",
			zap.Int("worker", w.ID),
			zap.String("video_id", event.VideoID),
			zap.String("key", event.Key),
			zap.Error(err))
	}
}
