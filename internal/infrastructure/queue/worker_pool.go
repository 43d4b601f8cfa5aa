package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type WorkerPool struct {
	JobChan chan ProcessedVideo
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
}

func NewWorkerPool(workerCount int, handle Handler, log *zap.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		JobChan: make(chan ProcessedVideo, 100),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workerCount; i++ {
		worker := &Worker{
			ID:      i,
			JobChan: pool.JobChan,
			Wg:      &pool.wg,
			Handle:  handle,
			Log:     log,
		}
		pool.wg.Add(1)
		worker.Start(pool.ctx)
	}
	return pool
}

func (p *WorkerPool) AddJob(event ProcessedVideo) {
	p.JobChan <- event
}

// Close stops accepting jobs and waits for queued ones to finish.
func (p *WorkerPool) Close() {
	p.once.Do(func() {
		close(p.JobChan)
		p.wg.Wait()
		p.cancel()
	})
}

// Shutdown cancels in-flight work and drops queued jobs.
func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		close(p.JobChan)
		p.wg.Wait()
	})
}
