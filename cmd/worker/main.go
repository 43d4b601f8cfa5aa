package main // worker

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-uploader/internal/infrastructure/queue"
	"video-uploader/internal/infrastructure/storage"
	"video-uploader/internal/pkg/config"
	"video-uploader/internal/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const workerCount = 4

// The worker drains the processed queue and confirms every published object
// is present in the bucket.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	if cfg.Redis.Host == "" {
		zl.Fatal("REDIS_HOST is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s3Ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := storage.NewS3Storage(s3Ctx, cfg.Storage.Bucket, cfg.Storage.Region)
	cancel()
	if err != nil {
		zl.Fatal("s3 client", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
	})
	defer rdb.Close()

	pool := queue.NewWorkerPool(workerCount, queue.VerifyPublished(store, zl), zl)
	zl.Info("worker started",
		zap.String("redis", rdb.Options().Addr),
		zap.Int("workers", workerCount))

	queue.Consume(ctx, rdb, pool, zl)

	zl.Info("shutdown signal received, draining queue")
	pool.Close()
	zl.Info("worker stopped")
}
