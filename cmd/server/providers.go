package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"video-uploader/internal/delivery/http/handlers"
	"video-uploader/internal/delivery/http/routers"
	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/infrastructure/db"
	"video-uploader/internal/infrastructure/processor"
	"video-uploader/internal/infrastructure/queue"
	infra_repo "video-uploader/internal/infrastructure/repositories"
	"video-uploader/internal/infrastructure/storage"
	"video-uploader/internal/pkg/auth"
	"video-uploader/internal/pkg/config"
	"video-uploader/internal/pkg/logger"
	"video-uploader/internal/usecases"
	apperr "video-uploader/pkg/errors"
	"video-uploader/pkg/errors/i18n"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and headers around a maximum-size file.
const multipartOverhead = 1 << 20

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}

func newAuthService(cfg *config.Config) *auth.Service {
	return auth.New(cfg.Auth.JWTSecret)
}

func newVideoRepository(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (repositories.VideoRepository, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("using in-memory video repository; records are lost on restart")
		return infra_repo.NewInMemoryVideoRepository(), nil
	}

	database, err := db.NewPostgresDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := sqlDB.PingContext(ctx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}
			if cfg.Database.RunAutoMigration {
				return db.Migrate(ctx, database, log)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return sqlDB.Close()
		},
	})
	return infra_repo.NewVideoRepository(database), nil
}

func newObjectStorage(cfg *config.Config) (repositories.ObjectStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return storage.NewS3Storage(ctx, cfg.Storage.Bucket, cfg.Storage.Region)
}

func newStagingArea(cfg *config.Config, log *zap.Logger) *storage.LocalStorage {
	return storage.NewLocalStorage(cfg.Upload.StagingDir, log)
}

func newPublisher(store repositories.ObjectStorage, cfg *config.Config, log *zap.Logger) *storage.Publisher {
	return storage.NewPublisher(store, storage.NewURLBuilder(cfg.Storage), log)
}

// newRedisClient returns nil when no redis host is configured.
func newRedisClient(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *redis.Client {
	if cfg.Redis.Host == "" {
		log.Info("redis not configured; processed notifications disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable; notifications will fail until it is", zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	})
	return rdb
}

func newNotifier(rdb *redis.Client) usecases.PublishNotifier {
	if rdb == nil {
		return queue.NoopNotifier{}
	}
	return queue.NewRedisNotifier(rdb)
}

func newVideoUploadService(
	cfg *config.Config,
	videos repositories.VideoRepository,
	staging *storage.LocalStorage,
	publisher *storage.Publisher,
	notifier usecases.PublishNotifier,
	log *zap.Logger,
) usecases.VideoUploadService {
	runner := processor.NewExecRunner()
	return usecases.NewVideoUploadService(
		videos,
		staging,
		processor.NewProber(runner, cfg.Processing.FFprobePath),
		processor.NewFastStartRewriter(runner, cfg.Processing.FFmpegPath),
		publisher,
		notifier,
		usecases.VideoUploadPolicy{
			MaxUploadSize:  cfg.Upload.MaxVideoSize,
			AllowedTypes:   cfg.Upload.VideoTypes,
			ProcessTimeout: cfg.Processing.Timeout,
		},
		log,
	)
}

func newVideoService(videos repositories.VideoRepository, publisher *storage.Publisher, log *zap.Logger) usecases.VideoService {
	return usecases.NewVideoService(videos, publisher, log)
}

func newThumbnailService(cfg *config.Config, videos repositories.VideoRepository, log *zap.Logger) usecases.ThumbnailService {
	return usecases.NewThumbnailService(videos, usecases.ThumbnailPolicy{
		MaxUploadSize: cfg.Upload.MaxThumbnailSize,
		AllowedTypes:  cfg.Upload.ThumbnailTypes,
		AssetsRoot:    cfg.Upload.AssetsRoot,
		PublicBaseURL: cfg.Server.PublicBaseURL,
		Size:          processor.DefaultThumbnailSize,
	}, log)
}

func newCleanupService(staging *storage.LocalStorage, log *zap.Logger) usecases.CleanupService {
	return usecases.NewCleanupService(staging, log)
}

type httpHandlers struct {
	videos     *handlers.VideoHandler
	thumbnails *handlers.ThumbnailHandler
	cleanup    *handlers.CleanupHandler
}

func newHandlers(
	cfg *config.Config,
	uploads usecases.VideoUploadService,
	videos usecases.VideoService,
	thumbnails usecases.ThumbnailService,
	cleanup usecases.CleanupService,
	authSvc *auth.Service,
	log *zap.Logger,
) *httpHandlers {
	return &httpHandlers{
		videos:     handlers.NewVideoHandler(uploads, videos, authSvc, log),
		thumbnails: handlers.NewThumbnailHandler(thumbnails, authSvc, log),
		cleanup:    handlers.NewCleanupHandler(cleanup, cfg.Upload.StagingMaxAge, authSvc, log),
	}
}

// bodyLimit is the largest request the server accepts: one maximum-size video
// plus multipart framing.
func bodyLimit(cfg *config.Config) int64 {
	return cfg.Upload.MaxVideoSize + multipartOverhead
}

// newFiberApp streams request bodies so uploads are spooled to temporary files
// by the multipart reader instead of being buffered whole in memory.
func newFiberApp(cfg *config.Config, log *zap.Logger) *fiber.App {
	limit := bodyLimit(cfg)
	app := fiber.New(fiber.Config{
		AppName:                      "video-uploader",
		BodyLimit:                    int(limit),
		StreamRequestBody:            true,
		DisablePreParseMultipartForm: true,
		ErrorHandler:                 apperr.NewFiberErrorHandler(log),
		DisableStartupMessage:        true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(handlers.LimitBody(limit))
	app.Use(cors.New())
	return app
}

func newCron() *cron.Cron {
	return cron.New(cron.WithSeconds())
}

func loadTranslations(cfg *config.Config, log *zap.Logger) error {
	if err := i18n.Load(cfg.App.Locale); err != nil {
		log.Warn("locale not available, falling back to en", zap.String("locale", cfg.App.Locale), zap.Error(err))
		return i18n.Load("en")
	}
	return nil
}

func registerRoutes(app *fiber.App, h *httpHandlers, cfg *config.Config) {
	routers.SetupCommonRoutes(app, cfg.Upload.AssetsRoot)
	routers.SetupVideoRoutes(app, h.videos, h.thumbnails, h.cleanup)
}

func scheduleStagingSweep(lc fx.Lifecycle, c *cron.Cron, cleanup usecases.CleanupService, cfg *config.Config, log *zap.Logger) error {
	if _, err := cleanup.Schedule(c, cfg.Upload.StagingSweepSchedule, cfg.Upload.StagingMaxAge); err != nil {
		return fmt.Errorf("schedule staging sweep: %w", err)
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			log.Info("staging sweep scheduled", zap.String("schedule", cfg.Upload.StagingSweepSchedule))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-c.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}

func startServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, app *fiber.App, cfg *config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			addr := cfg.Addr()
			log.Info("server starting", zap.String("addr", addr))
			go func() {
				if err := app.Listen(addr); err != nil {
					log.Error("server stopped", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return app.ShutdownWithContext(ctx)
		},
	})
}
