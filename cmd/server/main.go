package main

import (
	"log"

	_ "video-uploader/docs"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Provide(
			loadConfig,
			newLogger,
			newAuthService,
			newVideoRepository,
			newObjectStorage,
			newStagingArea,
			newPublisher,
			newRedisClient,
			newNotifier,
			newVideoUploadService,
			newVideoService,
			newThumbnailService,
			newCleanupService,
			newHandlers,
			newFiberApp,
			newCron,
		),
		fx.Invoke(
			loadTranslations,
			registerRoutes,
			scheduleStagingSweep,
			startServer,
		),
	).Run()
}
