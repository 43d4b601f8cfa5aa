package routers

import (
	"video-uploader/internal/delivery/http/handlers"

	"github.com/gofiber/fiber/v2"
)

func SetupVideoRoutes(app *fiber.App, videoHandler *handlers.VideoHandler, thumbnailHandler *handlers.ThumbnailHandler, cleanupHandler *handlers.CleanupHandler) {
	api := app.Group("/api/v1")

	api.Post("/videos", videoHandler.CreateVideo)
	api.Get("/videos", videoHandler.ListVideos)
	api.Get("/videos/:videoID", videoHandler.GetVideo)
	api.Delete("/videos/:videoID", videoHandler.DeleteVideo)
	api.Post("/videos/:videoID/upload", videoHandler.UploadVideo)

	api.Post("/thumbnails/:videoID", thumbnailHandler.UploadThumbnail)

	if cleanupHandler != nil {
		api.Post("/maintenance/staging/sweep", cleanupHandler.SweepStaging)
	}
}
