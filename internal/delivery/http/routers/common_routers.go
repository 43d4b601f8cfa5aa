package routers

import (
	"video-uploader/internal/domain/dto"
	consts "video-uploader/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// SetupCommonRoutes registers health, API docs and the static thumbnail assets.
func SetupCommonRoutes(app *fiber.App, assetsRoot string) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.StatusResponse{Status: consts.StatusOK})
	})

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Static("/assets", assetsRoot, fiber.Static{
		Browse: false,
	})
}
