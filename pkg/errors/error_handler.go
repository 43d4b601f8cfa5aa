package errors

import (
	stderrors "errors"

	"video-uploader/pkg/errors/i18n"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func HandleError(c *fiber.Ctx, log *zap.Logger, err error) error {
	if err == nil {
		return nil
	}

	var ue *UploadError
	if stderrors.As(err, &ue) {
		status := StatusFor(ue.Kind)
		fields := []zap.Field{
			zap.String("code", ue.Code),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		}
		if ue.Err != nil {
			fields = append(fields, zap.Error(ue.Err))
		}
		if ue.Detail != "" {
			fields = append(fields, zap.String("detail", ue.Detail))
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Info("request rejected", fields...)
		}

		// Only the code and a short message reach the client.
		return c.Status(status).JSON(fiber.Map{
			"error":   ue.Code,
			"message": i18n.T(ue.Code, ue.Message),
		})
	}

	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":   "http_error",
			"message": fe.Message,
		})
	}

	log.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal_error",
		"message": i18n.T("internal_error", "Internal server error"),
	})
}

// NewFiberErrorHandler adapts HandleError to fiber.Config.ErrorHandler.
func NewFiberErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return HandleError(c, log, err)
	}
}
