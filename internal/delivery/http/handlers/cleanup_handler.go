package handlers

import (
	"time"

	"video-uploader/internal/domain/dto"
	"video-uploader/internal/pkg/auth"
	"video-uploader/internal/usecases"
	apperr "video-uploader/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CleanupHandler struct {
	cleanupUC usecases.CleanupService
	maxAge    time.Duration
	auth      *auth.Service
	log       *zap.Logger
}

func NewCleanupHandler(cleanupUC usecases.CleanupService, maxAge time.Duration, authSvc *auth.Service, log *zap.Logger) *CleanupHandler {
	return &CleanupHandler{
		cleanupUC: cleanupUC,
		maxAge:    maxAge,
		auth:      authSvc,
		log:       log,
	}
}

// SweepStaging is the manual trigger for the scheduled staging sweep.
//
// @Summary      Sweep Staging
// @Description  Removes staged files older than the configured maximum age
// @Tags         Maintenance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SweepResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /maintenance/staging/sweep [post]
func (h *CleanupHandler) SweepStaging(c *fiber.Ctx) error {
	if _, err := authenticate(c, h.auth); err != nil {
		return apperr.HandleError(c, h.log, err)
	}

	removed, err := h.cleanupUC.CleanupStaleStagedFiles(h.maxAge)
	if err != nil {
		return apperr.HandleError(c, h.log, apperr.ErrIO(err))
	}
	return c.JSON(dto.SweepResponse{Removed: removed})
}
