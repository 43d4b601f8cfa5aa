package handlers

import (
	"video-uploader/internal/domain/mapper"
	"video-uploader/internal/pkg/auth"
	"video-uploader/internal/usecases"
	consts "video-uploader/pkg/constants"
	apperr "video-uploader/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ThumbnailHandler struct {
	thumbnails usecases.ThumbnailService
	auth       *auth.Service
	log        *zap.Logger
}

func NewThumbnailHandler(thumbnails usecases.ThumbnailService, authSvc *auth.Service, log *zap.Logger) *ThumbnailHandler {
	return &ThumbnailHandler{thumbnails: thumbnails, auth: authSvc, log: log}
}

// UploadThumbnail
//
// @Summary      Upload Thumbnail
// @Description  Stores a jpeg or png thumbnail for a video, bounded to 1280x720
// @Tags         Thumbnails
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        videoID    path      string true "Video ID"
// @Param        thumbnail  formData  file   true "Image file"
// @Success      200        {object}  dto.VideoDTO
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      401        {object}  dto.ErrorResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      500        {object}  dto.ErrorResponse
// @Router       /thumbnails/{videoID} [post]
func (h *ThumbnailHandler) UploadThumbnail(c *fiber.Ctx) error {
	videoID, err := videoIDParam(c)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}
	userID, err := authenticate(c, h.auth)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}

	video, err := h.thumbnails.UploadThumbnail(c.UserContext(), userID, videoID, formFileSource(c, consts.ThumbnailFormField))
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}
	return c.JSON(mapper.VideoToDTO(video))
}
