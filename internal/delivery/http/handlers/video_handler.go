package handlers

import (
	"video-uploader/internal/domain/dto"
	"video-uploader/internal/domain/mapper"
	"video-uploader/internal/pkg/auth"
	"video-uploader/internal/usecases"
	consts "video-uploader/pkg/constants"
	apperr "video-uploader/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type VideoHandler struct {
	uploads usecases.VideoUploadService
	videos  usecases.VideoService
	auth    *auth.Service
	log     *zap.Logger
}

func NewVideoHandler(uploads usecases.VideoUploadService, videos usecases.VideoService, authSvc *auth.Service, log *zap.Logger) *VideoHandler {
	return &VideoHandler{
		uploads: uploads,
		videos:  videos,
		auth:    authSvc,
		log:     log,
	}
}

// UploadVideo
//
// @Summary      Upload Video
// @Description  Uploads an mp4 for an existing video record, rewrites it for fast start and publishes it to object storage
// @Tags         Videos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        videoID  path      string true "Video ID"
// @Param        video    formData  file   true "MP4 file"
// @Success      200      {object}  dto.VideoDTO
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      403      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Router       /videos/{videoID}/upload [post]
func (h *VideoHandler) UploadVideo(c *fiber.Ctx) error {
	videoID, err := videoIDParam(c)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}
	userID, err := authenticate(c, h.auth)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}

	video, err := h.uploads.UploadVideo(c.UserContext(), userID, videoID, formFileSource(c, consts.VideoFormField))
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}
	return c.JSON(mapper.VideoToDTO(video))
}

// CreateVideo
//
// @Summary      Create Video
// @Description  Creates a draft video record owned by the caller
// @Tags         Videos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateVideoRequestDTO true "Video metadata"
// @Success      201   {object}  dto.VideoDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /videos [post]
func (h *VideoHandler) CreateVideo(c *fiber.Ctx) error {
	userID, err := authenticate(c, h.auth)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}

	var req dto.CreateVideoRequestDTO
	if err := c.BodyParser(&req); err != nil {
		return apperr.HandleError(c, h.log, apperr.ErrInvalidRequest(err))
	}

	video, err := h.videos.CreateVideo(c.UserContext(), userID, &req)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mapper.VideoToDTO(video))
}

// GetVideo
//
// @Summary      Get Video
// @Tags         Videos
// @Produce      json
// @Security     BearerAuth
// @Param        videoID  path      string true "Video ID"
// @Success      200      {object}  dto.VideoDTO
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      403      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /videos/{videoID} [get]
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	videoID, err := videoIDParam(c)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}
	userID, err := authenticate(c, h.auth)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}

	video, err := h.videos.GetVideo(c.UserContext(), userID, videoID)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}
	return c.JSON(mapper.VideoToDTO(video))
}

// ListVideos
//
// @Summary      List Videos
// @Description  Lists the caller's videos, newest first
// @Tags         Videos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.VideoDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /videos [get]
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	userID, err := authenticate(c, h.auth)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}

	videos, err := h.videos.ListVideos(c.UserContext(), userID)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}
	return c.JSON(mapper.VideosToDTO(videos))
}

// DeleteVideo
//
// @Summary      Delete Video
// @Tags         Videos
// @Security     BearerAuth
// @Param        videoID  path  string true "Video ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /videos/{videoID} [delete]
func (h *VideoHandler) DeleteVideo(c *fiber.Ctx) error {
	videoID, err := videoIDParam(c)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}
	userID, err := authenticate(c, h.auth)
	if err != nil {
		return apperr.HandleError(c, h.log, err)
	}

	if err := h.videos.DeleteVideo(c.UserContext(), userID, videoID); err != nil {
		return apperr.HandleError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
