package handlers

import (
	"io"

	"video-uploader/internal/pkg/auth"
	"video-uploader/internal/usecases"
	apperr "video-uploader/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// videoIDParam parses the :videoID route parameter.
func videoIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Params("videoID")
	if raw == "" {
		return uuid.Nil, apperr.ErrInvalidVideoID(nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.ErrInvalidVideoID(err)
	}
	return id, nil
}

func authenticate(c *fiber.Ctx, authSvc *auth.Service) (uuid.UUID, error) {
	userID, err := authSvc.Authenticate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return uuid.Nil, apperr.ErrUnauthorized(err)
	}
	return userID, nil
}

// formFileSource defers multipart parsing until the use case asks for the file.
func formFileSource(c *fiber.Ctx, field string) usecases.UploadSource {
	return func() (*usecases.UploadRequest, error) {
		fileHeader, err := c.FormFile(field)
		if err != nil {
			return nil, err
		}
		return &usecases.UploadRequest{
			Size:      fileHeader.Size,
			MediaType: fileHeader.Header.Get(fiber.HeaderContentType),
			Open: func() (io.ReadCloser, error) {
				return fileHeader.Open()
			},
		}, nil
	}
}
