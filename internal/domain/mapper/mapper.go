package mapper

import (
	"video-uploader/internal/domain/dto"
	"video-uploader/internal/domain/entities"
)

func VideoToDTO(v *entities.Video) *dto.VideoDTO {
	return &dto.VideoDTO{
		ID:           v.ID.String(),
		UserID:       v.UserID.String(),
		Title:        v.Title,
		Description:  v.Description,
		ThumbnailURL: v.ThumbnailURL,
		VideoURL:     v.VideoURL,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func VideosToDTO(videos []*entities.Video) []*dto.VideoDTO {
	out := make([]*dto.VideoDTO, 0, len(videos))
	for _, v := range videos {
		out = append(out, VideoToDTO(v))
	}
	return out
}
