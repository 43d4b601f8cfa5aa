package queue

import (
	"encoding/json"
	"fmt"

	"video-uploader/internal/domain/entities"
)

// ProcessedVideo is pushed to the processed queue after a video record points
// at its published object.
type ProcessedVideo struct {
	VideoID     string               `json:"video_id"`
	UserID      string               `json:"user_id"`
	Key         string               `json:"key"`
	URL         string               `json:"url"`
	Orientation entities.Orientation `json:"orientation"`
}

func DeserializeProcessedVideo(data string) (*ProcessedVideo, error) {
	var event ProcessedVideo
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, fmt.Errorf("failed to deserialize processed video: %w", err)
	}
	if event.Key == "" {
		return nil, fmt.Errorf("processed video %q has no key", event.VideoID)
	}
	return &event, nil
}

func SerializeProcessedVideo(event ProcessedVideo) (string, error) {
	bytes, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to serialize processed video: %w", err)
	}
	return string(bytes), nil
}
