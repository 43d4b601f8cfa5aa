package constants

const (
	StatusOK = "ok"
)

const (
	MediaTypeMP4  = "video/mp4"
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
)

const (
	VideoFormField     = "video"
	ThumbnailFormField = "thumbnail"
)

// ProcessedQueue is the Redis list that receives publish notifications.
const ProcessedQueue = "processed_queue"
