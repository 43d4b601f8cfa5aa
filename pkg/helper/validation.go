package helper

import (
	"strings"

	"video-uploader/pkg/constants"
)

// ExtensionForMediaType returns the file extension (without dot) for a media type.
func ExtensionForMediaType(mediaType string) string {
	switch strings.ToLower(mediaType) {
	case constants.MediaTypeMP4:
		return "mp4"
	case constants.MediaTypeJPEG:
		return "jpg"
	case constants.MediaTypePNG:
		return "png"
	case "image/gif":
		return "gif"
	case "video/webm":
		return "webm"
	default:
		return "bin"
	}
}

// IsAllowedMediaType reports whether mediaType exactly matches one of allowed.
func IsAllowedMediaType(mediaType string, allowed []string) bool {
	for _, a := range allowed {
		if mediaType == a {
			return true
		}
	}
	return false
}
