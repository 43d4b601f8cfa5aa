package entities

// Orientation is the coarse aspect-ratio class of a video stream.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationOther     Orientation = "other"
)

func (o Orientation) String() string { return string(o) }

// ClassifyOrientation buckets width/height into an Orientation.
// Both intervals are open: 16:9 lands in landscape, 9:16 in portrait.
func ClassifyOrientation(width, height int) Orientation {
	if width <= 0 || height <= 0 {
		return OrientationOther
	}
	r := float64(width) / float64(height)
	switch {
	case r > 1.7 && r < 1.8:
		return OrientationLandscape
	case r > 0.5 && r < 0.6:
		return OrientationPortrait
	default:
		return OrientationOther
	}
}

// PublishedLocation is where a file ended up in object storage.
type PublishedLocation struct {
	Key string
	URL string
}
