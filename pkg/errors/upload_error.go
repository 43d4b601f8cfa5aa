package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind groups error codes into the classes the HTTP boundary maps to a status.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindExternalTool Kind = "external_tool"
	KindProbe        Kind = "probe"
	KindTranscode    Kind = "transcode"
	KindPublish      Kind = "publish"
	KindIO           Kind = "io"
	KindInternal     Kind = "internal"
)

type UploadError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
	// Detail holds operator-facing output such as tool stderr. Never sent to clients.
	Detail string
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first UploadError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ue *UploadError
	if stderrors.As(err, &ue) {
		return ue.Kind
	}
	return KindInternal
}

// Is reports whether err carries an UploadError of the given kind.
func Is(err error, kind Kind) bool {
	var ue *UploadError
	return stderrors.As(err, &ue) && ue.Kind == kind
}

var (
	ErrInvalidVideoID = func(err error) *UploadError {
		return &UploadError{Kind: KindValidation, Code: "invalid_video_id", Message: "Invalid video ID", Err: err}
	}
	ErrInvalidRequest = func(err error) *UploadError {
		return &UploadError{Kind: KindValidation, Code: "invalid_request", Message: "Invalid request body", Err: err}
	}
	ErrMissingFile = func(err error) *UploadError {
		return &UploadError{Kind: KindValidation, Code: "missing_file", Message: "Missing or invalid file", Err: err}
	}
	ErrFileTooBig = func(err error) *UploadError {
		return &UploadError{Kind: KindValidation, Code: "file_too_big", Message: "File too big", Err: err}
	}
	ErrInvalidFileType = func(err error) *UploadError {
		return &UploadError{Kind: KindValidation, Code: "invalid_file_type", Message: "Invalid file type", Err: err}
	}
	ErrUnauthorized = func(err error) *UploadError {
		return &UploadError{Kind: KindUnauthorized, Code: "unauthorized", Message: "Couldn't validate credentials", Err: err}
	}
	ErrForbidden = func(err error) *UploadError {
		return &UploadError{Kind: KindForbidden, Code: "forbidden", Message: "You do not own this video", Err: err}
	}
	ErrNotFound = func(err error) *UploadError {
		return &UploadError{Kind: KindNotFound, Code: "not_found", Message: "Video not found", Err: err}
	}
	ErrExternalTool = func(err error) *UploadError {
		return &UploadError{Kind: KindExternalTool, Code: "external_tool_error", Message: "Processing tool unavailable", Err: err}
	}
	ErrProbe = func(err error, stderr string) *UploadError {
		return &UploadError{Kind: KindProbe, Code: "probe_error", Message: "Could not read video dimensions", Err: err, Detail: stderr}
	}
	ErrTranscode = func(err error, stderr string) *UploadError {
		return &UploadError{Kind: KindTranscode, Code: "transcode_error", Message: "Could not process video", Err: err, Detail: stderr}
	}
	ErrImage = func(err error) *UploadError {
		return &UploadError{Kind: KindValidation, Code: "invalid_image", Message: "Could not decode image", Err: err}
	}
	ErrPublish = func(err error) *UploadError {
		return &UploadError{Kind: KindPublish, Code: "publish_error", Message: "Could not store video", Err: err}
	}
	ErrIO = func(err error) *UploadError {
		return &UploadError{Kind: KindIO, Code: "io_error", Message: "Could not save file", Err: err}
	}
	ErrInternal = func(err error) *UploadError {
		return &UploadError{Kind: KindInternal, Code: "internal_error", Message: "Internal server error", Err: err}
	}
)
