package chatgate

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the request error taxonomy. Callers branch on
// these with errors.Is; wrapped messages carry the detail.
var (
	// ErrInvalidInput indicates a malformed request: missing session id,
	// missing both question and image, or an empty image upload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrImageDecode indicates the image payload could not be decoded.
	ErrImageDecode = errors.New("image decode error")

	// ErrImageEncode indicates the decoded image could not be re-encoded
	// into the canonical format.
	ErrImageEncode = errors.New("image encode error")

	// ErrUpload indicates the file-store collaborator rejected an upload.
	ErrUpload = errors.New("upload error")

	// ErrBackend indicates the model backend failed.
	ErrBackend = errors.New("backend error")

	// ErrConfiguration indicates the process cannot start.
	ErrConfiguration = errors.New("configuration error")
)

// Error codes reported to callers.
const (
	CodeInvalidInput  = "InvalidInput"
	CodeImageDecode   = "ImageDecodeError"
	CodeImageEncode   = "ImageEncodeError"
	CodeUpload        = "UploadError"
	CodeBackend       = "BackendError"
	CodeConfiguration = "ConfigurationError"
	CodeInternal      = "Internal"
)

// ErrorCode returns the taxonomy code for err. Errors outside the taxonomy
// report CodeInternal.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrImageDecode):
		return CodeImageDecode
	case errors.Is(err, ErrImageEncode):
		return CodeImageEncode
	case errors.Is(err, ErrUpload):
		return CodeUpload
	case errors.Is(err, ErrBackend):
		return CodeBackend
	case errors.Is(err, ErrConfiguration):
		return CodeConfiguration
	default:
		return CodeInternal
	}
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrImageDecode) ||
		errors.Is(err, ErrImageEncode)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}
