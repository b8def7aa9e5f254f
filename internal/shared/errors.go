package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMalformedPayload   = fmt.Errorf("malformed payload")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Collection errors
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrVideoNotFound    = fmt.Errorf("video not found")
	ErrDuplicateName    = fmt.Errorf("playlist name already in use")
	ErrEmptyPlaylist    = fmt.Errorf("playlist has no videos")
	ErrMirrorNotFound   = fmt.Errorf("mirror not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
