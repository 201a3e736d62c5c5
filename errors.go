package inflate

import "errors"

// Sentinel errors for loading and inflation.
var (
	ErrDefinitionNotFound  = errors.New("inflate: definition not found")
	ErrFetchFailed         = errors.New("inflate: fetch failed")
	ErrCallbackFault       = errors.New("inflate: ready callback failed")
	ErrMalformedAttributes = errors.New("inflate: malformed definition attributes")
	ErrRecursiveDefinition = errors.New("inflate: definition inflates itself")
	ErrNotReady            = errors.New("inflate: resources still loading")
)

// IsNotFound checks if err is a definition lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound)
}

// IsFetchFailure checks if err is a transport-level fetch failure.
func IsFetchFailure(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

// IsCallbackFault checks if err came out of a ready callback.
func IsCallbackFault(err error) bool {
	return errors.Is(err, ErrCallbackFault)
}

// IsNotReadyError checks if err came from Wait giving up on pending resources.
func IsNotReadyError(err error) bool {
	return errors.Is(err, ErrNotReady)
}
