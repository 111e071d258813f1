package youtube

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for catalog operations.
var (
	// ErrCredentials indicates the API is unreachable or the key is rejected.
	ErrCredentials = errors.New("youtube: credentials rejected")
	// ErrChannelNotFound indicates no lookup form matched the identifier.
	ErrChannelNotFound = errors.New("youtube: channel not found")
	// ErrPlaylistNotFound indicates a requested playlist id does not resolve.
	ErrPlaylistNotFound = errors.New("youtube: playlist not found")
)

// CatalogError wraps a failed catalog operation with its subject id.
type CatalogError struct {
	Op  string
	ID  string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("youtube: %s %q: %v", e.Op, e.ID, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// isTransient classifies catalog API errors for the retry wrapper. Not-found
// and credential failures are permanent; rate limits, server errors and
// timeouts are transient. Unknown errors default to transient.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrChannelNotFound) ||
		errors.Is(err, ErrPlaylistNotFound) ||
		errors.Is(err, ErrCredentials) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code >= 500 {
			return true
		}
		for _, item := range gerr.Errors {
			switch item.Reason {
			case "rateLimitExceeded", "quotaExceeded", "backendError":
				return true
			}
		}
		return false
	}
	return true
}
