package ytarchive

import (
	"ytarchive/retry"
	"ytarchive/scraper"
	"ytarchive/youtube"
	"ytarchive/ytdlp"
)

// Error types and sentinels re-exported for library users, so callers can
// match run outcomes without importing every sub-package.

// Type aliases for convenient error handling.
type (
	// CatalogError wraps a failed catalog API operation with the operation
	// name and the identifier it was resolving.
	CatalogError = youtube.CatalogError
	// AcquisitionError is an isolated per-video acquisition failure.
	AcquisitionError = scraper.AcquisitionError
	// IntegrityError reports a worker batch failing outside the per-video
	// isolation boundary.
	IntegrityError = scraper.IntegrityError
	// ExhaustedError wraps the last error after a retry policy ran out of
	// attempts.
	ExhaustedError = retry.ExhaustedError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrCredentials indicates the catalog API is unreachable or the key is
	// not authorized.
	ErrCredentials = youtube.ErrCredentials
	// ErrChannelNotFound indicates no channel matched the identifier.
	ErrChannelNotFound = youtube.ErrChannelNotFound
	// ErrPlaylistNotFound indicates a requested playlist id did not resolve.
	ErrPlaylistNotFound = youtube.ErrPlaylistNotFound
	// ErrTooManyFailures indicates at least as many videos failed as
	// succeeded and the run aborted.
	ErrTooManyFailures = scraper.ErrTooManyFailures
	// ErrYtdlpNotInstalled indicates the yt-dlp binary was not found.
	ErrYtdlpNotInstalled = ytdlp.ErrNotInstalled
)
