package scraper

import (
	"errors"
	"fmt"
)

// ErrTooManyFailures is returned when at least as many videos failed
// acquisition as succeeded. Success requires a strict majority.
var ErrTooManyFailures = errors.New("scraper: too many failed videos")

// AcquisitionError is a per-video failure. It is isolated: it moves the
// video into the failed set and never aborts the run by itself.
type AcquisitionError struct {
	VideoID string
	Stage   string
	Err     error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("scraper: acquire %s stage %s: %v", e.VideoID, e.Stage, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// IntegrityError reports a worker batch that failed outside the per-video
// isolation boundary. It signals a bug, not a data problem, and is fatal.
type IntegrityError struct {
	Batch int
	Cause any
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("scraper: batch %d broke isolation: %v", e.Batch, e.Cause)
}
