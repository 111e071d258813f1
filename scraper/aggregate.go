package scraper

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// aggregate applies the go/no-go decision after all batches joined:
// partial artifacts of failed videos are removed, and the run aborts
// unless a strict majority of attempted videos succeeded.
func (s *Scraper) aggregate(succeeded, failed []string, acq *acquirer) error {
	for _, id := range failed {
		if err := os.RemoveAll(acq.videoDir(id)); err != nil {
			s.log.WithField("video", id).WithError(err).Warn("could not remove failed video dir")
		}
	}
	if len(failed) >= len(succeeded) {
		return fmt.Errorf("%w: %d failed, %d succeeded", ErrTooManyFailures, len(failed), len(succeeded))
	}
	if len(failed) > 0 {
		s.log.WithFields(logrus.Fields{
			"failed":    len(failed),
			"succeeded": len(succeeded),
		}).Warn("continuing without failed videos")
	}
	return nil
}
