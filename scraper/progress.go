package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// progress tracks (done, total) across workers and periodically writes a
// stats JSON file for surrounding infrastructure to poll.
type progress struct {
	total int64
	done  atomic.Int64
	path  string
	log   logrus.FieldLogger
}

func newProgress(total int, path string, log logrus.FieldLogger) *progress {
	return &progress{total: int64(total), path: path, log: log}
}

// incr records one finished acquisition attempt, success or failure.
func (p *progress) incr() {
	p.done.Add(1)
}

// watch flushes the stats file at interval until ctx is done, then once
// more with the final counts.
func (p *progress) watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return
		case <-ticker.C:
			p.flush()
		}
	}
}

func (p *progress) flush() {
	if p.path == "" {
		return
	}
	data, err := json.Marshal(map[string]int64{
		"done":  p.done.Load(),
		"total": p.total,
	})
	if err != nil {
		return
	}
	if err := writeAtomic(p.path, data); err != nil {
		p.log.WithError(err).Warn("could not write stats file")
	}
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
