package scraper

import (
	"context"
	"errors"
	"sync"
)

// partition assigns ids to n batches by round-robin: id i goes to batch
// i mod n, preserving relative order within each batch. Batch sizes differ
// by at most one.
func partition(ids []string, n int) [][]string {
	batches := make([][]string, n)
	for i, id := range ids {
		b := i % n
		batches[b] = append(batches[b], id)
	}
	return batches
}

// runScheduler acquires every id in the universe across a bounded worker
// pool and returns the disjoint succeeded/failed sets. Per-video failures
// are isolated into the failed set; anything else a batch produces —
// including a panic — is fatal.
func (s *Scraper) runScheduler(ctx context.Context, ids []string, acq *acquirer, prog *progress) (succeeded, failed []string, err error) {
	workers := s.cfg.Concurrency
	if workers > len(ids) {
		workers = len(ids)
	}
	if workers <= 1 {
		return s.runBatch(ctx, 0, ids, acq, prog)
	}

	batches := partition(ids, workers)
	type batchResult struct {
		succeeded, failed []string
		err               error
	}
	results := make([]batchResult, workers)

	var wg sync.WaitGroup
	for i := range batches {
		wg.Add(1)
		go func(n int, batch []string) {
			defer wg.Done()
			ok, bad, err := s.runBatch(ctx, n, batch, acq, prog)
			results[n] = batchResult{succeeded: ok, failed: bad, err: err}
		}(i, batches[i])
	}
	wg.Wait()

	// the abort-threshold check needs final totals, so results only merge
	// after the join
	for _, r := range results {
		if r.err != nil {
			return nil, nil, r.err
		}
		succeeded = append(succeeded, r.succeeded...)
		failed = append(failed, r.failed...)
	}
	return succeeded, failed, nil
}

// runBatch processes its private id slice sequentially.
func (s *Scraper) runBatch(ctx context.Context, n int, ids []string, acq *acquirer, prog *progress) (succeeded, failed []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			succeeded, failed = nil, nil
			err = &IntegrityError{Batch: n, Cause: r}
		}
	}()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := acq.acquire(ctx, id); err != nil {
			var acqErr *AcquisitionError
			if !errors.As(err, &acqErr) {
				return nil, nil, &IntegrityError{Batch: n, Cause: err}
			}
			s.log.WithField("video", id).WithError(err).Error("video failed")
			failed = append(failed, id)
		} else {
			succeeded = append(succeeded, id)
		}
		prog.incr()
	}
	return succeeded, failed, nil
}
