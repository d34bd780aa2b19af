package services

import (
	"context"
	"sync"

	"optionscope/interfaces"

	"github.com/sirupsen/logrus"
)

// snapshotBatchSize is the provider-imposed ceiling on identifiers per
// batched snapshot request.
const snapshotBatchSize = 25

// SnapshotIndex builds an identifier-to-snapshot mapping from the batched
// snapshot endpoint, splitting large identifier lists into fixed-size batches
// fetched concurrently.
//
// Two resolution modes exist: ResolveAll fails if any batch fails (the
// strategy analysis path, where an unresolved leg is fatal), while
// ResolveAvailable absorbs failed batches and returns whatever resolved (the
// chain assembly path).
type SnapshotIndex struct {
	provider interfaces.SnapshotProvider
	logger   *logrus.Logger
}

// NewSnapshotIndex creates a new snapshot index over a snapshot provider.
func NewSnapshotIndex(provider interfaces.SnapshotProvider) *SnapshotIndex {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &SnapshotIndex{
		provider: provider,
		logger:   logger,
	}
}

// ResolveAll fetches snapshots for every identifier, all-or-nothing: the
// first failed batch aborts the resolution. Identifiers the provider omitted
// from a successful response are still absent from the map; callers decide
// whether that is fatal.
func (s *SnapshotIndex) ResolveAll(ctx context.Context, tickers []string) (map[string]*interfaces.Snapshot, error) {
	merged := make(map[string]*interfaces.Snapshot, len(tickers))

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	for _, batch := range splitBatches(tickers, snapshotBatchSize) {
		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()
			snapshots, err := s.provider.GetSnapshots(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for ticker, snap := range snapshots {
				merged[ticker] = snap
			}
		}(batch)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return merged, nil
}

// ResolveAvailable fetches snapshots best-effort: a failed batch degrades
// only its own identifiers and is logged, never surfaced.
func (s *SnapshotIndex) ResolveAvailable(ctx context.Context, tickers []string) map[string]*interfaces.Snapshot {
	merged := make(map[string]*interfaces.Snapshot, len(tickers))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, batch := range splitBatches(tickers, snapshotBatchSize) {
		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()
			snapshots, err := s.provider.GetSnapshots(ctx, batch)
			if err != nil {
				s.logger.WithError(err).WithField("batch_size", len(batch)).
					Warn("Snapshot batch failed, continuing without it")
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for ticker, snap := range snapshots {
				merged[ticker] = snap
			}
		}(batch)
	}
	wg.Wait()

	return merged
}

func splitBatches(tickers []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(tickers); start += size {
		end := start + size
		if end > len(tickers) {
			end = len(tickers)
		}
		batches = append(batches, tickers[start:end])
	}
	return batches
}
