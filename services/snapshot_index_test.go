package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"optionscope/interfaces"
)

// RecordingSnapshotProvider records every batch it receives and can be told
// to fail batches containing a given ticker.
type RecordingSnapshotProvider struct {
	mu         sync.Mutex
	batches    [][]string
	failTicker string
}

func (p *RecordingSnapshotProvider) GetSnapshots(_ context.Context, tickers []string) (map[string]*interfaces.Snapshot, error) {
	p.mu.Lock()
	p.batches = append(p.batches, tickers)
	p.mu.Unlock()

	result := make(map[string]*interfaces.Snapshot, len(tickers))
	for _, t := range tickers {
		if t == p.failTicker {
			return nil, fmt.Errorf("snapshot request for %s failed", t)
		}
		result[t] = &interfaces.Snapshot{Ticker: t}
	}
	return result, nil
}

func manyTickers(n int) []string {
	tickers := make([]string, n)
	for i := range tickers {
		tickers[i] = fmt.Sprintf("T%03d", i)
	}
	return tickers
}

func TestResolveAllSplitsBatches(t *testing.T) {
	provider := &RecordingSnapshotProvider{}
	index := NewSnapshotIndex(provider)

	tickers := manyTickers(60)
	got, err := index.ResolveAll(context.Background(), tickers)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(got) != 60 {
		t.Errorf("resolved %d snapshots, want 60", len(got))
	}

	if len(provider.batches) != 3 {
		t.Fatalf("provider saw %d batches, want 3", len(provider.batches))
	}
	total := 0
	for _, batch := range provider.batches {
		if len(batch) > snapshotBatchSize {
			t.Errorf("batch of %d tickers exceeds the limit of %d", len(batch), snapshotBatchSize)
		}
		total += len(batch)
	}
	if total != 60 {
		t.Errorf("batches cover %d tickers, want 60", total)
	}

	for _, ticker := range tickers {
		if got[ticker] == nil {
			t.Errorf("ticker %s missing from resolution", ticker)
		}
	}
}

func TestResolveAllSingleBatch(t *testing.T) {
	provider := &RecordingSnapshotProvider{}
	index := NewSnapshotIndex(provider)

	if _, err := index.ResolveAll(context.Background(), manyTickers(25)); err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(provider.batches) != 1 {
		t.Errorf("provider saw %d batches, want 1", len(provider.batches))
	}
}

func TestResolveAllFailingBatchAborts(t *testing.T) {
	provider := &RecordingSnapshotProvider{failTicker: "T030"}
	index := NewSnapshotIndex(provider)

	_, err := index.ResolveAll(context.Background(), manyTickers(60))
	if err == nil {
		t.Fatal("ResolveAll succeeded, want error from the failing batch")
	}
	if !strings.Contains(err.Error(), "T030") {
		t.Errorf("err = %v, want the failing batch's error", err)
	}
}

func TestResolveAvailableAbsorbsFailures(t *testing.T) {
	// T030 sits in the second batch; only that batch's tickers go missing
	provider := &RecordingSnapshotProvider{failTicker: "T030"}
	index := NewSnapshotIndex(provider)

	got := index.ResolveAvailable(context.Background(), manyTickers(60))
	if len(got) != 35 {
		t.Errorf("resolved %d snapshots, want 35 from the surviving batches", len(got))
	}
	if _, ok := got["T030"]; ok {
		t.Error("failing batch's ticker resolved anyway")
	}
	if _, ok := got["T010"]; !ok {
		t.Error("first batch's ticker missing")
	}
	if _, ok := got["T055"]; !ok {
		t.Error("third batch's ticker missing")
	}
}

func TestResolveAvailableEmptyInput(t *testing.T) {
	index := NewSnapshotIndex(&RecordingSnapshotProvider{})
	if got := index.ResolveAvailable(context.Background(), nil); len(got) != 0 {
		t.Errorf("resolved %d snapshots from empty input, want 0", len(got))
	}
}
