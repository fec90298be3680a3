package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/vision-probe/internal/domain"
	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "history.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRecentNewestFirstPerTool(t *testing.T) {
	store := openTestStore(t, Options{})
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	events := []domain.RunEvent{
		{RunID: "s1", Tool: domain.ToolSpirit, StartedAt: base, Success: true},
		{RunID: "l1", Tool: domain.ToolLookalike, StartedAt: base.Add(time.Second)},
		{RunID: "s2", Tool: domain.ToolSpirit, StartedAt: base.Add(2 * time.Second), FailureKind: "timeout"},
		{RunID: "s3", Tool: domain.ToolSpirit, StartedAt: base.Add(3 * time.Second), Success: true},
	}
	for _, evt := range events {
		if err := store.Record(evt); err != nil {
			t.Fatalf("Record %s: %v", evt.RunID, err)
		}
	}

	got, err := store.Recent(domain.ToolSpirit, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].RunID != "s3" || got[1].RunID != "s2" {
		t.Fatalf("unexpected recent runs %+v", got)
	}
	if got[1].FailureKind != "timeout" {
		t.Fatalf("event fields not round-tripped: %+v", got[1])
	}

	got, err = store.Recent(domain.ToolLookalike, 10)
	if err != nil {
		t.Fatalf("Recent lookalike: %v", err)
	}
	if len(got) != 1 || got[0].RunID != "l1" {
		t.Fatalf("unexpected lookalike runs %+v", got)
	}
}

func TestBoltStoreExpiresRuns(t *testing.T) {
	store := openTestStore(t, Options{RunTTL: time.Hour, CleanupInterval: time.Minute})
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Record(domain.RunEvent{RunID: "old", Tool: domain.ToolSpirit, StartedAt: now}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	now = now.Add(2 * time.Hour)
	got, err := store.Recent(domain.ToolSpirit, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected expired run to be hidden, got %+v", got)
	}

	// The next write sweeps the expired entry.
	if err := store.Record(domain.RunEvent{RunID: "new", Tool: domain.ToolSpirit, StartedAt: now}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	count := 0
	if err := store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(runBucket)).ForEach(func(_, _ []byte) error {
			count++
			return nil
		})
	}); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored run after cleanup, got %d", count)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(domain.RunEvent{RunID: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if runs, err := store.Recent(domain.ToolSpirit, 5); err != nil || len(runs) != 0 {
		t.Fatalf("noop store Recent: %v %v", runs, err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for empty bbolt path")
	}
}
