package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"lexkit/internal/keyset"
	"lexkit/internal/source"
	"lexkit/internal/storage/sqlite"
)

func writeLexicon(tb testing.TB, content string) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "lex.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write fixture: %v", err)
	}
	return path
}

// newSQLiteRepo opens a file-backed temp database; a file (not :memory:)
// keeps the database shared across the pool's connections.
func newSQLiteRepo(tb testing.TB) *sqlite.Repository {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "keys.db")
	repo, err := sqlite.NewRepository(context.Background(), sqlite.Config{
		DSN:   dsn,
		Table: "lex_keys",
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(repo.Close)
	return repo
}

// fakeRepo records batches for batching-behavior tests.
type fakeRepo struct {
	mu      sync.Mutex
	batches [][]string
	failOn  int // 1-based batch index to fail on; 0 = never
}

func (f *fakeRepo) EnsureTable(ctx context.Context) error { return nil }

func (f *fakeRepo) InsertKeys(ctx context.Context, keys []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]string(nil), keys...))
	if f.failOn > 0 && len(f.batches) == f.failOn {
		return 0, errors.New("sink unavailable")
	}
	return int64(len(keys)), nil
}

func (f *fakeRepo) Close() {}

func newSet(keys ...string) *keyset.Set {
	s := keyset.New()
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

func TestLoadBatching(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	set := keyset.New()
	for i := 0; i < 7; i++ {
		set.Add(fmt.Sprintf("k%d", i))
	}

	loaded, err := load(context.Background(), repo, set, 3)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != 7 {
		t.Errorf("loaded = %d, want 7", loaded)
	}
	if len(repo.batches) != 3 {
		t.Fatalf("batches = %d, want 3 (3+3+1)", len(repo.batches))
	}
	if len(repo.batches[0]) != 3 || len(repo.batches[1]) != 3 || len(repo.batches[2]) != 1 {
		t.Errorf("batch sizes = %d,%d,%d, want 3,3,1",
			len(repo.batches[0]), len(repo.batches[1]), len(repo.batches[2]))
	}
	// Batches must arrive in sorted key order.
	if repo.batches[0][0] != "k0" || repo.batches[2][0] != "k6" {
		t.Errorf("batch contents out of order: first=%q last=%q", repo.batches[0][0], repo.batches[2][0])
	}
}

func TestLoadEmptySet(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	loaded, err := load(context.Background(), repo, keyset.New(), 10)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != 0 || len(repo.batches) != 0 {
		t.Errorf("empty set loaded %d keys in %d batches, want 0/0", loaded, len(repo.batches))
	}
}

func TestLoadSinkFailureStopsRun(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{failOn: 2}
	_, err := load(context.Background(), repo, newSet("a", "b", "c", "d"), 1)
	if err == nil {
		t.Fatal("load with failing sink succeeded, want error")
	}
	// The producer side must unwind too; at most one more batch may have
	// been attempted before cancellation propagated.
	if len(repo.batches) > 3 {
		t.Errorf("%d batches attempted after failure, want early stop", len(repo.batches))
	}
}

func TestRunLoadEndToEndSQLite(t *testing.T) {
	t.Parallel()

	path := writeLexicon(t, "b,1\na,2\nb,3\nc,4\n")
	repo := newSQLiteRepo(t)

	loaded, stats, err := runLoad(context.Background(), source.NewFile(path), repo, options{batchSize: 2})
	if err != nil {
		t.Fatalf("runLoad: %v", err)
	}
	if loaded != 3 {
		t.Errorf("loaded = %d, want 3", loaded)
	}
	if stats.Rows != 4 || stats.Distinct != 3 {
		t.Errorf("stats = %+v, want Rows 4 Distinct 3", stats)
	}

	// Re-running the same load adds nothing.
	loaded, _, err = runLoad(context.Background(), source.NewFile(path), repo, options{batchSize: 2})
	if err != nil {
		t.Fatalf("second runLoad: %v", err)
	}
	if loaded != 0 {
		t.Errorf("second load added %d keys, want 0 (idempotent)", loaded)
	}

	total, err := repo.CountKeys(context.Background())
	if err != nil {
		t.Fatalf("CountKeys: %v", err)
	}
	if total != 3 {
		t.Errorf("table holds %d keys, want 3", total)
	}
}

func TestRunLoadExtractErrorSkipsLoad(t *testing.T) {
	t.Parallel()

	path := writeLexicon(t, "ok,1\n\"unterminated,2\n")
	repo := &fakeRepo{}

	_, _, err := runLoad(context.Background(), source.NewFile(path), repo, options{})
	if err == nil {
		t.Fatal("runLoad on malformed input succeeded, want error")
	}
	if len(repo.batches) != 0 {
		t.Errorf("load ran despite extract failure (%d batches)", len(repo.batches))
	}
}

func TestNewRepositoryUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := newRepository(context.Background(), options{driver: "oracle", table: "t"})
	if err == nil {
		t.Fatal("unknown driver accepted, want error")
	}
}

func TestSetupMetricsUnknownBackend(t *testing.T) {
	t.Parallel()

	if err := setupMetrics("graphite", "", ""); err == nil {
		t.Fatal("unknown metrics backend accepted, want error")
	}
}
