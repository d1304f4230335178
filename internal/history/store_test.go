package history

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/codecollab/swarm/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func storedResult(id string, startedAt time.Time) *models.RunResult {
	return &models.RunResult{
		ID:              id,
		Success:         true,
		TaskDescription: "write a sorter",
		FinalDecision:   models.DecisionComplete,
		QualityScore:    90,
		Complexity:      models.ComplexitySimple,
		HandoffCount:    4,
		ExecutionTimeMS: 12000,
		TotalTokens:     4200,
		Payment: &models.Payment{
			Amount:   0.04,
			Currency: "USD",
		},
		StartedAt: startedAt,
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store := openTestStore(t)

	saved := storedResult("run-1", time.Now())
	if err := store.SaveRun(saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("run not found")
	}
	if got.TaskDescription != saved.TaskDescription {
		t.Errorf("task = %q", got.TaskDescription)
	}
	if got.QualityScore != 90 || got.Complexity != models.ComplexitySimple {
		t.Errorf("score=%d complexity=%s", got.QualityScore, got.Complexity)
	}
	if got.Payment == nil || got.Payment.Amount != 0.04 {
		t.Errorf("payment = %+v", got.Payment)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.GetRun("absent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		result := storedResult(id, base.Add(time.Duration(i)*time.Minute))
		if err := store.SaveRun(result); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Errorf("order = [%s %s]", runs[0].ID, runs[1].ID)
	}
}

func TestStoreSaveIsIdempotent(t *testing.T) {
	store := openTestStore(t)

	result := storedResult("run-1", time.Now())
	if err := store.SaveRun(result); err != nil {
		t.Fatalf("save: %v", err)
	}
	result.QualityScore = 95
	if err := store.SaveRun(result); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len = %d, want 1", len(runs))
	}
	if runs[0].QualityScore != 95 {
		t.Errorf("score = %d, want 95", runs[0].QualityScore)
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	ok := storedResult("run-1", time.Now())
	failed := storedResult("run-2", time.Now())
	failed.Success = false
	failed.Payment.Amount = 0.01

	for _, r := range []*models.RunResult{ok, failed} {
		if err := store.SaveRun(r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalRuns != 2 || stats.SuccessfulRuns != 1 {
		t.Errorf("runs = %d/%d", stats.SuccessfulRuns, stats.TotalRuns)
	}
	if math.Abs(stats.TotalEarned-0.05) > 1e-9 {
		t.Errorf("earned = %.4f, want 0.05", stats.TotalEarned)
	}
	if stats.TotalTokens != 8400 {
		t.Errorf("tokens = %d, want 8400", stats.TotalTokens)
	}
}

func TestStorePurgeOldRuns(t *testing.T) {
	store := openTestStore(t)

	old := storedResult("run-old", time.Now().Add(-48*time.Hour))
	fresh := storedResult("run-fresh", time.Now())
	for _, r := range []*models.RunResult{old, fresh} {
		if err := store.SaveRun(r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	purged, err := store.PurgeOldRuns(24 * time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-fresh" {
		t.Errorf("remaining = %+v", runs)
	}
}
