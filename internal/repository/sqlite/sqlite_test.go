package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"framepruner/internal/models"
)

// ========================================
// Database Integration Tests
// ========================================

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertRun(t *testing.T, repo *RunRepository, id, dir string, started time.Time) *models.Run {
	t.Helper()
	run := &models.Run{
		ID:        id,
		Directory: dir,
		StartedAt: started,
		Status:    models.RunStatusRunning,
		Frames:    5,
	}
	if err := repo.Insert(run); err != nil {
		t.Fatalf("Failed to insert run: %v", err)
	}
	return run
}

func TestDatabase_Connection(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should exist")
	}
}

func TestDatabase_MigrateTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		db, err := New(dbPath)
		if err != nil {
			t.Fatalf("Open %d failed: %v", i, err)
		}
		db.Close()
	}
}

// ========================================
// Run Repository Tests
// ========================================

func TestRunRepository_InsertAndFinish(t *testing.T) {
	db := newTestDB(t)
	repo := NewRunRepository(db)

	started := time.Now().UTC().Truncate(time.Second)
	run := insertRun(t, repo, "run-1", "/frames", started)

	got, err := repo.GetByID("run-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil || got.Status != models.RunStatusRunning || got.FinishedAt != nil {
		t.Fatalf("Unexpected running run: %+v", got)
	}

	finished := started.Add(time.Minute)
	run.FinishedAt = &finished
	run.Status = models.RunStatusFinished
	run.Discarded = 2
	run.MeanProbability = 1.5
	run.MaxProbability = 4
	if err := repo.Finish(run); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	got, err = repo.GetByID("run-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.RunStatusFinished || got.Discarded != 2 {
		t.Errorf("Expected finished run with 2 discarded, got %+v", got)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Errorf("Expected finished_at %v, got %v", finished, got.FinishedAt)
	}
	if got.MeanProbability != 1.5 || got.MaxProbability != 4 {
		t.Errorf("Unexpected probability stats: %+v", got)
	}
}

func TestRunRepository_FinishUnknown(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))
	if err := repo.Finish(&models.Run{ID: "missing"}); err == nil {
		t.Error("Expected error finishing an unknown run")
	}
}

func TestRunRepository_GetByIDMissing(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))
	got, err := repo.GetByID("missing")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing run, got %+v", got)
	}
}

func TestRunRepository_GetAll(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))
	base := time.Now().UTC().Truncate(time.Second)
	insertRun(t, repo, "a", "/one", base)
	insertRun(t, repo, "b", "/two", base.Add(time.Second))
	insertRun(t, repo, "c", "/one", base.Add(2*time.Second))

	all, err := repo.GetAll(nil)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("Expected newest first, got %+v", all)
	}

	one, err := repo.GetAll(&models.RunFilter{Directory: "/one"})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(one) != 2 {
		t.Errorf("Expected 2 runs in /one, got %d", len(one))
	}

	page, err := repo.GetAll(&models.RunFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != "b" {
		t.Errorf("Expected page with b, got %+v", page)
	}
}

// ========================================
// Verdict Repository Tests
// ========================================

func TestVerdictRepository_InsertBatchAndCounts(t *testing.T) {
	db := newTestDB(t)
	runs := NewRunRepository(db)
	verdicts := NewVerdictRepository(db)
	insertRun(t, runs, "run-1", "/frames", time.Now())

	batch := []models.Verdict{
		{RunID: "run-1", FrameIndex: 2, Filename: "c.png", NextFilename: "d.png", Category: "person", Probability: 3},
		{RunID: "run-1", FrameIndex: 0, Filename: "a.png", NextFilename: "b.png", Category: "no_change", Discarded: true},
		{RunID: "run-1", FrameIndex: 1, Filename: "b.png", NextFilename: "c.png", Category: "no_change", Discarded: true},
	}
	if err := verdicts.InsertBatch(batch); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	all, err := verdicts.GetByRunID("run-1", false)
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 verdicts, got %d", len(all))
	}
	for i, v := range all {
		if v.FrameIndex != i {
			t.Errorf("Expected frame order, got index %d at %d", v.FrameIndex, i)
		}
	}

	discarded, err := verdicts.GetByRunID("run-1", true)
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(discarded) != 2 {
		t.Errorf("Expected 2 discarded verdicts, got %d", len(discarded))
	}

	counts, err := verdicts.GetCategoryCounts("run-1")
	if err != nil {
		t.Fatalf("GetCategoryCounts failed: %v", err)
	}
	if counts["no_change"] != 2 || counts["person"] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestVerdictRepository_DuplicateFrameRollsBack(t *testing.T) {
	db := newTestDB(t)
	insertRun(t, NewRunRepository(db), "run-1", "/frames", time.Now())
	verdicts := NewVerdictRepository(db)

	batch := []models.Verdict{
		{RunID: "run-1", FrameIndex: 0, Filename: "a.png", NextFilename: "b.png", Category: "no_change"},
		{RunID: "run-1", FrameIndex: 0, Filename: "a.png", NextFilename: "b.png", Category: "no_change"},
	}
	if err := verdicts.InsertBatch(batch); err == nil {
		t.Fatal("Expected error on duplicate frame index")
	}

	all, err := verdicts.GetByRunID("run-1", false)
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Expected rollback, got %d verdicts", len(all))
	}
}

func TestRunRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	runs := NewRunRepository(db)
	verdicts := NewVerdictRepository(db)
	insertRun(t, runs, "run-1", "/frames", time.Now())

	if err := verdicts.InsertBatch([]models.Verdict{
		{RunID: "run-1", FrameIndex: 0, Filename: "a.png", NextFilename: "b.png", Category: "car"},
	}); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	if err := runs.Delete("run-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	left, err := verdicts.GetByRunID("run-1", false)
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("Expected verdicts to be deleted with run, got %d", len(left))
	}
}
