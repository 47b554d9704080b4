package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"framepruner/internal/detection"
	"framepruner/internal/models"
)

func writeFrame(t *testing.T, dir, name string, withObject bool) {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(70, 70, 70, 0), 240, 320, gocv.MatTypeCV8UC3)
	defer m.Close()
	if withObject {
		if err := gocv.Rectangle(&m, image.Rect(100, 60, 180, 200), color.RGBA{R: 240, G: 240, B: 240}, -1); err != nil {
			t.Fatalf("Failed to draw rectangle: %v", err)
		}
	}
	if ok := gocv.IMWrite(filepath.Join(dir, name), m); !ok {
		t.Fatalf("Failed to write %s", name)
	}
}

func testConfig(t *testing.T, dir string) *configBuilder {
	t.Helper()
	return &configBuilder{dir: dir, dbPath: filepath.Join(t.TempDir(), "runs.db")}
}

func TestApp_RunRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	pattern := []bool{false, false, true, false, false}
	for i, withObject := range pattern {
		writeFrame(t, dir, []string{"0001.png", "0002.png", "0003.png", "0004.png", "0005.png"}[i], withObject)
	}

	cfg := testConfig(t, dir).build()
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	var out bytes.Buffer
	a.SetOutput(&out)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	report := out.String()
	for _, want := range []string{
		"Discarded images because of no observable changes 2",
		"Deleted images = 2",
		"Percentage of deleted images = 40.00",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("Report missing %q:\n%s", want, report)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 frames to remain, got %d", len(entries))
	}

	runs, err := a.runs.GetAll(nil)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != models.RunStatusFinished || run.Frames != 5 || run.Discarded != 2 || run.FinishedAt == nil {
		t.Errorf("Unexpected run: %+v", run)
	}

	verdicts, err := a.verdicts.GetByRunID(run.ID, false)
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(verdicts) != 4 {
		t.Fatalf("Expected 4 verdicts, got %d", len(verdicts))
	}
	if verdicts[0].Category != detection.NoChange.String() || !verdicts[0].Discarded {
		t.Errorf("Unexpected first verdict: %+v", verdicts[0])
	}
}

func TestApp_DryRunKeepsFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		writeFrame(t, dir, name, false)
	}

	cfg := testConfig(t, dir).build()
	cfg.DryRun = true
	cfg.DBPath = ""
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	var out bytes.Buffer
	a.SetOutput(&out)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), "Would delete images = 2") {
		t.Errorf("Unexpected report:\n%s", out.String())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected dry run to keep all 3 frames, got %d", len(entries))
	}
}

func TestApp_FailedRunIsRecorded(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "a.png", false)
	if err := os.WriteFile(filepath.Join(dir, "b.png"), []byte("broken"), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := New(testConfig(t, dir).build())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()
	a.SetOutput(&bytes.Buffer{})

	if err := a.Run(context.Background()); err == nil {
		t.Fatal("Expected decode failure")
	}

	runs, err := a.runs.GetAll(&models.RunFilter{Status: models.RunStatusFailed})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Error == "" {
		t.Errorf("Expected one failed run with an error, got %+v", runs)
	}
}

func TestApp_PartialDiscardRecordsRemovedCount(t *testing.T) {
	dir := t.TempDir()
	pattern := []bool{false, false, true, false, false}
	for i, withObject := range pattern {
		writeFrame(t, dir, []string{"0001.png", "0002.png", "0003.png", "0004.png", "0005.png"}[i], withObject)
	}

	// A directory in the way makes moving the second discarded frame fail.
	trash := t.TempDir()
	if err := os.Mkdir(filepath.Join(trash, "0004.png"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t, dir).build()
	cfg.TrashDirectory = trash
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()
	a.SetOutput(&bytes.Buffer{})

	if err := a.Run(context.Background()); err == nil {
		t.Fatal("Expected the second move to fail")
	}

	runs, err := a.runs.GetAll(nil)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	if runs[0].Status != models.RunStatusFailed || runs[0].Discarded != 1 {
		t.Errorf("Expected a failed run with 1 frame removed, got %+v", runs[0])
	}

	marked, err := a.verdicts.GetByRunID(runs[0].ID, true)
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(marked) != 2 {
		t.Errorf("Expected 2 frames marked for discarding, got %d", len(marked))
	}

	if _, err := os.Stat(filepath.Join(dir, "0004.png")); err != nil {
		t.Errorf("Expected 0004.png to stay in place: %v", err)
	}
}

func TestApp_MissingDirectory(t *testing.T) {
	a, err := New(testConfig(t, filepath.Join(t.TempDir(), "missing")).build())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err == nil {
		t.Error("Expected error for missing directory")
	}
}
