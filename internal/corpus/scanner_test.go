package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emiliopalmerini/skillscout/internal/transcript"
)

func writeSession(t *testing.T, root, project, session string) string {
	t.Helper()
	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, session+".jsonl")
	line := `{"type":"user","timestamp":"2026-08-01T10:00:00Z","message":{"role":"user","content":"hi"}}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestScanner(t *testing.T, root string, opts ScannerOptions) (*Scanner, *StateStore) {
	t.Helper()
	store := NewStateStore(filepath.Join(t.TempDir(), "state.json"))
	return NewScanner(root, store, opts), store
}

func countingProcessor(processed *[]string) Processor {
	return func(session SessionDescriptor, entries *transcript.Stream) error {
		*processed = append(*processed, session.Key())
		return nil
	}
}

func TestScanner_MissingRoot(t *testing.T) {
	scanner, _ := newTestScanner(t, filepath.Join(t.TempDir(), "missing"), ScannerOptions{})

	var processed []string
	stats, err := scanner.Scan(countingProcessor(&processed))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if stats.New != 0 || len(processed) != 0 {
		t.Errorf("missing root should scan nothing, got %+v", stats)
	}
}

func TestScanner_Idempotence(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "projA", "s1")
	writeSession(t, root, "projA", "s2")
	writeSession(t, root, "projB", "s1")

	scanner, _ := newTestScanner(t, root, ScannerOptions{})

	var first []string
	stats1, err := scanner.Scan(countingProcessor(&first))
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if stats1.New != 3 || stats1.Modified != 0 {
		t.Fatalf("first scan: expected 3 new, got %+v", stats1)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 processed, got %d", len(first))
	}

	var second []string
	stats2, err := scanner.Scan(countingProcessor(&second))
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if stats2.New != 0 || stats2.Modified != 0 || stats2.Unchanged != 3 {
		t.Errorf("second scan should be all unchanged, got %+v", stats2)
	}
	if len(second) != 0 {
		t.Errorf("second scan processed %d sessions, expected 0", len(second))
	}
}

func TestScanner_WatermarkMatchesDiskMtime(t *testing.T) {
	root := t.TempDir()
	path := writeSession(t, root, "projA", "s1")

	scanner, store := newTestScanner(t, root, ScannerOptions{})
	var processed []string
	if _, err := scanner.Scan(countingProcessor(&processed)); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	mark, ok := store.Load().Sessions["projA:s1"]
	if !ok {
		t.Fatal("watermark not persisted")
	}
	if !mark.FileMtime.Equal(info.ModTime()) {
		t.Errorf("watermark mtime %v != disk mtime %v", mark.FileMtime, info.ModTime())
	}
}

func TestScanner_ModifiedDetection(t *testing.T) {
	root := t.TempDir()
	path := writeSession(t, root, "projA", "s1")

	scanner, _ := newTestScanner(t, root, ScannerOptions{})
	var processed []string
	if _, err := scanner.Scan(countingProcessor(&processed)); err != nil {
		t.Fatal(err)
	}

	// Touch the file with a clearly different mtime.
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	stats, err := scanner.Scan(countingProcessor(&processed))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Modified != 1 || stats.New != 0 {
		t.Errorf("expected 1 modified, got %+v", stats)
	}
}

func TestScanner_ForceRescansEverything(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "projA", "s1")

	store := NewStateStore(filepath.Join(t.TempDir(), "state.json"))
	var processed []string

	if _, err := NewScanner(root, store, ScannerOptions{}).Scan(countingProcessor(&processed)); err != nil {
		t.Fatal(err)
	}
	stats, err := NewScanner(root, store, ScannerOptions{Force: true}).Scan(countingProcessor(&processed))
	if err != nil {
		t.Fatal(err)
	}
	if stats.New != 1 || stats.Unchanged != 0 {
		t.Errorf("force scan should reprocess, got %+v", stats)
	}
}

func TestScanner_ExcludedProjects(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "projA", "s1")
	writeSession(t, root, "scratch", "s1")
	writeSession(t, root, "scratch", "s2")

	scanner, store := newTestScanner(t, root, ScannerOptions{ExcludeProjects: []string{"scratch"}})
	var processed []string
	stats, err := scanner.Scan(countingProcessor(&processed))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Excluded != 2 || stats.New != 1 {
		t.Errorf("expected 2 excluded and 1 new, got %+v", stats)
	}
	// Run excludes are merged into persisted state.
	state := store.Load()
	if len(state.ExcludeProjects) != 1 || state.ExcludeProjects[0] != "scratch" {
		t.Errorf("exclude not persisted: %v", state.ExcludeProjects)
	}
}

func TestScanner_ProcessorFailurePreservesProgress(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "projA", "s1")
	writeSession(t, root, "projA", "s2")
	writeSession(t, root, "projA", "s3")

	scanner, store := newTestScanner(t, root, ScannerOptions{})

	boom := errors.New("boom")
	calls := 0
	var failedKey string
	stats, err := scanner.Scan(func(session SessionDescriptor, entries *transcript.Stream) error {
		calls++
		if calls == 2 {
			failedKey = session.Key()
			return boom
		}
		return nil
	})

	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("expected processor error surfaced, got %v", err)
	}
	if stats == nil {
		t.Fatal("stats should be returned even on failure")
	}

	state := store.Load()
	if len(state.Sessions) != 1 {
		t.Fatalf("expected 1 watermark persisted before the failure, got %d", len(state.Sessions))
	}
	// The failing session's watermark was not advanced, so it is retried.
	if _, ok := state.Sessions[failedKey]; ok {
		t.Errorf("failed session %s must not have a watermark", failedKey)
	}
}

func TestListSessions_SkipsNonTranscripts(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "projA", "s1")
	// Subdirectories and non-jsonl files are not sessions.
	if err := os.MkdirAll(filepath.Join(root, "projA", "subagents"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "projA", "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray.jsonl"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	sessions, err := ListSessions(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	s := sessions[0]
	if s.ProjectID != "projA" || s.SessionID != "s1" || s.Key() != "projA:s1" {
		t.Errorf("unexpected descriptor: %+v", s)
	}
}
