package transcript

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return path
}

func TestStream_MissingFile(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "nope.jsonl"))
	defer s.Close()

	if entries := s.Collect(); len(entries) != 0 {
		t.Errorf("expected empty stream, got %d entries", len(entries))
	}
}

func TestStream_CorruptionTolerance(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"user","timestamp":"2026-08-01T10:00:00Z","message":{"role":"user","content":"first"}}`,
		`{not json at all`,
		`{"type":"assistant","timestamp":"2026-08-01T10:00:05Z","message":{"role":"assistant","content":[{"type":"text","text":"reply"}]}}`,
		``,
		`garbage garbage`,
		`{"type":"user","timestamp":"2026-08-01T10:01:00Z","message":{"role":"user","content":"second"}}`,
	)

	s := Open(path)
	defer s.Close()
	entries := s.Collect()

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// Valid entries keep their original relative order.
	want := []EntryKind{KindUser, KindAssistant, KindUser}
	for i, kind := range want {
		if entries[i].Kind != kind {
			t.Errorf("entry %d: expected kind %s, got %s", i, kind, entries[i].Kind)
		}
	}
	if entries[0].Text != "first" || entries[2].Text != "second" {
		t.Errorf("user text not preserved in order: %q, %q", entries[0].Text, entries[2].Text)
	}
}

func TestStream_SidechainFiltered(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"user","isSidechain":true,"message":{"role":"user","content":"delegated"}}`,
		`{"type":"user","message":{"role":"user","content":"top-level"}}`,
		`{"type":"assistant","isSidechain":true,"message":{"role":"assistant","content":[{"type":"tool_use","name":"Read","input":{"file_path":"/a"}}]}}`,
	)

	s := Open(path)
	defer s.Close()
	entries := s.Collect()

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Text != "top-level" {
		t.Errorf("expected top-level entry, got %q", entries[0].Text)
	}
}

func TestStream_ToolUseExtraction(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"assistant","timestamp":"2026-08-01T10:00:00Z","message":{"role":"assistant","content":[`+
			`{"type":"text","text":"working on it"},`+
			`{"type":"tool_use","name":"Read","input":{"file_path":"/src/main.go"}},`+
			`{"type":"tool_use","name":"Bash","input":{"command":"go test ./..."}}]}}`,
	)

	s := Open(path)
	defer s.Close()
	entries := s.Collect()

	if len(entries) != 3 {
		t.Fatalf("expected assistant + 2 tool entries, got %d", len(entries))
	}
	if entries[0].Kind != KindAssistant || entries[0].Text != "working on it" {
		t.Errorf("unexpected assistant entry: %+v", entries[0])
	}

	read := entries[1]
	if read.Kind != KindToolUse || read.Tool != "Read" || read.FilePath != "/src/main.go" {
		t.Errorf("unexpected Read entry: %+v", read)
	}
	bash := entries[2]
	if bash.Tool != "Bash" || bash.Command != "go test ./..." {
		t.Errorf("unexpected Bash entry: %+v", bash)
	}
	if bash.Timestamp.IsZero() {
		t.Error("tool entry should inherit the line timestamp")
	}
}

func TestStream_UnknownTypesSkipped(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"file-history-snapshot","snapshot":{}}`,
		`{"type":"summary","summary":"old conversation"}`,
		`{"type":"user","message":{"role":"user","content":"hello"}}`,
	)

	s := Open(path)
	defer s.Close()
	entries := s.Collect()

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestStream_EarlyStop(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"user","message":{"role":"user","content":"one"}}`,
		`{"type":"user","message":{"role":"user","content":"two"}}`,
	)

	s := Open(path)
	e, ok := s.Next()
	if !ok || e.Text != "one" {
		t.Fatalf("unexpected first entry: %+v", e)
	}
	// Consumers may abandon the stream without draining it.
	if err := s.Close(); err != nil {
		t.Errorf("close after partial read: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("double close: %v", err)
	}
}
