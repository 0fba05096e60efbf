package corpus

import (
	"fmt"
	"time"

	"github.com/emiliopalmerini/skillscout/internal/transcript"
)

// Processor consumes one session's entry stream. The scanner closes the
// stream after the call returns.
type Processor func(session SessionDescriptor, entries *transcript.Stream) error

// ScannerOptions tune one scan run.
type ScannerOptions struct {
	// Force treats every non-excluded session as new, ignoring watermarks.
	Force bool
	// ExcludeProjects are merged with the excludes persisted in state.
	ExcludeProjects []string
}

// Scanner diffs the on-disk session inventory against persisted watermarks
// and hands only new or modified sessions to a processor. Sessions are
// processed sequentially; state is written exactly once per run.
type Scanner struct {
	root  string
	store *StateStore
	opts  ScannerOptions
}

// NewScanner creates a scanner over root using store for watermarks.
func NewScanner(root string, store *StateStore, opts ScannerOptions) *Scanner {
	return &Scanner{root: root, store: store, opts: opts}
}

// Scan runs one pass over the corpus. A processor error aborts the run,
// but watermarks for sessions already processed are still persisted, so
// the failing session is retried on the next scan while finished work is
// not repeated. A state save failure is always surfaced: silently dropping
// watermarks would cause the whole corpus to be reprocessed every run.
func (s *Scanner) Scan(processor Processor) (*ScanStats, error) {
	state := s.store.Load()

	sessions, err := ListSessions(s.root)
	if err != nil {
		return nil, fmt.Errorf("enumerate sessions: %w", err)
	}

	excluded := make(map[string]bool)
	for _, p := range state.ExcludeProjects {
		excluded[p] = true
	}
	for _, p := range s.opts.ExcludeProjects {
		if !excluded[p] {
			excluded[p] = true
			state.ExcludeProjects = append(state.ExcludeProjects, p)
		}
	}

	stats := &ScanStats{}
	projects := make(map[string]bool)
	var procErr error

	for _, session := range sessions {
		if excluded[session.ProjectID] {
			stats.Excluded++
			continue
		}
		projects[session.ProjectID] = true

		mark, seen := state.Sessions[session.Key()]
		switch {
		case s.opts.Force || !seen:
			stats.New++
		case mark.FileMtime.Equal(session.ModTime):
			stats.Unchanged++
			continue
		default:
			stats.Modified++
		}

		stream := transcript.Open(session.Path)
		err := processor(session, stream)
		_ = stream.Close()
		if err != nil {
			// Watermark not advanced: this session is retried next scan.
			procErr = fmt.Errorf("process session %s: %w", session.Key(), err)
			break
		}

		state.Sessions[session.Key()] = Watermark{
			FileMtime: session.ModTime,
			ScannedAt: time.Now().UTC(),
			ProjectID: session.ProjectID,
		}
	}

	stats.Projects = len(projects)
	state.LastScanAt = time.Now().UTC()
	state.LastScanStats = stats

	if err := s.store.Save(state); err != nil {
		return stats, err
	}
	return stats, procErr
}
