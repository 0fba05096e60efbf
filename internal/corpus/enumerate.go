// Package corpus enumerates and incrementally scans a directory tree of
// per-project Claude Code session transcripts. Watermarks persisted between
// runs let the scanner skip sessions whose files have not changed.
package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SessionDescriptor identifies one transcript file without reading it.
type SessionDescriptor struct {
	ProjectID string
	SessionID string
	Path      string
	ModTime   time.Time
}

// Key returns the identity key for watermark lookups. Project and session
// are combined because session IDs are not guaranteed unique across
// projects.
func (d SessionDescriptor) Key() string {
	return d.ProjectID + ":" + d.SessionID
}

// ListSessions walks root's per-project subdirectories and returns a
// descriptor for every top-level .jsonl transcript found. Only stats are
// read, never file contents. A missing root yields an empty list.
// Enumeration order is not significant.
func ListSessions(root string) ([]SessionDescriptor, error) {
	projects, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sessions []SessionDescriptor
	for _, proj := range projects {
		if !proj.IsDir() {
			continue
		}
		projPath := filepath.Join(root, proj.Name())
		files, err := os.ReadDir(projPath)
		if err != nil {
			continue
		}
		for _, f := range files {
			// Subdirectories hold subagent transcripts, not sessions.
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".jsonl") {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			sessions = append(sessions, SessionDescriptor{
				ProjectID: proj.Name(),
				SessionID: strings.TrimSuffix(f.Name(), ".jsonl"),
				Path:      filepath.Join(projPath, f.Name()),
				ModTime:   info.ModTime(),
			})
		}
	}
	return sessions, nil
}
