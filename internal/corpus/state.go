package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// stateVersion is bumped on incompatible ScanState schema changes. A state
// file with a different version is treated as empty, forcing a full rescan
// instead of a failed load.
const stateVersion = 1

// Watermark records the last observed state of one session file.
type Watermark struct {
	FileMtime time.Time `json:"fileMtime"`
	ScannedAt time.Time `json:"scannedAt"`
	ProjectID string    `json:"projectId"`
}

// ScanStats summarizes one scan run.
type ScanStats struct {
	New       int `json:"new"`
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
	Excluded  int `json:"excluded"`
	Projects  int `json:"projects"`
}

// Processed returns the number of sessions handed to the processor.
func (s ScanStats) Processed() int {
	return s.New + s.Modified
}

// ScanState is the single document persisted between scans.
type ScanState struct {
	Version         int                  `json:"version"`
	Sessions        map[string]Watermark `json:"sessions"`
	ExcludeProjects []string             `json:"excludeProjects,omitempty"`
	LastScanAt      time.Time            `json:"lastScanAt,omitzero"`
	LastScanStats   *ScanStats           `json:"lastScanStats,omitempty"`
}

// NewScanState returns an empty state at the current version.
func NewScanState() *ScanState {
	return &ScanState{
		Version:  stateVersion,
		Sessions: make(map[string]Watermark),
	}
}

// StateStore loads and saves ScanState at a fixed path.
type StateStore struct {
	path string
}

// NewStateStore creates a store for the given state file path.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Path returns the state file location.
func (s *StateStore) Path() string {
	return s.path
}

// Load reads the persisted state. A missing, corrupt, or version-skewed
// file yields a fresh empty state, never an error: losing watermarks only
// costs a rescan.
func (s *StateStore) Load() *ScanState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return NewScanState()
	}

	var state ScanState
	if err := json.Unmarshal(data, &state); err != nil {
		return NewScanState()
	}
	if state.Version != stateVersion {
		return NewScanState()
	}
	if state.Sessions == nil {
		state.Sessions = make(map[string]Watermark)
	}
	return &state
}

// Save persists the state atomically: write to a temp file in the same
// directory, then rename over the target, so a crash mid-write cannot
// corrupt the previous state.
func (s *StateStore) Save(state *ScanState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scan state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write scan state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace scan state: %w", err)
	}
	return nil
}

// Reset deletes the state file. Missing file is not an error.
func (s *StateStore) Reset() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove scan state: %w", err)
	}
	return nil
}
