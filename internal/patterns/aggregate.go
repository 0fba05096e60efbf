package patterns

import (
	"time"
)

// Occurrence is the accumulated evidence for one pattern key across a scan
// run.
type Occurrence struct {
	Key       string
	Count     int
	FirstSeen time.Time
	LastSeen  time.Time
	Projects  map[string]bool
	Sessions  map[string]bool
	Files     map[string]bool
}

// Aggregator accumulates pattern occurrences across sessions. It is scan
// local and not safe for concurrent use; the corpus scanner processes
// sessions sequentially.
type Aggregator struct {
	table          map[string]*Occurrence
	projects       map[string]bool
	sessions       map[string]bool
	noiseThreshold float64
	filtered       bool
}

// NewAggregator creates an aggregator. noiseThreshold is the fraction of
// tracked projects at or above which a pattern is considered generic
// tooling noise (e.g. 0.8).
func NewAggregator(noiseThreshold float64) *Aggregator {
	return &Aggregator{
		table:          make(map[string]*Occurrence),
		projects:       make(map[string]bool),
		sessions:       make(map[string]bool),
		noiseThreshold: noiseThreshold,
	}
}

// Ingest records one session's pattern keys. at is the session's last
// activity timestamp; files are the paths the session touched, unioned
// into every pattern seen alongside them.
func (a *Aggregator) Ingest(projectID, sessionID string, at time.Time, keys []string, files []string) {
	a.projects[projectID] = true
	a.sessions[sessionID] = true

	for _, key := range keys {
		occ, ok := a.table[key]
		if !ok {
			occ = &Occurrence{
				Key:       key,
				FirstSeen: at,
				LastSeen:  at,
				Projects:  make(map[string]bool),
				Sessions:  make(map[string]bool),
				Files:     make(map[string]bool),
			}
			a.table[key] = occ
		}
		occ.Count++
		occ.Projects[projectID] = true
		occ.Sessions[sessionID] = true
		if !at.IsZero() && (occ.FirstSeen.IsZero() || at.Before(occ.FirstSeen)) {
			occ.FirstSeen = at
		}
		if at.After(occ.LastSeen) {
			occ.LastSeen = at
		}
		for _, f := range files {
			occ.Files[f] = true
		}
	}
}

// TotalProjects returns the distinct projects ingested this run.
func (a *Aggregator) TotalProjects() int { return len(a.projects) }

// TotalSessions returns the distinct sessions ingested this run.
func (a *Aggregator) TotalSessions() int { return len(a.sessions) }

// FilterNoise drops every pattern present in at least noiseThreshold of
// the tracked projects: something invoked in nearly every project is
// generic tooling, not a workflow worth an artifact. Must run only after
// the whole corpus is ingested, since it needs the final project count as
// denominator. Returns the number of patterns removed.
func (a *Aggregator) FilterNoise() int {
	a.filtered = true
	total := len(a.projects)
	// Breadth means nothing with a single project; filtering there would
	// empty the table.
	if total < 2 {
		return 0
	}
	removed := 0
	for key, occ := range a.table {
		if float64(len(occ.Projects))/float64(total) >= a.noiseThreshold {
			delete(a.table, key)
			removed++
		}
	}
	return removed
}

// Results exposes the occurrence table. Callers treat it as read-only.
func (a *Aggregator) Results() map[string]*Occurrence {
	return a.table
}
