// Package discover composes the corpus scanner, pattern extractors,
// aggregator, clustering, and ranking into one batch discovery run.
package discover

import (
	"context"
	"time"

	"github.com/emiliopalmerini/skillscout/internal/corpus"
	"github.com/emiliopalmerini/skillscout/internal/embedding"
	"github.com/emiliopalmerini/skillscout/internal/patterns"
	"github.com/emiliopalmerini/skillscout/internal/rank"
	"github.com/emiliopalmerini/skillscout/internal/transcript"
)

// Config holds the tuning knobs for a discovery service.
type Config struct {
	Root           string  // corpus root of per-project transcript folders
	StatePath      string  // scan state JSON document
	NoiseThreshold float64 // cross-project noise fraction, e.g. 0.8
	MinPts         int     // DBSCAN minimum points
	DedupThreshold float64
	Weights        patterns.Weights
}

// RunOptions vary per invocation.
type RunOptions struct {
	Force           bool
	ExcludeProjects []string
	Existing        []rank.ExistingArtifact
}

// Report summarizes one discovery run, including how far it degraded, so
// operators can see a partially-degraded run still mostly worked.
type Report struct {
	StartedAt          time.Time        `json:"startedAt"`
	FinishedAt         time.Time        `json:"finishedAt"`
	Stats              corpus.ScanStats `json:"stats"`
	TotalProjects      int              `json:"totalProjects"`
	TotalSessions      int              `json:"totalSessions"`
	PatternsFound      int              `json:"patternsFound"`
	NoiseFiltered      int              `json:"noiseFiltered"`
	Candidates         []rank.Candidate `json:"candidates"`
	Epsilon            float64          `json:"epsilon"`
	ClusteringDegraded bool             `json:"clusteringDegraded"`
	DuplicatesDropped  int              `json:"duplicatesDropped"`
	Warnings           []string         `json:"warnings,omitempty"`
}

// Service runs the discovery pipeline. The embedding engine is optional;
// without it clustering and dedup degrade but the run still succeeds.
type Service struct {
	cfg    Config
	engine embedding.Engine
}

// NewService creates a discovery service. engine may be nil.
func NewService(cfg Config, engine embedding.Engine) *Service {
	if cfg.NoiseThreshold == 0 {
		cfg.NoiseThreshold = 0.8
	}
	if cfg.MinPts == 0 {
		cfg.MinPts = 3
	}
	if cfg.Weights == (patterns.Weights{}) {
		cfg.Weights = patterns.DefaultWeights
	}
	return &Service{cfg: cfg, engine: engine}
}

// Run executes one scan-extract-aggregate-rank pass. Scan progress is
// persisted even when the run fails partway, so the next run resumes from
// the last good watermark.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	report := &Report{StartedAt: time.Now().UTC()}

	agg := patterns.NewAggregator(s.cfg.NoiseThreshold)
	store := corpus.NewStateStore(s.cfg.StatePath)
	scanner := corpus.NewScanner(s.cfg.Root, store, corpus.ScannerOptions{
		Force:           opts.Force,
		ExcludeProjects: opts.ExcludeProjects,
	})

	stats, err := scanner.Scan(func(session corpus.SessionDescriptor, entries *transcript.Stream) error {
		act := patterns.CollectActivity(entries)
		at := act.LastSeen
		if at.IsZero() {
			at = session.ModTime
		}
		agg.Ingest(session.ProjectID, session.SessionID, at, act.Keys(), act.Files)
		return nil
	})
	if stats != nil {
		report.Stats = *stats
	}
	if err != nil {
		return report, err
	}

	report.NoiseFiltered = agg.FilterNoise()
	occs := agg.Results()
	report.PatternsFound = len(occs)
	report.TotalProjects = agg.TotalProjects()
	report.TotalSessions = agg.TotalSessions()

	outcome := rank.Rank(ctx, occs, agg.TotalProjects(), rank.Options{
		Weights:        s.cfg.Weights,
		MinPts:         s.cfg.MinPts,
		DedupThreshold: s.cfg.DedupThreshold,
		Now:            time.Now().UTC(),
		Engine:         s.engine,
		Existing:       opts.Existing,
	})

	report.Candidates = outcome.Candidates
	report.Epsilon = outcome.Epsilon
	report.ClusteringDegraded = outcome.Degraded
	report.DuplicatesDropped = outcome.Dropped
	report.Warnings = outcome.Warnings
	report.FinishedAt = time.Now().UTC()
	return report, nil
}
