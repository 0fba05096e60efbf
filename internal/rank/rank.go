// Package rank merges scored and clustered patterns into the final
// ordered candidate list, deduplicated against skills that already exist.
package rank

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/emiliopalmerini/skillscout/internal/cluster"
	"github.com/emiliopalmerini/skillscout/internal/draft"
	"github.com/emiliopalmerini/skillscout/internal/embedding"
	"github.com/emiliopalmerini/skillscout/internal/patterns"
)

// Candidate is one ranked discovery result.
type Candidate struct {
	Key           string             `json:"key"`
	Score         float64            `json:"score"`
	Breakdown     patterns.Breakdown `json:"breakdown"`
	Occurrences   int                `json:"occurrences"`
	ProjectCount  int                `json:"projectCount"`
	SessionCount  int                `json:"sessionCount"`
	SuggestedName string             `json:"suggestedName"`
	Description   string             `json:"description"`
	ClusterKeys   []string           `json:"clusterKeys,omitempty"` // siblings collapsed into this candidate
	Files         []string           `json:"-"`
}

// ExistingArtifact is a skill already on disk, used only for dedup.
type ExistingArtifact struct {
	Name        string
	Description string
}

// Options configure one ranking pass.
type Options struct {
	Weights        patterns.Weights
	MinPts         int
	DedupThreshold float64
	Now            time.Time
	Engine         embedding.Engine // optional; nil degrades clustering to singletons
	Existing       []ExistingArtifact
}

// Outcome carries the ranked list plus clustering diagnostics.
type Outcome struct {
	Candidates []Candidate
	Epsilon    float64
	Degraded   bool // clustering fell back to singleton mode
	Dropped    int  // candidates removed as duplicates of existing skills
	Warnings   []string
}

// Rank scores every surviving pattern, collapses clusters of near
// duplicates to their best representative, orders the result
// deterministically, and drops candidates too similar to existing
// artifacts. An empty occurrence table yields an empty list, not an
// error.
func Rank(ctx context.Context, occs map[string]*patterns.Occurrence, totalProjects int, opts Options) Outcome {
	out := Outcome{}
	if len(occs) == 0 {
		return out
	}

	scored := make(map[string]patterns.Scored, len(occs))
	keys := make([]string, 0, len(occs))
	for key, occ := range occs {
		scored[key] = patterns.Score(occ, totalProjects, opts.Now, opts.Weights)
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := clusterKeys(ctx, keys, opts, &out)
	out.Epsilon = result.Epsilon
	out.Degraded = result.Degraded

	// Collapse each cluster to its highest-scoring representative; noise
	// points pass through as their own candidates.
	var candidates []Candidate
	for _, cl := range result.Clusters {
		candidates = append(candidates, collapse(cl.Members, scored))
	}
	for _, id := range result.Noise {
		candidates = append(candidates, collapse([]string{id}, scored))
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Occurrences != b.Occurrences {
			return a.Occurrences > b.Occurrences
		}
		return a.Key < b.Key
	})

	candidates, dropped := dedupe(ctx, candidates, opts)
	out.Candidates = candidates
	out.Dropped = dropped
	return out
}

// clusterKeys embeds every pattern description and clusters the vectors.
// Any embedding failure degrades to singleton clusters rather than
// failing the run.
func clusterKeys(ctx context.Context, keys []string, opts Options, out *Outcome) cluster.Result {
	if opts.Engine == nil {
		return cluster.Singletons(keys)
	}

	texts := make([]string, len(keys))
	for i, key := range keys {
		texts[i] = draft.Describe(key)
	}
	vectors, err := opts.Engine.EmbedBatch(ctx, texts)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("embedding unavailable, clustering skipped: %v", err))
		return cluster.Singletons(keys)
	}

	points := make([]cluster.Point, len(keys))
	for i, key := range keys {
		points[i] = cluster.Point{ID: key, Vector: vectors[i]}
	}
	return cluster.Run(points, opts.MinPts)
}

func collapse(members []string, scored map[string]patterns.Scored) Candidate {
	sort.Strings(members)
	best := scored[members[0]]
	for _, key := range members[1:] {
		s := scored[key]
		if s.Score > best.Score || (s.Score == best.Score && s.Occurrence.Count > best.Occurrence.Count) {
			best = s
		}
	}

	var siblings []string
	for _, key := range members {
		if key != best.Key {
			siblings = append(siblings, key)
		}
	}

	occ := best.Occurrence
	files := make([]string, 0, len(occ.Files))
	for f := range occ.Files {
		files = append(files, f)
	}
	sort.Strings(files)

	return Candidate{
		Key:           best.Key,
		Score:         best.Score,
		Breakdown:     best.Breakdown,
		Occurrences:   occ.Count,
		ProjectCount:  len(occ.Projects),
		SessionCount:  len(occ.Sessions),
		SuggestedName: draft.SuggestName(best.Key),
		Description:   draft.Describe(best.Key),
		ClusterKeys:   siblings,
		Files:         files,
	}
}
