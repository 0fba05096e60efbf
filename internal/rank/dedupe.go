package rank

import (
	"context"
	"strings"

	"github.com/emiliopalmerini/skillscout/internal/embedding"
)

// defaultDedupThreshold is used when Options.DedupThreshold is unset.
const defaultDedupThreshold = 0.82

// dedupe drops candidates judged too similar to an existing artifact.
// When the embedding engine is available the comparison uses vector
// similarity over descriptions, the same mechanism as clustering;
// otherwise a cheaper token-overlap measure over names and descriptions is
// used.
func dedupe(ctx context.Context, candidates []Candidate, opts Options) ([]Candidate, int) {
	if len(opts.Existing) == 0 || len(candidates) == 0 {
		return candidates, 0
	}
	threshold := opts.DedupThreshold
	if threshold == 0 {
		threshold = defaultDedupThreshold
	}

	existingVectors := embedArtifacts(ctx, opts)
	var candidateVectors [][]float32
	if existingVectors != nil {
		texts := make([]string, len(candidates))
		for i, c := range candidates {
			texts[i] = c.Description
		}
		if vectors, err := opts.Engine.EmbedBatch(ctx, texts); err == nil {
			candidateVectors = vectors
		} else {
			existingVectors = nil
		}
	}

	kept := candidates[:0]
	dropped := 0
	for i, c := range candidates {
		var vec []float32
		if candidateVectors != nil {
			vec = candidateVectors[i]
		}
		if isDuplicate(c, vec, existingVectors, opts.Existing, threshold) {
			dropped++
			continue
		}
		kept = append(kept, c)
	}
	return kept, dropped
}

func isDuplicate(c Candidate, vec []float32, existingVectors [][]float32, existing []ExistingArtifact, threshold float64) bool {
	for i, art := range existing {
		// Identical normalized names are duplicates regardless of score.
		if art.Name != "" && strings.EqualFold(art.Name, c.SuggestedName) {
			return true
		}
		if vec != nil && existingVectors != nil {
			if embedding.CosineSimilarity(vec, existingVectors[i]) >= threshold {
				return true
			}
			continue
		}
		if tokenSimilarity(c.SuggestedName+" "+c.Description, art.Name+" "+art.Description) >= threshold {
			return true
		}
	}
	return false
}

// embedArtifacts embeds each existing artifact's name and description
// once per ranking pass. Returns nil when embeddings are unavailable,
// which switches dedup to the token fallback.
func embedArtifacts(ctx context.Context, opts Options) [][]float32 {
	if opts.Engine == nil {
		return nil
	}
	texts := make([]string, len(opts.Existing))
	for i, art := range opts.Existing {
		texts[i] = strings.TrimSpace(art.Name + ". " + art.Description)
	}
	vectors, err := opts.Engine.EmbedBatch(ctx, texts)
	if err != nil {
		return nil
	}
	return vectors
}

// tokenSimilarity is the Jaccard index over lowercased word sets.
func tokenSimilarity(a, b string) float64 {
	as := tokenSet(a)
	bs := tokenSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	inter := 0
	for t := range as {
		if bs[t] {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	}) {
		if len(t) > 1 {
			set[t] = true
		}
	}
	return set
}
