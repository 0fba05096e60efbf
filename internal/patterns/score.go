package patterns

import (
	"math"
	"strings"
	"time"
)

// Weights are the scoring knobs. They are injected rather than hidden in
// the algorithm so alternative weightings can be exercised
// deterministically in tests.
type Weights struct {
	Frequency   float64
	Recency     float64
	Breadth     float64
	Specificity float64
}

// DefaultWeights sum to 1 and are the primary knob for tuning result
// quality.
var DefaultWeights = Weights{
	Frequency:   0.35,
	Recency:     0.25,
	Breadth:     0.25,
	Specificity: 0.15,
}

const (
	// frequencySaturation is the occurrence count at which the frequency
	// factor reaches 0.5; growth past it has diminishing returns, so one
	// hyperactive project cannot dominate.
	frequencySaturation = 10.0

	// recencyHalfLife halves the recency factor per two weeks since the
	// pattern was last seen.
	recencyHalfLife = 14 * 24 * time.Hour
)

// Breakdown holds each normalized scoring factor, all in [0,1].
type Breakdown struct {
	Frequency   float64 `json:"frequency"`
	Recency     float64 `json:"recency"`
	Breadth     float64 `json:"breadth"`
	Specificity float64 `json:"specificity"`
}

// Scored is a read-only scoring result for one aggregated pattern.
type Scored struct {
	Key        string
	Score      float64
	Breakdown  Breakdown
	Occurrence *Occurrence
}

// Score computes the weighted multi-factor score for one occurrence.
func Score(occ *Occurrence, totalProjects int, now time.Time, w Weights) Scored {
	b := Breakdown{
		Frequency:   float64(occ.Count) / (float64(occ.Count) + frequencySaturation),
		Recency:     recency(occ.LastSeen, now),
		Breadth:     breadth(len(occ.Projects), totalProjects),
		Specificity: specificity(occ.Key),
	}
	return Scored{
		Key:        occ.Key,
		Score:      w.Frequency*b.Frequency + w.Recency*b.Recency + w.Breadth*b.Breadth + w.Specificity*b.Specificity,
		Breakdown:  b,
		Occurrence: occ,
	}
}

func recency(lastSeen, now time.Time) float64 {
	if lastSeen.IsZero() {
		return 0
	}
	age := now.Sub(lastSeen)
	if age <= 0 {
		return 1
	}
	return math.Exp(-math.Ln2 * age.Hours() / recencyHalfLife.Hours())
}

func breadth(projects, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(projects) / float64(total)
}

// specificity estimates how distinctive a pattern key looks. Generic bash
// commands and short n-grams score low; longer, classified patterns score
// high.
func specificity(key string) float64 {
	prefix, rest := SplitKey(key)
	switch prefix {
	case ToolSequencePrefix:
		switch strings.Count(rest, ",") {
		case 0:
			return 0.2
		case 1:
			return 0.5
		default:
			return 0.9
		}
	case BashPrefix:
		category, sig, _ := strings.Cut(rest, ":")
		s := 0.7
		if Category(category) == CategoryOther {
			s = 0.3
		}
		// Richer signatures are more distinctive than a bare command head.
		if strings.Count(sig, " ") >= 2 {
			s += 0.2
		}
		return math.Min(s, 1)
	default:
		return 0.1
	}
}
