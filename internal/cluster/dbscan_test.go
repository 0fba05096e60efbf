package cluster

import (
	"fmt"
	"reflect"
	"sort"
	"testing"
)

// unit vectors in three well-separated directions, with small in-group
// perturbations so distances within a group are tiny but nonzero.
func separatedPoints() []Point {
	mk := func(id string, x, y, z float32) Point {
		return Point{ID: id, Vector: []float32{x, y, z}}
	}
	return []Point{
		mk("a1", 1, 0.01, 0),
		mk("a2", 1, 0.02, 0),
		mk("a3", 1, 0, 0.01),
		mk("b1", 0.01, 1, 0),
		mk("b2", 0.02, 1, 0),
		mk("b3", 0, 1, 0.01),
		mk("c1", 0, 0.01, 1),
		mk("c2", 0, 0.02, 1),
		mk("c3", 0.01, 0, 1),
	}
}

func memberSets(clusters []Cluster) [][]string {
	sets := make([][]string, len(clusters))
	for i, c := range clusters {
		m := append([]string(nil), c.Members...)
		sort.Strings(m)
		sets[i] = m
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i][0] < sets[j][0] })
	return sets
}

func TestRun_SeparatedGroups(t *testing.T) {
	res := Run(separatedPoints(), 3)

	if res.Degraded {
		t.Fatal("result should not be degraded")
	}
	if res.Epsilon <= 0 {
		t.Errorf("epsilon = %f, want > 0", res.Epsilon)
	}
	got := memberSets(res.Clusters)
	want := [][]string{
		{"a1", "a2", "a3"},
		{"b1", "b2", "b3"},
		{"c1", "c2", "c3"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("clusters = %v, want %v", got, want)
	}
	if len(res.Noise) != 0 {
		t.Errorf("noise = %v, want none", res.Noise)
	}
}

func TestRun_Deterministic(t *testing.T) {
	points := separatedPoints()
	first := Run(points, 3)

	// Reversed input order must produce identical output.
	reversed := make([]Point, len(points))
	for i, p := range points {
		reversed[len(points)-1-i] = p
	}
	second := Run(reversed, 3)

	if !reflect.DeepEqual(memberSets(first.Clusters), memberSets(second.Clusters)) {
		t.Error("cluster membership depends on input order")
	}
	if first.Epsilon != second.Epsilon {
		t.Errorf("epsilon differs: %f vs %f", first.Epsilon, second.Epsilon)
	}
}

func TestRun_TooFewPointsDegrades(t *testing.T) {
	points := []Point{
		{ID: "b", Vector: []float32{0, 1}},
		{ID: "a", Vector: []float32{1, 0}},
	}
	res := Run(points, 3)

	if !res.Degraded {
		t.Fatal("expected degraded result")
	}
	got := memberSets(res.Clusters)
	want := [][]string{{"a"}, {"b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("clusters = %v, want sorted singletons %v", got, want)
	}
}

func TestRun_OutlierBecomesNoise(t *testing.T) {
	points := separatedPoints()[:3] // one tight group
	// More distant points in a second direction keep the group dense
	// relative to epsilon while the lone far point reaches nothing.
	points = append(points,
		Point{ID: "b1", Vector: []float32{0.01, 1, 0}},
		Point{ID: "b2", Vector: []float32{0.02, 1, 0}},
		Point{ID: "b3", Vector: []float32{0, 1, 0.01}},
		Point{ID: "lone", Vector: []float32{0, -1, 0}},
	)
	res := Run(points, 3)

	if res.Degraded {
		t.Fatal("result should not be degraded")
	}
	if !reflect.DeepEqual(res.Noise, []string{"lone"}) {
		t.Errorf("noise = %v, want [lone]", res.Noise)
	}
	if len(res.Clusters) != 2 {
		t.Errorf("clusters = %d, want 2", len(res.Clusters))
	}
}

func TestSingletons(t *testing.T) {
	res := Singletons([]string{"z", "a", "m"})
	if !res.Degraded {
		t.Error("singleton result must be marked degraded")
	}
	got := memberSets(res.Clusters)
	want := [][]string{{"a"}, {"m"}, {"z"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("clusters = %v, want %v", got, want)
	}
}

func TestEstimateEpsilon_Floor(t *testing.T) {
	// Identical vectors give an all-zero k-distance curve; the floor keeps
	// epsilon usable.
	points := make([]Point, 5)
	for i := range points {
		points[i] = Point{ID: fmt.Sprintf("p%d", i), Vector: []float32{1, 0}}
	}
	res := Run(points, 3)
	if res.Epsilon != epsilonFloor {
		t.Errorf("epsilon = %g, want floor %g", res.Epsilon, epsilonFloor)
	}
	if len(res.Clusters) != 1 || len(res.Clusters[0].Members) != 5 {
		t.Errorf("identical points should form one cluster, got %v", res.Clusters)
	}
}

func TestKneeValue(t *testing.T) {
	tests := []struct {
		name  string
		curve []float64
		want  float64
	}{
		{"empty", nil, 0},
		{"single", []float64{0.4}, 0.4},
		{"two points take the median", []float64{0.1, 0.9}, 0.9},
		{"knee at the jump", []float64{0.01, 0.02, 0.03, 0.04, 0.5, 0.9}, 0.04},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kneeValue(tt.curve); got != tt.want {
				t.Errorf("kneeValue(%v) = %f, want %f", tt.curve, got, tt.want)
			}
		})
	}
}
