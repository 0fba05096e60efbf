// Package cluster groups semantically similar patterns by density-based
// clustering over embedding vectors, with automatic neighborhood-radius
// selection. Point counts are small (hundreds to low thousands), so the
// O(n²) pairwise distance pass needs no spatial index.
package cluster

import (
	"sort"

	"github.com/emiliopalmerini/skillscout/internal/embedding"
)

// Point is one candidate pattern with its embedding vector.
type Point struct {
	ID     string
	Vector []float32
}

// Cluster is one group of related points. Never mutated after creation.
type Cluster struct {
	Members []string
}

// Result is the outcome of one clustering pass.
type Result struct {
	Clusters []Cluster
	Noise    []string // reachable from no core point; kept, not discarded
	Epsilon  float64  // the decided radius, for diagnostics
	Degraded bool     // singleton fallback, no real clustering happened
}

// Singletons returns the degraded no-clustering result: every point its
// own cluster. Used when embeddings are unavailable or the point set is
// too small to anchor any cluster.
func Singletons(ids []string) Result {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	clusters := make([]Cluster, len(sorted))
	for i, id := range sorted {
		clusters[i] = Cluster{Members: []string{id}}
	}
	return Result{Clusters: clusters, Degraded: true}
}

// Run tunes epsilon from the point set and clusters it. Fewer than minPts
// points cannot form a single cluster, so the result degrades to
// singletons.
func Run(points []Point, minPts int) Result {
	if len(points) < minPts {
		ids := make([]string, len(points))
		for i, p := range points {
			ids[i] = p.ID
		}
		return Singletons(ids)
	}

	pts := sortedCopy(points)
	dist := distanceMatrix(pts)
	eps := estimateEpsilon(dist, minPts)
	clusters, noise := dbscan(pts, dist, eps, minPts)
	return Result{Clusters: clusters, Noise: noise, Epsilon: eps}
}

// dbscan labels each point with a cluster or noise. A point is a core
// point when at least minPts points (itself included) lie within eps;
// clusters are the points reachable through chains of core points.
// Iteration order is fixed by the sorted point slice, so labels are
// deterministic for a fixed input.
func dbscan(points []Point, dist [][]float64, eps float64, minPts int) ([]Cluster, []string) {
	const (
		unvisited = -2
		noiseMark = -1
	)
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	neighborsOf := func(i int) []int {
		var nb []int
		for j := range points {
			if dist[i][j] <= eps {
				nb = append(nb, j)
			}
		}
		return nb
	}

	next := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}
		neighbors := neighborsOf(i)
		if len(neighbors) < minPts {
			labels[i] = noiseMark
			continue
		}

		id := next
		next++
		labels[i] = id

		// Expand: border points join the cluster, core points extend the
		// frontier.
		queue := append([]int(nil), neighbors...)
		for qi := 0; qi < len(queue); qi++ {
			j := queue[qi]
			if labels[j] == noiseMark {
				labels[j] = id
				continue
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = id
			jn := neighborsOf(j)
			if len(jn) >= minPts {
				queue = append(queue, jn...)
			}
		}
	}

	members := make(map[int][]string)
	var noise []string
	for i, p := range points {
		if labels[i] == noiseMark {
			noise = append(noise, p.ID)
			continue
		}
		members[labels[i]] = append(members[labels[i]], p.ID)
	}

	clusters := make([]Cluster, next)
	for id := 0; id < next; id++ {
		clusters[id] = Cluster{Members: members[id]}
	}
	return clusters, noise
}

func distanceMatrix(points []Point) [][]float64 {
	n := len(points)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := 1 - embedding.CosineSimilarity(points[i].Vector, points[j].Vector)
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

func sortedCopy(points []Point) []Point {
	pts := append([]Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].ID < pts[j].ID })
	return pts
}
