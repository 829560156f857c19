package semantic

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Clustering constants are load-bearing for reproducibility: two runs
// on identical input must produce identical assignments, so the seed
// and restart count are pinned here and nowhere else.
const (
	kmeansSeed     = 42
	kmeansRestarts = 10
	kmeansMaxIter  = 300
	kmeansTol      = 1e-4
)

// ClusterCount derives the theme cluster count for a batch of n
// comments: more clusters for larger batches, floored at 3 and capped
// at 8 to stay stable on small uploads.
func ClusterCount(n int) int {
	k := n / 10
	if k < 3 {
		k = 3
	}
	if k > 8 {
		k = 8
	}
	return k
}

// Clustering is the output of one k-means run: a cluster id per input
// row and one centroid row per cluster. Clusters may end up empty; the
// theme builder drops those.
type Clustering struct {
	K           int
	Assignments []int
	Centroids   *mat.Dense
}

// KMeans partitions the rows of data into k clusters. The requested k
// is capped at the number of rows. Runs kmeansRestarts full k-means
// passes from a pinned seed and keeps the one with the lowest inertia
// (total within-cluster squared distance).
func KMeans(data *mat.Dense, k int) (*Clustering, error) {
	if data == nil {
		return nil, validationErrorf("no data to cluster")
	}
	n, _ := data.Dims()
	if n == 0 {
		return nil, validationErrorf("no data to cluster")
	}
	if k < 1 {
		return nil, validationErrorf("cluster count must be at least 1, got %d", k)
	}
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(kmeansSeed))

	var best *Clustering
	bestInertia := math.Inf(1)

	for restart := 0; restart < kmeansRestarts; restart++ {
		assignments, centroids := runKMeansOnce(data, k, rng)
		inertia := computeInertia(data, assignments, centroids)
		if inertia < bestInertia {
			bestInertia = inertia
			best = &Clustering{K: k, Assignments: assignments, Centroids: centroids}
		}
	}

	return best, nil
}

// runKMeansOnce performs a single k-means pass: k-means++ seeding, then
// assign/update iterations until assignments stop changing or centroid
// movement drops below tolerance.
func runKMeansOnce(data *mat.Dense, k int, rng *rand.Rand) ([]int, *mat.Dense) {
	n, _ := data.Dims()

	centroids := initCentroidsPlusPlus(data, k, rng)
	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < kmeansMaxIter; iter++ {
		newAssignments := assignToNearest(data, centroids)

		converged := true
		for i := range assignments {
			if assignments[i] != newAssignments[i] {
				converged = false
				break
			}
		}
		assignments = newAssignments
		if converged {
			break
		}

		newCentroids := recomputeCentroids(data, assignments, centroids)
		change := centroidShift(centroids, newCentroids)
		centroids = newCentroids
		if change < kmeansTol {
			break
		}
	}

	return assignments, centroids
}

// initCentroidsPlusPlus seeds centroids with k-means++: first pick
// uniform, the rest weighted by squared distance to the nearest chosen
// centroid.
func initCentroidsPlusPlus(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)

	centroids.SetRow(0, data.RawRowView(rng.Intn(n)))

	distances := make([]float64, n)
	for c := 1; c < k; c++ {
		total := 0.0
		for i := 0; i < n; i++ {
			point := data.RawRowView(i)
			minDist := math.Inf(1)
			for prev := 0; prev < c; prev++ {
				if dist := squaredDistance(point, centroids.RawRowView(prev)); dist < minDist {
					minDist = dist
				}
			}
			distances[i] = minDist
			total += minDist
		}

		if total == 0 {
			// All points coincide with chosen centroids; pick uniformly.
			centroids.SetRow(c, data.RawRowView(rng.Intn(n)))
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		chosen := n - 1
		for i, dist := range distances {
			cumulative += dist
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids.SetRow(c, data.RawRowView(chosen))
	}

	return centroids
}

// assignToNearest gives each row the id of its closest centroid by
// Euclidean distance, matching the metric used to pick representative
// comments later.
func assignToNearest(data, centroids *mat.Dense) []int {
	n, _ := data.Dims()
	k, _ := centroids.Dims()
	assignments := make([]int, n)

	for i := 0; i < n; i++ {
		point := data.RawRowView(i)
		minDist := math.Inf(1)
		for c := 0; c < k; c++ {
			if dist := squaredDistance(point, centroids.RawRowView(c)); dist < minDist {
				minDist = dist
				assignments[i] = c
			}
		}
	}

	return assignments
}

// recomputeCentroids averages the members of each cluster. A cluster
// that lost all members keeps its previous centroid so it can win
// points back on the next iteration.
func recomputeCentroids(data *mat.Dense, assignments []int, previous *mat.Dense) *mat.Dense {
	n, d := data.Dims()
	k, _ := previous.Dims()

	centroids := mat.NewDense(k, d, nil)
	counts := make([]int, k)

	for i := 0; i < n; i++ {
		c := assignments[i]
		point := data.RawRowView(i)
		for j := 0; j < d; j++ {
			centroids.Set(c, j, centroids.At(c, j)+point[j])
		}
		counts[c]++
	}

	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			centroids.SetRow(c, previous.RawRowView(c))
			continue
		}
		for j := 0; j < d; j++ {
			centroids.Set(c, j, centroids.At(c, j)/float64(counts[c]))
		}
	}

	return centroids
}

// centroidShift measures average centroid movement between iterations.
func centroidShift(old, updated *mat.Dense) float64 {
	k, _ := old.Dims()
	total := 0.0
	for c := 0; c < k; c++ {
		total += math.Sqrt(squaredDistance(old.RawRowView(c), updated.RawRowView(c)))
	}
	return total / float64(k)
}

// computeInertia sums squared distances from each row to its assigned
// centroid; the restart with the lowest value wins.
func computeInertia(data *mat.Dense, assignments []int, centroids *mat.Dense) float64 {
	n, _ := data.Dims()
	total := 0.0
	for i := 0; i < n; i++ {
		total += squaredDistance(data.RawRowView(i), centroids.RawRowView(assignments[i]))
	}
	return total
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
