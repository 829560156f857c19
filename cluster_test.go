package semantic

import (
	"errors"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestClusterCount(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{1, 3},
		{3, 3},
		{20, 3},
		{30, 3},
		{40, 4},
		{79, 7},
		{80, 8},
		{100, 8},
		{1000, 8},
	}
	for _, tt := range tests {
		if got := ClusterCount(tt.n); got != tt.want {
			t.Errorf("ClusterCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestKMeansRejectsEmptyInput(t *testing.T) {
	_, err := KMeans(nil, 3)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	_, err = KMeans(&mat.Dense{}, 3)
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for empty matrix, got %v", err)
	}
}

func TestKMeansCapsKAtN(t *testing.T) {
	data := mat.NewDense(2, 2, []float64{
		0, 0,
		10, 10,
	})

	clustering, err := KMeans(data, 5)
	if err != nil {
		t.Fatal(err)
	}
	if clustering.K != 2 {
		t.Errorf("K = %d, want 2", clustering.K)
	}
	if len(clustering.Assignments) != 2 {
		t.Errorf("got %d assignments, want 2", len(clustering.Assignments))
	}
}

func TestKMeansSeparatesObviousClusters(t *testing.T) {
	data := mat.NewDense(6, 2, []float64{
		0.0, 0.1,
		0.1, 0.0,
		0.1, 0.1,
		10.0, 10.1,
		10.1, 10.0,
		10.1, 10.1,
	})

	clustering, err := KMeans(data, 2)
	if err != nil {
		t.Fatal(err)
	}

	a := clustering.Assignments
	if a[0] != a[1] || a[1] != a[2] {
		t.Errorf("first group split across clusters: %v", a)
	}
	if a[3] != a[4] || a[4] != a[5] {
		t.Errorf("second group split across clusters: %v", a)
	}
	if a[0] == a[3] {
		t.Errorf("groups merged into one cluster: %v", a)
	}
}

func TestKMeansDeterministic(t *testing.T) {
	data := mat.NewDense(8, 3, []float64{
		1, 0, 0,
		0.9, 0.1, 0,
		0, 1, 0,
		0.1, 0.9, 0,
		0, 0, 1,
		0, 0.1, 0.9,
		0.5, 0.5, 0,
		0.4, 0.6, 0,
	})

	first, err := KMeans(data, 3)
	if err != nil {
		t.Fatal(err)
	}
	second, err := KMeans(data, 3)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Assignments, second.Assignments) {
		t.Errorf("assignments differ across runs: %v vs %v", first.Assignments, second.Assignments)
	}
	if !mat.EqualApprox(first.Centroids, second.Centroids, 0) {
		t.Error("centroids differ across runs")
	}
}

func TestKMeansEveryPointAssigned(t *testing.T) {
	data := mat.NewDense(10, 2, []float64{
		0, 0, 1, 1, 2, 2, 3, 3, 4, 4,
		5, 5, 6, 6, 7, 7, 8, 8, 9, 9,
	})

	clustering, err := KMeans(data, 4)
	if err != nil {
		t.Fatal(err)
	}

	for i, c := range clustering.Assignments {
		if c < 0 || c >= clustering.K {
			t.Errorf("point %d assigned to invalid cluster %d", i, c)
		}
	}
}

func TestKMeansCentroidIsClusterMean(t *testing.T) {
	// Two tight groups; the winning centroids must be the group means.
	data := mat.NewDense(4, 1, []float64{0, 2, 10, 12})

	clustering, err := KMeans(data, 2)
	if err != nil {
		t.Fatal(err)
	}

	var means []float64
	for c := 0; c < clustering.K; c++ {
		sum, count := 0.0, 0
		for i, assigned := range clustering.Assignments {
			if assigned == c {
				sum += data.At(i, 0)
				count++
			}
		}
		if count == 0 {
			continue
		}
		means = append(means, sum/float64(count))
	}

	for c, want := range means {
		got := clustering.Centroids.At(c, 0)
		if diff := got - want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("centroid %d = %v, want %v", c, got, want)
		}
	}
}
