package analysis

import (
	"math"
	"reflect"
	"testing"
)

func TestTerciles(t *testing.T) {
	p33, p67, ok := Terciles([]float64{9, 1, 8, 2, 7, 3, 6, 4, 5})
	if !ok {
		t.Fatalf("Terciles() not ok")
	}
	if p33 != 3 || p67 != 7 {
		t.Errorf("Terciles() = (%v, %v), want (3, 7)", p33, p67)
	}

	if _, _, ok := Terciles([]float64{math.NaN()}); ok {
		t.Errorf("Terciles(NaN) ok, want not ok")
	}
}

func TestCategorize_boundaries(t *testing.T) {
	got := Categorize([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, AdoptionLabels)
	want := []string{
		"Early Adopter", "Early Adopter", "Early Adopter",
		"Mid Adopter", "Mid Adopter", "Mid Adopter", "Mid Adopter",
		"Late Bloomer", "Late Bloomer",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categorize() = %v, want %v", got, want)
	}
}

func TestCategorize_unknown(t *testing.T) {
	got := Categorize([]float64{math.NaN(), 1, 2}, ConsistencyLabels)
	if got[0] != Unknown {
		t.Errorf("Categorize(NaN) = %q, want %q", got[0], Unknown)
	}
	// The largest value sits on the 67th percentile of two values.
	if got[1] != "Low Consistency" || got[2] != "Medium Consistency" {
		t.Errorf("Categorize() = %v", got)
	}

	for _, label := range Categorize([]float64{math.NaN(), math.NaN()}, VolumeLabels) {
		if label != Unknown {
			t.Errorf("all-NaN label = %q, want %q", label, Unknown)
		}
	}
}

func TestCategorize_monotonic(t *testing.T) {
	vs := []float64{4.5, 0, 12, 3.1, 3.1, 7, 1.2, 9.9, 0.4, 6, 2, 11}
	labels := Categorize(vs, AdoptionLabels)
	for i := range vs {
		for j := range vs {
			if vs[i] > vs[j] && categoryRank(labels[i]) < categoryRank(labels[j]) {
				t.Errorf("%v labelled %q but smaller %v labelled %q", vs[i], labels[i], vs[j], labels[j])
			}
		}
	}
}

func TestPercentile(t *testing.T) {
	sorted := make([]float64, 100)
	for i := range sorted {
		sorted[i] = float64(i + 1)
	}
	if got := Percentile(sorted, 0.33); got != 33 {
		t.Errorf("Percentile(1..100, 0.33) = %v, want 33", got)
	}
	if got := Percentile([]float64{5}, 0.67); got != 5 {
		t.Errorf("Percentile([5], 0.67) = %v, want 5", got)
	}
	if !math.IsNaN(Percentile(nil, 0.5)) {
		t.Errorf("Percentile(nil) should be NaN")
	}
}
