package analysis

import (
	"math"
	"sort"
)

const Unknown = "Unknown"

// Labels names the lower, middle and upper tercile.
type Labels [3]string

var (
	AdoptionLabels    = Labels{"Early Adopter", "Mid Adopter", "Late Bloomer"}
	ConsistencyLabels = Labels{"Low Consistency", "Medium Consistency", "High Consistency"}
	VolumeLabels      = Labels{"Low Volume", "Medium Volume", "High Volume"}
)

// Percentile returns the nearest-rank q-th percentile (0 < q <= 1) of the
// sorted values: the smallest value with at least q*n values at or below it.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	// The epsilon keeps 0.33*100 from rounding up to rank 34.
	rank := int(math.Ceil(q*float64(n) - 1e-9))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1]
}

// Terciles returns the 33rd and 67th percentiles of the non-NaN values.
func Terciles(values []float64) (p33 float64, p67 float64, ok bool) {
	var defined []float64
	for _, v := range values {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}
	if len(defined) == 0 {
		return 0, 0, false
	}
	sort.Float64s(defined)
	return Percentile(defined, 0.33), Percentile(defined, 0.67), true
}

// Categorize labels each value by tercile. Values at a threshold fall in the
// lower bucket. NaN values are Unknown.
func Categorize(values []float64, labels Labels) []string {
	out := make([]string, len(values))
	p33, p67, ok := Terciles(values)
	for i, v := range values {
		switch {
		case !ok || math.IsNaN(v):
			out[i] = Unknown
		case v <= p33:
			out[i] = labels[0]
		case v <= p67:
			out[i] = labels[1]
		default:
			out[i] = labels[2]
		}
	}
	return out
}

// categoryRank orders labels the way summaries list them.
func categoryRank(label string) int {
	for _, labels := range []Labels{AdoptionLabels, ConsistencyLabels, VolumeLabels} {
		for i, l := range labels {
			if l == label {
				return i
			}
		}
	}
	return len(Labels{})
}

func values(ptrs []*float64) []float64 {
	out := make([]float64, len(ptrs))
	for i, p := range ptrs {
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}
	return out
}

func anyDefined(vs []float64) bool {
	for _, v := range vs {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}
