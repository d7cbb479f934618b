package analysis

import "sort"

// Summarize keeps the cities with at least threshold total streams and rolls
// them up by category. The input slice is not modified.
func Summarize(cities []CityMetric, threshold int64) ([]CityMetric, []CategoryMetric) {
	var kept []CityMetric
	groups := make(map[string][]CityMetric)
	for _, c := range cities {
		if c.TotalStreams < threshold {
			continue
		}
		kept = append(kept, c)
		groups[c.Category] = append(groups[c.Category], c)
	}

	categories := make([]CategoryMetric, 0, len(groups))
	for label, members := range groups {
		var streams, consistency []float64
		var adopt []*float64
		for _, c := range members {
			streams = append(streams, float64(c.TotalStreams))
			consistency = append(consistency, c.ConsistencyScore)
			adopt = append(adopt, c.AvgWeeksToAdopt)
		}
		categories = append(categories, CategoryMetric{
			Category:        label,
			NumCities:       len(members),
			AvgStreams:      round(mean(streams), 1),
			AvgConsistency:  round(mean(consistency), 1),
			AvgWeeksToAdopt: roundPtr(meanOf(adopt), 1),
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		ri, rj := categoryRank(categories[i].Category), categoryRank(categories[j].Category)
		if ri != rj {
			return ri < rj
		}
		return categories[i].Category < categories[j].Category
	})
	return kept, categories
}
