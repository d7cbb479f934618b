package analysis

import (
	"sort"

	"github.com/ademuri/song-velocity/internal/panel"
)

// Velocity reports the week-over-week change of every series. A series is
// one (city, song, level, measure, period type). The first point of a series
// has no delta, and the percentage is undefined after a zero.
func Velocity(p panel.Panel) []VelocityRow {
	type seriesKey struct {
		city, songID string
		level        panel.Level
		measure      panel.Measure
		periodType   panel.PeriodType
	}
	series := make(map[seriesKey][]panel.Row)
	var keys []seriesKey
	for _, r := range p {
		k := seriesKey{r.City, r.SongID, r.Level, r.Measure, r.PeriodType}
		if _, ok := series[k]; !ok {
			keys = append(keys, k)
		}
		series[k] = append(series[k], r)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		switch {
		case a.songID != b.songID:
			return a.songID < b.songID
		case a.city != b.city:
			return a.city < b.city
		case a.level != b.level:
			return a.level < b.level
		case a.measure != b.measure:
			return a.measure < b.measure
		default:
			return a.periodType < b.periodType
		}
	})

	var out []VelocityRow
	for _, k := range keys {
		rows := series[k]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Week.Before(rows[j].Week) })
		for i, r := range rows {
			v := VelocityRow{
				City:          r.City,
				Song:          r.Song,
				SongID:        r.SongID,
				Level:         string(r.Level),
				Measure:       string(r.Measure),
				PeriodType:    string(r.PeriodType),
				Week:          r.Week,
				CurrentPeriod: r.CurrentPeriod,
			}
			if i > 0 {
				prev := rows[i-1].CurrentPeriod
				delta := r.CurrentPeriod - prev
				v.Delta = &delta
				if prev != 0 {
					v.PctDelta = ptr(round(percent(float64(delta), float64(prev)), 1))
				}
			}
			out = append(out, v)
		}
	}
	return out
}
