package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
)

// Stickiness compares each week's listeners (WAU) to the listeners of the
// calendar month containing that week (MAU). Weeks in the current month are
// left out because the month is incomplete. The second return value counts
// songs skipped for lack of a release date.
func (e *Engine) Stickiness(p panel.Panel) ([]StickinessRow, int) {
	weekly := make(map[string][]panel.Row)
	monthly := make(map[string][]panel.Row)
	for _, r := range p {
		if r.Measure != panel.MeasureListeners || r.Level != panel.LevelSong {
			continue
		}
		switch r.PeriodType {
		case panel.Weekly:
			weekly[r.SongID] = append(weekly[r.SongID], r)
		case panel.Monthly:
			monthly[r.SongID] = append(monthly[r.SongID], r)
		}
	}

	now := e.config.Now().UTC()
	currentMonth := monthStart(now)

	var out []StickinessRow
	missing := 0
	for _, id := range sortedKeys(weekly) {
		release, ok := e.releases.ReleaseDate(id)
		if !ok {
			e.log.Debug().Str("song_id", id).Msg("no release date")
			missing++
			continue
		}

		mau := make(map[time.Time]map[string]int64)
		for _, r := range monthly[id] {
			month := monthStart(r.Week)
			if mau[month] == nil {
				mau[month] = make(map[string]int64)
			}
			mau[month][r.City] += r.CurrentPeriod
		}

		byWeek := make(map[time.Time]map[string]int64)
		names := make(map[time.Time]string)
		for _, r := range e.windowed(weekly[id], release) {
			if byWeek[r.Week] == nil {
				byWeek[r.Week] = make(map[string]int64)
				names[r.Week] = r.Song
			}
			byWeek[r.Week][r.City] += r.CurrentPeriod
		}

		for _, week := range sortedTimes(byWeek) {
			month := monthStart(week)
			if !month.Before(currentMonth) {
				continue
			}
			monthCities, ok := mau[month]
			if !ok {
				continue
			}
			cities := byWeek[week]
			for _, city := range sortedKeys(cities) {
				wau := cities[city]
				m := monthCities[city]
				out = append(out, StickinessRow{
					Song:              names[week],
					SongID:            id,
					City:              city,
					Week:              week,
					WAUListeners:      wau,
					MAUListeners:      m,
					StickinessRatio:   round(percent(float64(wau), float64(m)), 1),
					ReleaseDate:       release,
					WeeksSinceRelease: weeksBetween(release, week),
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Song != out[j].Song {
			return out[i].Song < out[j].Song
		}
		return out[i].Week.Before(out[j].Week)
	})
	return out, missing
}

// StickinessSummaries describes the spread of each song's ratios.
func StickinessSummaries(rows []StickinessRow) []StickinessSummary {
	bySong := make(map[string][]float64)
	names := make(map[string]string)
	for _, r := range rows {
		bySong[r.SongID] = append(bySong[r.SongID], r.StickinessRatio)
		names[r.SongID] = r.Song
	}

	out := make([]StickinessSummary, 0, len(bySong))
	for _, id := range sortedKeys(bySong) {
		ratios := bySong[id]
		sorted := append([]float64(nil), ratios...)
		sort.Float64s(sorted)
		out = append(out, StickinessSummary{
			Song:   names[id],
			SongID: id,
			Mean:   round(mean(ratios), 2),
			Median: round(median(sorted), 2),
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
			Std:    round(sampleStd(ratios), 2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Song < out[j].Song })
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// sampleStd is 0 for fewer than two values.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
