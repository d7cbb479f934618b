package analysis

import (
	"sort"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
)

// ListenerRatios expresses each song's weekly listeners in a city as a
// percentage of the artist's listeners there that week. Weeks without any
// artist-level rows are skipped.
func (e *Engine) ListenerRatios(p panel.Panel) ([]ListenerRatioRow, int) {
	songs := make(map[string][]panel.Row)
	artist := make(map[time.Time]map[string]int64)
	for _, r := range p {
		if r.Measure != panel.MeasureListeners || r.PeriodType != panel.Weekly {
			continue
		}
		switch r.Level {
		case panel.LevelSong:
			songs[r.SongID] = append(songs[r.SongID], r)
		case panel.LevelArtist:
			if artist[r.Week] == nil {
				artist[r.Week] = make(map[string]int64)
			}
			artist[r.Week][r.City] += r.CurrentPeriod
		}
	}

	var out []ListenerRatioRow
	missing := 0
	for _, id := range sortedKeys(songs) {
		release, ok := e.releases.ReleaseDate(id)
		if !ok {
			e.log.Debug().Str("song_id", id).Msg("no release date")
			missing++
			continue
		}

		byWeek := make(map[time.Time]map[string]int64)
		names := make(map[time.Time]string)
		for _, r := range e.windowed(songs[id], release) {
			if byWeek[r.Week] == nil {
				byWeek[r.Week] = make(map[string]int64)
				names[r.Week] = r.Song
			}
			byWeek[r.Week][r.City] += r.CurrentPeriod
		}

		for _, week := range sortedTimes(byWeek) {
			artistCities, ok := artist[week]
			if !ok {
				continue
			}
			cities := byWeek[week]
			for _, city := range sortedKeys(cities) {
				song := cities[city]
				a := artistCities[city]
				out = append(out, ListenerRatioRow{
					Song:              names[week],
					SongID:            id,
					City:              city,
					Week:              week,
					SongListeners:     song,
					ArtistListeners:   a,
					ListenerRatio:     round(percent(float64(song), float64(a)), 1),
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

// TopCitiesByMonthlyListeners ranks cities by their mean artist-level
// monthly listeners. Ties are broken by name.
func TopCitiesByMonthlyListeners(p panel.Panel, n int) []CityListeners {
	counts := make(map[string][]float64)
	for _, r := range p {
		if r.Level != panel.LevelArtist || r.Measure != panel.MeasureListeners ||
			r.PeriodType != panel.Monthly || r.City == panel.AllCities {
			continue
		}
		counts[r.City] = append(counts[r.City], float64(r.CurrentPeriod))
	}

	out := make([]CityListeners, 0, len(counts))
	for _, city := range sortedKeys(counts) {
		out = append(out, CityListeners{City: city, AvgMonthlyListeners: round(mean(counts[city]), 1)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgMonthlyListeners > out[j].AvgMonthlyListeners
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
