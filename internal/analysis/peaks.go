package analysis

import (
	"sort"
	"strings"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
)

// CityPeaks computes peak and adoption timing for every (city, song) and
// rolls it up per city. Cities are categorized by average weeks to adopt
// across all cities, before any streams threshold is applied.
func (e *Engine) CityPeaks(p panel.Panel) PeakResult {
	plays := make(map[string]map[string][]panel.Row)
	listeners := make(map[string][]panel.Row)
	for _, r := range p {
		if r.PeriodType != panel.Weekly || r.City == panel.AllCities || !e.songLevel(r) {
			continue
		}
		switch r.Measure {
		case panel.MeasurePlays:
			if plays[r.City] == nil {
				plays[r.City] = make(map[string][]panel.Row)
			}
			plays[r.City][r.Song] = append(plays[r.City][r.Song], r)
		case panel.MeasureListeners:
			listeners[r.City] = append(listeners[r.City], r)
		}
	}

	spl := e.StreamsPerListener(p)

	var result PeakResult
	for _, city := range sortedKeys(plays) {
		songs := plays[city]
		var metrics []SongMetric
		missing := 0
		for _, song := range sortedKeys(songs) {
			rows := songs[song]
			songID := rows[0].SongID
			release, ok := e.releases.ReleaseDate(songID)
			if !ok {
				e.log.Debug().Str("city", city).Str("song", song).Str("song_id", songID).Msg("no release date")
				missing++
				continue
			}
			m, ok := e.songMetric(rows, listeners[city], release)
			if !ok {
				continue
			}
			metrics = append(metrics, m)
		}
		result.MissingReleaseDate += missing
		if len(metrics) == 0 {
			continue
		}
		result.Songs = append(result.Songs, metrics...)
		cm := cityMetric(city, metrics)
		cm.SongsMissingReleaseDate = missing
		cm.AvgWeeklyStreamsPerListener = round(spl[city], 2)
		result.Cities = append(result.Cities, cm)
	}

	adopt := make([]*float64, len(result.Cities))
	for i, c := range result.Cities {
		adopt[i] = c.AvgWeeksToAdopt
	}
	for i, label := range Categorize(values(adopt), AdoptionLabels) {
		result.Cities[i].Category = label
	}

	sort.SliceStable(result.Cities, func(i, j int) bool {
		a, b := result.Cities[i], result.Cities[j]
		if a.PeakStreams != b.PeakStreams {
			return a.PeakStreams > b.PeakStreams
		}
		return a.City < b.City
	})
	return result
}

// songMetric reports false when no rows fall in the song's window.
func (e *Engine) songMetric(rows []panel.Row, cityListeners []panel.Row, release time.Time) (SongMetric, bool) {
	var windowed []panel.Row
	for _, r := range rows {
		if e.inWindow(r.Week, release) {
			windowed = append(windowed, r)
		}
	}
	if len(windowed) == 0 {
		return SongMetric{}, false
	}
	sort.SliceStable(windowed, func(i, j int) bool {
		return windowed[i].Week.Before(windowed[j].Week)
	})

	first := windowed[0]
	m := SongMetric{
		City:        first.City,
		Song:        first.Song,
		SongID:      first.SongID,
		ReleaseDate: release,
	}
	peak := first
	latest := first.Week
	active := make(map[time.Time]bool)
	weeks := make(map[time.Time]bool)
	for _, r := range windowed {
		if r.CurrentPeriod > peak.CurrentPeriod {
			peak = r
		}
		if r.Week.After(latest) {
			latest = r.Week
		}
		if r.CurrentPeriod > 0 {
			if m.WeeksToAdopt == nil {
				m.WeeksToAdopt = ptr(weeksBetween(release, r.Week))
			}
			active[r.Week] = true
		}
		weeks[r.Week] = true
		m.TotalStreams += r.CurrentPeriod
	}
	m.PeakDate = peak.Week
	m.PeakStreams = peak.CurrentPeriod
	m.StillGrowing = peak.Week.Equal(latest) && !latest.After(e.windowEnd(release))
	if !m.StillGrowing {
		m.WeeksToPeak = ptr(weeksBetween(release, peak.Week))
		m.PeakedFirstWeek = *m.WeeksToPeak == 0
	}
	m.activeWeeks = len(active)
	m.totalWeeks = len(weeks)
	m.PeakListeners = e.peakListeners(first.Song, cityListeners, release)
	return m, true
}

// peakListeners matches listener rows whose song contains the part of the
// title before " - ", ignoring case.
func (e *Engine) peakListeners(song string, cityListeners []panel.Row, release time.Time) int64 {
	prefix := strings.ToLower(strings.Split(song, " - ")[0])
	var peak int64
	for _, r := range cityListeners {
		if !e.inWindow(r.Week, release) {
			continue
		}
		if strings.Contains(strings.ToLower(r.Song), prefix) && r.CurrentPeriod > peak {
			peak = r.CurrentPeriod
		}
	}
	return peak
}

func cityMetric(city string, metrics []SongMetric) CityMetric {
	c := CityMetric{City: city, SongsAnalyzed: len(metrics)}
	var toPeak, toAdopt []*float64
	var active, total int
	for _, m := range metrics {
		toPeak = append(toPeak, m.WeeksToPeak)
		toAdopt = append(toAdopt, m.WeeksToAdopt)
		if m.PeakStreams > c.PeakStreams {
			c.PeakStreams = m.PeakStreams
		}
		if m.PeakListeners > c.PeakWeeklyListeners {
			c.PeakWeeklyListeners = m.PeakListeners
		}
		if m.PeakedFirstWeek {
			c.SongsPeakedFirstWeek++
		}
		if m.StillGrowing {
			c.SongsStillGrowing++
		}
		c.TotalStreams += m.TotalStreams
		active += m.activeWeeks
		total += m.totalWeeks
	}
	c.AvgWeeksToPeak = roundPtr(meanOf(toPeak), 1)
	c.AvgWeeksToAdopt = roundPtr(meanOf(toAdopt), 1)
	c.PctPeakedFirstWeek = round(percent(float64(c.SongsPeakedFirstWeek), float64(c.SongsAnalyzed)), 1)
	c.ConsistencyScore = round(percent(float64(active), float64(total)), 1)
	return c
}

// StreamsPerListener averages plays per listener over each city's
// weeks. Only rows inside their own song's window count, and a week with no
// plays or no listeners is left out of the average.
func (e *Engine) StreamsPerListener(p panel.Panel) map[string]float64 {
	type slice struct {
		plays, listeners       int64
		hasPlays, hasListeners bool
	}
	byCity := make(map[string]map[time.Time]*slice)
	for _, r := range p {
		if r.PeriodType != panel.Weekly || r.City == panel.AllCities || !e.songLevel(r) {
			continue
		}
		release, ok := e.releases.ReleaseDate(r.SongID)
		if !ok || !e.inWindow(r.Week, release) {
			continue
		}
		if byCity[r.City] == nil {
			byCity[r.City] = make(map[time.Time]*slice)
		}
		s := byCity[r.City][r.Week]
		if s == nil {
			s = &slice{}
			byCity[r.City][r.Week] = s
		}
		switch r.Measure {
		case panel.MeasurePlays:
			s.plays += r.CurrentPeriod
			s.hasPlays = true
		case panel.MeasureListeners:
			s.listeners += r.CurrentPeriod
			s.hasListeners = true
		}
	}

	out := make(map[string]float64, len(byCity))
	for city, weeks := range byCity {
		var ratios []float64
		for _, week := range sortedTimes(weeks) {
			s := weeks[week]
			if s.hasPlays && s.hasListeners && s.listeners > 0 {
				ratios = append(ratios, float64(s.plays)/float64(s.listeners))
			}
		}
		out[city] = mean(ratios)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedTimes[V any](m map[time.Time]V) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}
