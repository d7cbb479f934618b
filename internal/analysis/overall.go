package analysis

import (
	"sort"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
)

// SongAdoption measures each song as a whole from its All Cities rows. The
// second return value counts songs skipped for lack of a release date.
func (e *Engine) SongAdoption(p panel.Panel) ([]SongAdoption, int) {
	type songRows struct {
		overall, listeners, cities []panel.Row
	}
	bySong := make(map[string]*songRows)
	for _, r := range p {
		if r.PeriodType != panel.Weekly || r.Level != panel.LevelSong {
			continue
		}
		s := bySong[r.SongID]
		if s == nil {
			s = &songRows{}
			bySong[r.SongID] = s
		}
		switch {
		case r.City == panel.AllCities && r.Measure == panel.MeasurePlays:
			s.overall = append(s.overall, r)
		case r.City == panel.AllCities && r.Measure == panel.MeasureListeners:
			s.listeners = append(s.listeners, r)
		case r.Measure == panel.MeasurePlays:
			s.cities = append(s.cities, r)
		}
	}

	var out []SongAdoption
	missing := 0
	for _, id := range sortedKeys(bySong) {
		s := bySong[id]
		if len(s.overall) == 0 {
			continue
		}
		release, ok := e.releases.ReleaseDate(id)
		if !ok {
			e.log.Debug().Str("song_id", id).Msg("no release date")
			missing++
			continue
		}
		a, ok := e.songAdoption(s.overall, s.listeners, s.cities, release)
		if ok {
			out = append(out, a)
		}
	}

	categorizeSongs(out)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ReleaseDate.Equal(out[j].ReleaseDate) {
			return out[i].ReleaseDate.Before(out[j].ReleaseDate)
		}
		return out[i].Song < out[j].Song
	})
	return out, missing
}

func (e *Engine) songAdoption(overall, listeners, cities []panel.Row, release time.Time) (SongAdoption, bool) {
	overall = e.windowed(overall, release)
	if len(overall) == 0 {
		return SongAdoption{}, false
	}
	listeners = e.windowed(listeners, release)
	cities = e.windowed(cities, release)

	m, _ := e.songMetric(overall, nil, release)
	a := SongAdoption{
		Song:            m.Song,
		SongID:          m.SongID,
		ReleaseDate:     release,
		PeakDate:        m.PeakDate,
		PeakStreams:     m.PeakStreams,
		WeeksToPeak:     m.WeeksToPeak,
		WeeksToAdopt:    m.WeeksToAdopt,
		StillGrowing:    m.StillGrowing,
		PeakedFirstWeek: m.PeakedFirstWeek,
		TotalStreams:    m.TotalStreams,
	}
	a.AvgWeeklyStreams = round(float64(a.TotalStreams)/float64(len(overall)), 1)

	listenersByWeek := make(map[time.Time]int64)
	var listenerCounts []float64
	for _, r := range listeners {
		if r.CurrentPeriod > a.PeakWeeklyListeners {
			a.PeakWeeklyListeners = r.CurrentPeriod
		}
		listenerCounts = append(listenerCounts, float64(r.CurrentPeriod))
		if _, ok := listenersByWeek[r.Week]; !ok {
			listenersByWeek[r.Week] = r.CurrentPeriod
		}
	}
	a.AvgWeeklyListeners = round(mean(listenerCounts), 1)

	var ratios, postPeak []float64
	seen := make(map[time.Time]bool)
	latest := overall[len(overall)-1].Week
	for _, r := range overall {
		if r.Week.After(a.PeakDate) {
			postPeak = append(postPeak, float64(r.CurrentPeriod))
		}
		if seen[r.Week] {
			continue
		}
		seen[r.Week] = true
		if l := listenersByWeek[r.Week]; l > 0 {
			ratios = append(ratios, float64(r.CurrentPeriod)/float64(l))
		}
	}
	a.AvgWeeklyStreamsPerListener = round(mean(ratios), 1)
	a.AvgPostPeakStreams = round(mean(postPeak), 1)

	all := make(map[string]bool)
	active := make(map[string]bool)
	retained := make(map[string]bool)
	since := latest.AddDate(0, 0, -7*e.config.RetentionWeeks)
	for _, r := range cities {
		all[r.City] = true
		if r.CurrentPeriod > 0 {
			active[r.City] = true
			if r.Week.After(since) {
				retained[r.City] = true
			}
		}
	}
	a.TotalCities = len(all)
	a.ActiveCities = len(active)
	if a.ActiveCities > 0 {
		a.AvgStreamsPerCity = round(float64(a.TotalStreams)/float64(a.ActiveCities), 1)
	}
	a.PeakToTotalRatio = round(percent(float64(a.PeakStreams), float64(a.TotalStreams)), 1)
	a.ConsistencyScore = round(percent(float64(len(retained)), float64(a.ActiveCities)), 1)
	return a, true
}

// categorizeSongs labels songs by weeks to adopt, falling back to the
// retention score and then total streams when nothing is defined.
func categorizeSongs(songs []SongAdoption) {
	if len(songs) == 0 {
		return
	}
	adopt := make([]*float64, len(songs))
	consistency := make([]float64, len(songs))
	streams := make([]float64, len(songs))
	for i, s := range songs {
		adopt[i] = s.WeeksToAdopt
		consistency[i] = s.ConsistencyScore
		streams[i] = float64(s.TotalStreams)
	}

	var labels []string
	switch {
	case anyDefined(values(adopt)):
		labels = Categorize(values(adopt), AdoptionLabels)
	case anyDefined(consistency):
		labels = Categorize(consistency, ConsistencyLabels)
	default:
		labels = Categorize(streams, VolumeLabels)
	}
	for i := range songs {
		songs[i].AdoptionCategory = labels[i]
	}
}

// windowed returns the rows in the song's window, sorted by week.
func (e *Engine) windowed(rows []panel.Row, release time.Time) []panel.Row {
	var out []panel.Row
	for _, r := range rows {
		if e.inWindow(r.Week, release) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Week.Before(out[j].Week)
	})
	return out
}
