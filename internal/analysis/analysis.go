package analysis

import (
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
)

// GenerateReport runs every analysis over the panel and collects the
// summaries into one report.
func (e *Engine) GenerateReport(p panel.Panel, topN int) *Report {
	report := &Report{}

	var first, latest time.Time
	cities := make(map[string]bool)
	for _, r := range p {
		if first.IsZero() || r.Week.Before(first) {
			first = r.Week
		}
		if r.Week.After(latest) {
			latest = r.Week
		}
		if r.City != panel.AllCities {
			cities[r.City] = true
		}
	}

	peaks := e.CityPeaks(p)
	kept, categories := Summarize(peaks.Cities, e.config.MinStreamsThreshold)
	if topN > 0 && len(kept) > topN {
		kept = kept[:topN]
	}
	songs, _ := e.SongAdoption(p)
	stickiness, _ := e.Stickiness(p)

	report.Metadata = ReportMetadata{
		GeneratedDate:      e.config.Now().Format("2006-01-02"),
		Rows:               len(p),
		Cities:             len(cities),
		SongsAnalyzed:      len(songs),
		MissingReleaseDate: peaks.MissingReleaseDate,
		MinStreams:         e.config.MinStreamsThreshold,
		WindowWeeks:        e.config.WindowWeeks,
	}
	if len(p) > 0 {
		report.Metadata.FirstWeek = first.Format("2006-01-02")
		report.Metadata.LatestWeek = latest.Format("2006-01-02")
	}

	report.Songs = songs
	report.Categories = categories
	report.TopCities = kept
	report.Stickiness = StickinessSummaries(stickiness)
	report.TopListeners = TopCitiesByMonthlyListeners(p, 5)

	lapsed := LapsedCities(p, LapsedConfig{QuietWeeks: e.config.RetentionWeeks, ResultsPerBand: 5})
	for _, band := range Bands {
		report.Lapsed = append(report.Lapsed, lapsed[band]...)
	}
	return report
}
