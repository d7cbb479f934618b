package analysis

import (
	"sort"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
)

type LapsedConfig struct {
	// Cities with no streams in this many trailing weeks count as lapsed.
	QuietWeeks     int
	ResultsPerBand int
	SortBy         string // "dormancy" or "streams"
}

// LapsedCity is a city that streamed a song and then went quiet.
type LapsedCity struct {
	City           string    `yaml:"city"`
	Song           string    `yaml:"song"`
	SongID         string    `yaml:"song_id"`
	TotalStreams   int64     `yaml:"total_streams"`
	FirstActive    time.Time `yaml:"first_active"`
	LastActive     time.Time `yaml:"last_active"`
	WeeksSinceLast float64   `yaml:"weeks_since_last"`
	Band           string    `yaml:"band"`
}

const (
	BandStronghold = "Stronghold"
	BandStrong     = "Strong"
	BandModerate   = "Moderate"

	ThresholdStronghold = 1000
	ThresholdStrong     = 250
	ThresholdModerate   = 50
)

// Bands lists the bands from largest to smallest.
var Bands = []string{BandStronghold, BandStrong, BandModerate}

func determineBand(streams int64) string {
	if streams >= ThresholdStronghold {
		return BandStronghold
	}
	if streams >= ThresholdStrong {
		return BandStrong
	}
	if streams >= ThresholdModerate {
		return BandModerate
	}
	return ""
}

// BandThreshold returns the minimum total streams of a band.
func BandThreshold(band string) int64 {
	switch band {
	case BandStronghold:
		return ThresholdStronghold
	case BandStrong:
		return ThresholdStrong
	case BandModerate:
		return ThresholdModerate
	}
	return 0
}

// LapsedCities finds, per band, the (city, song) pairs whose last nonzero
// week is at least QuietWeeks before the song's latest week of data.
func LapsedCities(p panel.Panel, cfg LapsedConfig) map[string][]LapsedCity {
	type pairKey struct{ city, songID string }
	pairs := make(map[pairKey]*LapsedCity)
	latest := make(map[string]time.Time)
	for _, r := range p {
		if r.PeriodType != panel.Weekly || r.Measure != panel.MeasurePlays || r.Level != panel.LevelSong {
			continue
		}
		if r.Week.After(latest[r.SongID]) {
			latest[r.SongID] = r.Week
		}
		if r.City == panel.AllCities || r.CurrentPeriod == 0 {
			continue
		}
		k := pairKey{r.City, r.SongID}
		c := pairs[k]
		if c == nil {
			c = &LapsedCity{City: r.City, Song: r.Song, SongID: r.SongID, FirstActive: r.Week, LastActive: r.Week}
			pairs[k] = c
		}
		c.TotalStreams += r.CurrentPeriod
		if r.Week.Before(c.FirstActive) {
			c.FirstActive = r.Week
		}
		if r.Week.After(c.LastActive) {
			c.LastActive = r.Week
		}
	}

	results := make(map[string][]LapsedCity)
	for _, c := range pairs {
		end := latest[c.SongID]
		if end.Sub(c.LastActive) < time.Duration(cfg.QuietWeeks)*7*24*time.Hour {
			continue
		}
		c.WeeksSinceLast = weeksBetween(c.LastActive, end)
		c.Band = determineBand(c.TotalStreams)
		if c.Band == "" {
			continue
		}
		results[c.Band] = append(results[c.Band], *c)
	}

	for band := range results {
		sortLapsed(results[band], cfg.SortBy)
		if cfg.ResultsPerBand > 0 && len(results[band]) > cfg.ResultsPerBand {
			results[band] = results[band][:cfg.ResultsPerBand]
		}
	}
	return results
}

func sortLapsed(cities []LapsedCity, sortBy string) {
	sort.Slice(cities, func(i, j int) bool {
		a, b := cities[i], cities[j]
		if sortBy == "streams" && a.TotalStreams != b.TotalStreams {
			return a.TotalStreams > b.TotalStreams
		}
		// Longest dormancy first.
		if a.WeeksSinceLast != b.WeeksSinceLast {
			return a.WeeksSinceLast > b.WeeksSinceLast
		}
		if a.TotalStreams != b.TotalStreams {
			return a.TotalStreams > b.TotalStreams
		}
		if a.City != b.City {
			return a.City < b.City
		}
		return a.SongID < b.SongID
	})
}
