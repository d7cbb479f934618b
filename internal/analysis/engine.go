package analysis

import (
	"math"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/rs/zerolog"
)

// ReleaseDates looks up a song's release date. Unknown ids report false.
type ReleaseDates interface {
	ReleaseDate(songID string) (time.Time, bool)
}

type Config struct {
	// Weeks after release that belong to a song's window, inclusive.
	WindowWeeks int

	// Weeks at the end of a song's data used for the retention score.
	RetentionWeeks int

	// Cities below this many total streams are left out of summaries.
	MinStreamsThreshold int64

	// Count artist-level rows as songs in city breakdowns.
	IncludeArtistLevel bool

	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		WindowWeeks:         12,
		RetentionWeeks:      4,
		MinStreamsThreshold: 50,
		Now:                 time.Now,
	}
}

type Engine struct {
	releases ReleaseDates
	config   Config
	log      zerolog.Logger
}

func New(releases ReleaseDates, config Config, log zerolog.Logger) *Engine {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.WindowWeeks <= 0 {
		config.WindowWeeks = 12
	}
	if config.RetentionWeeks <= 0 {
		config.RetentionWeeks = 4
	}
	return &Engine{releases: releases, config: config, log: log}
}

func (e *Engine) Config() Config {
	return e.config
}

func (e *Engine) windowEnd(release time.Time) time.Time {
	return release.AddDate(0, 0, 7*e.config.WindowWeeks)
}

func (e *Engine) inWindow(week time.Time, release time.Time) bool {
	return !week.Before(release) && !week.After(e.windowEnd(release))
}

func (e *Engine) songLevel(r panel.Row) bool {
	return r.Level == panel.LevelSong || e.config.IncludeArtistLevel
}

// weeksBetween is the day difference divided by seven, to one decimal.
func weeksBetween(from time.Time, to time.Time) float64 {
	days := math.Round(to.Sub(from).Hours() / 24)
	return round(days/7, 1)
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// percent returns num/den*100, or 0 when den is 0.
func percent(num float64, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// meanOf averages the defined values, or returns nil if there are none.
func meanOf(values []*float64) *float64 {
	var defined []float64
	for _, v := range values {
		if v != nil {
			defined = append(defined, *v)
		}
	}
	if len(defined) == 0 {
		return nil
	}
	m := mean(defined)
	return &m
}

func ptr(v float64) *float64 {
	return &v
}

func roundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	return ptr(round(*v, places))
}
