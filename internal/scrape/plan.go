// Package scrape saves dashboard pages for every (song, measure, period)
// that has not been captured yet.
package scrape

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/ademuri/song-velocity/internal/registry"
)

// MinPageSize is the smallest page source treated as captured.
const MinPageSize = 10

type Catalog interface {
	Songs() []registry.Song
}

type Job struct {
	Key      panel.FragmentKey
	Level    panel.Level
	SongName string
	Path     string
}

type Options struct {
	HTMLDir     string
	Measures    []panel.Measure
	Levels      []panel.Level
	PeriodTypes []panel.PeriodType
	// Weeks are week-ending dates, Months are first days of months.
	Weeks  []time.Time
	Months []time.Time
	// SongID and Period restrict the plan when set.
	SongID string
	Period string
	Force  bool
}

// Plan lists the pages that still need scraping. Song-level pages start at
// the song's release, artist-level pages cover every period. Monthly pages
// are only available for listeners.
func Plan(catalog Catalog, conv panel.Conventions, opts Options) []Job {
	var jobs []Job
	for _, pt := range opts.PeriodTypes {
		periods := opts.Weeks
		if pt == panel.Monthly {
			periods = opts.Months
		}
		for _, measure := range opts.Measures {
			if pt == panel.Monthly && measure != panel.MeasureListeners {
				continue
			}
			for _, level := range opts.Levels {
				for _, target := range targets(catalog, level) {
					if opts.SongID != "" && target.ID != opts.SongID {
						continue
					}
					for _, period := range periods {
						if !target.ReleaseDate.IsZero() && endOf(pt, period).Before(target.ReleaseDate) {
							continue
						}
						key := panel.FragmentKey{
							PeriodType: pt,
							Measure:    measure,
							GroupBy:    "city",
							SongID:     target.ID,
							Period:     period.Format(panel.WeekLayout),
						}
						if opts.Period != "" && key.Period != opts.Period {
							continue
						}
						path := filepath.Join(opts.HTMLDir, conv.PageName(key))
						if !opts.Force && Captured(path) {
							continue
						}
						jobs = append(jobs, Job{Key: key, Level: level, SongName: target.Name, Path: path})
					}
				}
			}
		}
	}
	return jobs
}

func targets(catalog Catalog, level panel.Level) []registry.Song {
	if level == panel.LevelArtist {
		return []registry.Song{{ID: panel.ArtistSongID, Name: panel.ArtistSong}}
	}
	return catalog.Songs()
}

// endOf returns the last day covered by a period.
func endOf(pt panel.PeriodType, period time.Time) time.Time {
	if pt == panel.Monthly {
		return period.AddDate(0, 1, -1)
	}
	return period
}

// startOf returns the first day covered by a period.
func startOf(pt panel.PeriodType, period time.Time) time.Time {
	if pt == panel.Monthly {
		return period
	}
	return period.AddDate(0, 0, -6)
}

// Captured reports whether a page source exists and is not a stub.
func Captured(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > MinPageSize
}
