package panel

import (
	"fmt"
	"strings"
	"time"
)

// AllCities is the sentinel city name for the dashboard's aggregate row.
const AllCities = "All Cities"

// ArtistSong is the song name the dashboard uses for artist-level rows.
const ArtistSong = "Artist Level"

// ArtistSongID is the song id used in artist-level fragment names.
const ArtistSongID = "artist"

// WeekLayout is the date format used in fragment names and panel files.
const WeekLayout = "20060102"

type Level string

const (
	LevelSong   Level = "song"
	LevelArtist Level = "artist"
)

type Measure string

const (
	MeasurePlays     Measure = "plays"
	MeasureListeners Measure = "listeners"
)

type PeriodType string

const (
	Weekly  PeriodType = "weekly"
	Monthly PeriodType = "monthly"
)

func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelSong, LevelArtist:
		return l, nil
	}
	return "", fmt.Errorf("unknown level %q", s)
}

func ParseMeasure(s string) (Measure, error) {
	switch m := Measure(strings.ToLower(strings.TrimSpace(s))); m {
	case MeasurePlays, MeasureListeners:
		return m, nil
	}
	return "", fmt.Errorf("unknown measure %q", s)
}

func ParsePeriodType(s string) (PeriodType, error) {
	switch p := PeriodType(strings.ToLower(strings.TrimSpace(s))); p {
	case Weekly, Monthly:
		return p, nil
	}
	return "", fmt.Errorf("unknown period type %q", s)
}

// Row is one city's counts for one (song, measure, period).
type Row struct {
	City           string
	Song           string
	SongID         string
	Level          Level
	Measure        Measure
	PeriodType     PeriodType
	Grouping       string
	Week           time.Time
	PreviousPeriod int64
	CurrentPeriod  int64
	PctChange      string
}

// Panel is the long table of every loaded row, in load order.
type Panel []Row

// ParseWeek accepts YYYYMMDD and YYYY-MM-DD and returns a UTC date.
func ParseWeek(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{WeekLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid week %q", s)
}

// Filter returns the rows for which keep returns true, preserving order.
func (p Panel) Filter(keep func(Row) bool) Panel {
	var out Panel
	for _, r := range p {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

type rowKey struct {
	city       string
	songID     string
	level      Level
	measure    Measure
	periodType PeriodType
	grouping   string
	week       time.Time
}

// Dedupe drops rows that repeat an earlier (city, song, level, measure,
// period, week) key. The last occurrence wins and keeps its position.
func (p Panel) Dedupe() Panel {
	last := make(map[rowKey]int, len(p))
	for i, r := range p {
		last[keyOf(r)] = i
	}
	out := make(Panel, 0, len(last))
	for i, r := range p {
		if last[keyOf(r)] == i {
			out = append(out, r)
		}
	}
	return out
}

func keyOf(r Row) rowKey {
	return rowKey{r.City, r.SongID, r.Level, r.Measure, r.PeriodType, r.Grouping, r.Week}
}
