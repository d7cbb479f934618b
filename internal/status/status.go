// Package status audits the scrape and parse pipeline for missing pages and
// fragments.
package status

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/ademuri/song-velocity/internal/scrape"
)

const (
	MissingHTML = "Missing HTML"
	EmptyHTML   = "Empty HTML"
	MissingCSV  = "Missing CSV"
	EmptyCSV    = "Empty CSV"
	NoDataRows  = "CSV has no data rows"
	// Unreadable issues carry the parse error in parentheses.
	UnreadableCSV = "Unreadable CSV"
)

type Issue struct {
	Song       string
	Measure    panel.Measure
	Period     string
	PeriodType panel.PeriodType
	Issue      string
	Path       string
}

type Periods struct {
	Weeks  []time.Time
	Months []time.Time
}

type Dirs struct {
	HTML string
	CSV  string
}

type Report struct {
	Expected int
	Issues   []Issue
}

type Summary struct {
	PeriodType    panel.PeriodType
	Total         int
	MissingHTML   int
	EmptyHTML     int
	MissingCSV    int
	EmptyCSV      int
	NoDataRows    int
	UnreadableCSV int
}

type expectation struct {
	song       string
	songID     string
	measure    panel.Measure
	periodType panel.PeriodType
	period     string
}

// Check lists every expected page and fragment and reports the ones that
// are missing or unusable. Weekly song pages are expected from the song's
// release. Monthly and artist-level data is checked for listeners only.
func Check(catalog scrape.Catalog, conv panel.Conventions, periods Periods, dirs Dirs) Report {
	var expected []expectation
	for _, pt := range []panel.PeriodType{panel.Weekly, panel.Monthly} {
		values := periods.Weeks
		measures := []panel.Measure{panel.MeasureListeners, panel.MeasurePlays}
		if pt == panel.Monthly {
			values = periods.Months
			measures = []panel.Measure{panel.MeasureListeners}
		}

		for _, song := range catalog.Songs() {
			for _, v := range values {
				if pt == panel.Weekly && v.Before(song.ReleaseDate) {
					continue
				}
				for _, m := range measures {
					expected = append(expected, expectation{song.Name, song.ID, m, pt, v.Format(panel.WeekLayout)})
				}
			}
		}
		for _, v := range values {
			expected = append(expected, expectation{panel.ArtistSong, panel.ArtistSongID, panel.MeasureListeners, pt, v.Format(panel.WeekLayout)})
		}
	}

	report := Report{Expected: len(expected)}
	for _, e := range expected {
		key := panel.FragmentKey{PeriodType: e.periodType, Measure: e.measure, GroupBy: "city", SongID: e.songID, Period: e.period}
		issue := Issue{Song: e.song, Measure: e.measure, Period: e.period, PeriodType: e.periodType}

		htmlPath := filepath.Join(dirs.HTML, conv.PageName(key))
		if problem := checkPage(htmlPath); problem != "" {
			issue.Issue, issue.Path = problem, htmlPath
			report.Issues = append(report.Issues, issue)
		}
		csvPath := filepath.Join(dirs.CSV, conv.FragmentName(key))
		if problem := checkFragment(csvPath); problem != "" {
			issue.Issue, issue.Path = problem, csvPath
			report.Issues = append(report.Issues, issue)
		}
	}

	sort.SliceStable(report.Issues, func(i, j int) bool {
		a, b := report.Issues[i], report.Issues[j]
		if a.Song != b.Song {
			return a.Song < b.Song
		}
		if a.PeriodType != b.PeriodType {
			return a.PeriodType < b.PeriodType
		}
		if a.Measure != b.Measure {
			return a.Measure < b.Measure
		}
		return a.Period < b.Period
	})
	return report
}

func checkPage(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return MissingHTML
	}
	if info.Size() <= scrape.MinPageSize {
		return EmptyHTML
	}
	return ""
}

func checkFragment(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return MissingCSV
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Sprintf("%s (%v)", UnreadableCSV, err)
	}
	switch len(records) {
	case 0:
		return EmptyCSV
	case 1:
		return NoDataRows
	}
	return ""
}

// Summaries counts issues per period type, weekly first.
func (r Report) Summaries() []Summary {
	out := []Summary{{PeriodType: panel.Weekly}, {PeriodType: panel.Monthly}}
	for _, issue := range r.Issues {
		s := &out[0]
		if issue.PeriodType == panel.Monthly {
			s = &out[1]
		}
		s.Total++
		switch {
		case issue.Issue == MissingHTML:
			s.MissingHTML++
		case issue.Issue == EmptyHTML:
			s.EmptyHTML++
		case issue.Issue == MissingCSV:
			s.MissingCSV++
		case issue.Issue == EmptyCSV:
			s.EmptyCSV++
		case issue.Issue == NoDataRows:
			s.NoDataRows++
		case strings.HasPrefix(issue.Issue, UnreadableCSV):
			s.UnreadableCSV++
		}
	}
	return out
}

func (r Report) Header() []string {
	return []string{"Song", "Measure", "Period", "Period Type", "Issue", "File Path"}
}

func (r Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		rows = append(rows, []string{i.Song, string(i.Measure), i.Period, string(i.PeriodType), i.Issue, i.Path})
	}
	return rows
}

func (s Summary) Header() []string {
	return []string{"Period Type", "Total", "Missing HTML", "Empty HTML", "Missing CSV", "Empty CSV", "No Data Rows", "Unreadable CSV"}
}

func (s Summary) Row() []string {
	return []string{
		string(s.PeriodType),
		strconv.Itoa(s.Total),
		strconv.Itoa(s.MissingHTML),
		strconv.Itoa(s.EmptyHTML),
		strconv.Itoa(s.MissingCSV),
		strconv.Itoa(s.EmptyCSV),
		strconv.Itoa(s.NoDataRows),
		strconv.Itoa(s.UnreadableCSV),
	}
}
