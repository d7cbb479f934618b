package status

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/ademuri/song-velocity/internal/registry"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCheck(t *testing.T) {
	reg, err := registry.New([]registry.Song{{ID: "1", Name: "Song A", ReleaseDate: date(2024, 1, 12)}})
	if err != nil {
		t.Fatal(err)
	}
	dirs := Dirs{HTML: t.TempDir(), CSV: t.TempDir()}
	periods := Periods{
		Weeks:  []time.Time{date(2024, 1, 5), date(2024, 1, 12)},
		Months: []time.Time{date(2024, 1, 1)},
	}
	page := "<html><body>City</body></html>"
	rows := "City,Previous Period,Current Period\nAustin,1,2\n"

	write(t, dirs.HTML, "page_source_weekly_plays_by_city_1_20240112.html", page)
	write(t, dirs.CSV, "parsed_weekly_plays_by_city_1_20240112.csv", rows)
	write(t, dirs.HTML, "page_source_weekly_listeners_by_city_1_20240112.html", "")
	write(t, dirs.CSV, "parsed_weekly_listeners_by_city_1_20240112.csv", "City,Previous Period\n")
	write(t, dirs.HTML, "page_source_monthly_listeners_by_city_1_20240101.html", page)
	write(t, dirs.CSV, "parsed_monthly_listeners_by_city_1_20240101.csv", "\"bad\n")
	write(t, dirs.CSV, "parsed_weekly_listeners_by_city_artist_20240105.csv", "")

	report := Check(reg, panel.DefaultConventions(), periods, dirs)

	// Song A: 2 weekly + 1 monthly. Artist: 2 weekly + 1 monthly.
	if report.Expected != 6 {
		t.Errorf("Expected = %d, want 6", report.Expected)
	}

	got := map[string]string{}
	for _, i := range report.Issues {
		got[filepath.Base(i.Path)] = i.Issue
	}
	want := map[string]string{
		"page_source_weekly_listeners_by_city_1_20240112.html":       EmptyHTML,
		"parsed_weekly_listeners_by_city_1_20240112.csv":             NoDataRows,
		"page_source_weekly_listeners_by_city_artist_20240105.html":  MissingHTML,
		"parsed_weekly_listeners_by_city_artist_20240105.csv":        EmptyCSV,
		"page_source_weekly_listeners_by_city_artist_20240112.html":  MissingHTML,
		"parsed_weekly_listeners_by_city_artist_20240112.csv":        MissingCSV,
		"page_source_monthly_listeners_by_city_artist_20240101.html": MissingHTML,
		"parsed_monthly_listeners_by_city_artist_20240101.csv":       MissingCSV,
	}
	for name, issue := range want {
		if got[name] != issue {
			t.Errorf("%s: issue = %q, want %q", name, got[name], issue)
		}
	}
	unreadable := got["parsed_monthly_listeners_by_city_1_20240101.csv"]
	if !strings.HasPrefix(unreadable, UnreadableCSV+" (") {
		t.Errorf("unreadable fragment issue = %q", unreadable)
	}
	if len(got) != len(want)+1 {
		t.Errorf("got %d issues, want %d: %v", len(got), len(want)+1, got)
	}

	if first := report.Issues[0]; first.Song != panel.ArtistSong || first.PeriodType != panel.Monthly {
		t.Errorf("first issue = %+v, want artist monthly", first)
	}

	summaries := report.Summaries()
	weekly, monthly := summaries[0], summaries[1]
	if weekly.Total != 6 || weekly.MissingHTML != 2 || weekly.EmptyHTML != 1 || weekly.NoDataRows != 1 || weekly.EmptyCSV != 1 {
		t.Errorf("weekly summary = %+v", weekly)
	}
	if monthly.Total != 3 || monthly.UnreadableCSV != 1 {
		t.Errorf("monthly summary = %+v", monthly)
	}
}

func TestReportRows(t *testing.T) {
	report := Report{Issues: []Issue{{Song: "Song A", Measure: panel.MeasurePlays, Period: "20240105", PeriodType: panel.Weekly, Issue: MissingCSV, Path: "x.csv"}}}
	rows := report.Rows()
	if len(rows) != 1 || len(rows[0]) != len(report.Header()) {
		t.Fatalf("Rows() = %v", rows)
	}
	if rows[0][4] != MissingCSV {
		t.Errorf("issue column = %q", rows[0][4])
	}
	if len(Summary{}.Row()) != len(Summary{}.Header()) {
		t.Error("summary row and header widths differ")
	}
}
