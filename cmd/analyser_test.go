package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/song-velocity/internal/export"
	"github.com/ademuri/song-velocity/internal/panel"
)

type fakeTable [][]string

func (f fakeTable) Header() []string {
	return []string{"city", "streams"}
}

func (f fakeTable) Rows() [][]string {
	return f
}

func playsRow(city string, songID string, week time.Time, current int64) panel.Row {
	return panel.Row{
		City: city, Song: "Song " + songID, SongID: songID, Level: panel.LevelSong,
		Measure: panel.MeasurePlays, PeriodType: panel.Weekly, Grouping: "city",
		Week: week, CurrentPeriod: current,
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Austin", 10); got != "Austin" {
		t.Errorf("truncate(Austin) = %q", got)
	}
	got := truncate("Rio de Janeiro Metropolitan Area", 10)
	if got != "Rio de ..." {
		t.Errorf("truncate() = %q, want %q", got, "Rio de ...")
	}
	// Wide runes take two columns each.
	if got := truncate("東京都東京都", 8); got != "東京..." {
		t.Errorf("truncate(wide) = %q, want %q", got, "東京...")
	}
}

func TestNewAnalysis(t *testing.T) {
	table := fakeTable{{"Austin", "10"}, {"Boston", "5"}, {"Chicago", "1"}}
	a := newAnalysis(table, AnalyserConfig{NumToReturn: 2})
	if len(a.results) != 3 {
		t.Fatalf("len(results) = %d, want header plus 2 rows", len(a.results))
	}
	if a.results[0][0] != "city" || a.results[2][0] != "Boston" {
		t.Errorf("results = %v", a.results)
	}

	all := newAnalysis(table, AnalyserConfig{})
	if len(all.results) != 4 {
		t.Errorf("len(results) = %d, want every row", len(all.results))
	}
}

func TestAnalysisString(t *testing.T) {
	a := newAnalysis(fakeTable{{"Austin", "10"}}, AnalyserConfig{})
	a.summary = "1 city"
	out := strings.ToLower(a.String())
	for _, want := range []string{"city", "austin", "10", "1 city"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
	if a.Empty() {
		t.Error("Empty() = true for an analysis with rows")
	}
	if !(Analysis{summary: "nothing"}).Empty() {
		t.Error("Empty() = false for an analysis without rows")
	}
}

func TestAnalysisExport(t *testing.T) {
	dir := t.TempDir()
	w := export.NewWriter(dir)
	w.Now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) }

	a := Analysis{exports: []exportTable{{export.CityPeakMetrics, fakeTable{{"Austin", "10"}}}}}
	out := new(bytes.Buffer)
	if err := a.Export(w, out); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, export.CityPeakMetrics+"_*.csv"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("exported files = %v, %v", matches, err)
	}
	if !strings.Contains(out.String(), "Exported "+matches[0]) {
		t.Errorf("output = %q", out.String())
	}
	content, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "city,streams\nAustin,10\n" {
		t.Errorf("content = %q", content)
	}
}

func TestConfigureNumber(t *testing.T) {
	var config AnalyserConfig
	if err := configureNumber(map[string]string{"n": "7"}, &config); err != nil {
		t.Fatalf("configureNumber() error: %v", err)
	}
	if config.NumToReturn != 7 {
		t.Errorf("NumToReturn = %d, want 7", config.NumToReturn)
	}
	if err := configureNumber(map[string]string{"n": "many"}, &config); err == nil {
		t.Error("configureNumber(many) succeeded, want error")
	}
	if err := configureNumber(map[string]string{}, &config); err != nil || config.NumToReturn != 7 {
		t.Errorf("configureNumber(empty) changed config: %d, %v", config.NumToReturn, err)
	}
}
