package export

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/song-velocity/internal/analysis"
)

type fakeTable struct {
	header []string
	rows   [][]string
}

func (t fakeTable) Header() []string { return t.header }
func (t fakeTable) Rows() [][]string { return t.rows }

func fixedNow() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := &Writer{Dir: dir, Now: fixedNow}
	table := fakeTable{header: []string{"city", "total"}, rows: [][]string{{"Austin", "10"}, {"São Paulo, BR", "3"}}}

	path, err := w.Write(CityPeakMetrics, table)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if want := filepath.Join(dir, "city_peak_metrics_20240309_140506.csv"); path != want {
		t.Errorf("Write() path = %q, want %q", path, want)
	}

	header, rows, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable() error: %v", err)
	}
	if !reflect.DeepEqual(header, table.header) || !reflect.DeepEqual(rows, table.rows) {
		t.Errorf("ReadTable() = %v %v, want %v %v", header, rows, table.header, table.rows)
	}
}

func TestWrite_neverOverwrites(t *testing.T) {
	w := &Writer{Dir: t.TempDir(), Now: fixedNow}
	first := fakeTable{header: []string{"a"}, rows: [][]string{{"1"}}}
	second := fakeTable{header: []string{"a"}, rows: [][]string{{"2"}}}

	p1, err := w.Write(SongVelocity, first)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	p2, err := w.Write(SongVelocity, second)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if p1 == p2 {
		t.Fatalf("both writes used %s", p1)
	}
	if !strings.HasSuffix(p2, "_1.csv") {
		t.Errorf("second path = %s, want a _1 suffix", p2)
	}

	_, rows, err := ReadTable(p1)
	if err != nil {
		t.Fatalf("ReadTable() error: %v", err)
	}
	if rows[0][0] != "1" {
		t.Errorf("first file was overwritten: %v", rows)
	}
}

func TestWrite_emptyRows(t *testing.T) {
	w := &Writer{Dir: t.TempDir(), Now: fixedNow}
	path, err := w.Write(StatusReport, fakeTable{header: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	header, rows, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable() error: %v", err)
	}
	if len(header) != 2 || len(rows) != 0 {
		t.Errorf("ReadTable() = %v %v, want header only", header, rows)
	}
}

func TestWrite_cityTableRoundTrip(t *testing.T) {
	weeks := 2.5
	cities := []analysis.CityMetric{
		{City: "Austin", AvgWeeksToPeak: &weeks, PeakStreams: 40, SongsAnalyzed: 2, TotalStreams: 90,
			ConsistencyScore: 66.7, AvgWeeklyStreamsPerListener: 1.25, AvgWeeksToAdopt: &weeks, Category: "Early Adopter"},
		{City: "Boston", PeakStreams: 3, SongsAnalyzed: 1, TotalStreams: 3, Category: "Unknown"},
	}

	w := &Writer{Dir: t.TempDir(), Now: fixedNow}
	path, err := w.Write(CityPeakMetrics, analysis.CityTable(cities))
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	header, rows, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable() error: %v", err)
	}
	got, err := analysis.ParseCityTable(append([][]string{header}, rows...))
	if err != nil {
		t.Fatalf("ParseCityTable() error: %v", err)
	}
	if !reflect.DeepEqual(got, cities) {
		t.Errorf("round trip = %+v, want %+v", got, cities)
	}
}
