package analysis

import (
	"reflect"
	"testing"
)

func TestCityTableRoundTrip(t *testing.T) {
	e := newTestEngine(fakeReleases{"1": release, "2": week(1)})
	p := append(series("Austin", "Song A", "1", 5, 10, 1), series("Boston", "Song B", "2", 0, 0, 7, 9, 2)...)
	p = append(p, listeners("Austin", "Song A", "1", week(1), 3))
	cities := e.CityPeaks(p).Cities

	table := CityTable(cities)
	records := append([][]string{table.Header()}, table.Rows()...)
	got, err := ParseCityTable(records)
	if err != nil {
		t.Fatalf("ParseCityTable() error: %v", err)
	}
	if !reflect.DeepEqual(got, cities) {
		t.Errorf("ParseCityTable() = %+v, want %+v", got, cities)
	}
}

func TestTableRowWidths(t *testing.T) {
	tables := map[string]interface {
		Header() []string
		Rows() [][]string
	}{
		"song":       SongTable{{}},
		"city":       CityTable{{}},
		"category":   CategoryTable{{}},
		"adoption":   AdoptionTable{{}},
		"stickiness": StickinessTable{{}},
		"summary":    StickinessSummaryTable{{}},
		"ratio":      RatioTable{{}},
		"velocity":   VelocityTable{{}},
		"lapsed":     LapsedTable{{}},
		"listeners":  ListenersTable{{}},
	}
	for name, table := range tables {
		for _, row := range table.Rows() {
			if len(row) != len(table.Header()) {
				t.Errorf("%s: row has %d columns, header has %d", name, len(row), len(table.Header()))
			}
		}
	}
}

func TestFormatOptional(t *testing.T) {
	if got := formatOptional(nil); got != "" {
		t.Errorf("formatOptional(nil) = %q, want empty", got)
	}
	if got := formatOptional(ptr(1.5)); got != "1.5" {
		t.Errorf("formatOptional(1.5) = %q", got)
	}
}
