package analysis

import (
	"testing"

	"github.com/ademuri/song-velocity/internal/panel"
)

func TestLapsedCities(t *testing.T) {
	p := series("Austin", "Song A", "1", 100, 200, 0, 0, 0, 0, 0)
	p = append(p, series("Boston", "Song A", "1", 0, 0, 0, 0, 0, 0, 60)...)
	p = append(p, series("Chicago", "Song A", "1", 20)...)
	p = append(p, series("Denver", "Song A", "1", 2000)...)
	p = append(p, plays(panel.AllCities, "Song A", "1", week(6), 2360))

	got := LapsedCities(p, LapsedConfig{QuietWeeks: 4, ResultsPerBand: 5})

	strong := got[BandStrong]
	if len(strong) != 1 || strong[0].City != "Austin" {
		t.Fatalf("strong band = %+v, want Austin", strong)
	}
	a := strong[0]
	if a.TotalStreams != 300 || !a.FirstActive.Equal(week(0)) || !a.LastActive.Equal(week(1)) {
		t.Errorf("Austin = %+v", a)
	}
	if a.WeeksSinceLast != 5 {
		t.Errorf("WeeksSinceLast = %v, want 5", a.WeeksSinceLast)
	}

	if s := got[BandStronghold]; len(s) != 1 || s[0].City != "Denver" {
		t.Errorf("stronghold band = %+v, want Denver", s)
	}
	if m := got[BandModerate]; len(m) != 0 {
		t.Errorf("moderate band = %+v, want none (Boston is active, Chicago is small)", m)
	}
}

func TestSortLapsed(t *testing.T) {
	cities := []LapsedCity{
		{City: "A", TotalStreams: 10, WeeksSinceLast: 2},
		{City: "B", TotalStreams: 30, WeeksSinceLast: 1},
		{City: "C", TotalStreams: 20, WeeksSinceLast: 5},
	}
	sortLapsed(cities, "streams")
	if cities[0].City != "B" || cities[2].City != "A" {
		t.Errorf("by streams = %+v", cities)
	}
	sortLapsed(cities, "dormancy")
	if cities[0].City != "C" || cities[2].City != "B" {
		t.Errorf("by dormancy = %+v", cities)
	}
}
