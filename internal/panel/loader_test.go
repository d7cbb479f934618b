package panel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func newTestLoader() *Loader {
	return NewLoader(zerolog.Nop())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parsed_weekly_plays_by_city_111_20240105.csv",
		"City,Previous Period,Current Period,% Change,Week,Song,Song ID,Measure,Level\n"+
			"Austin,0,10,,20240105,Song A - Single,111,plays,song\n"+
			"All Cities,0,25,,20240105,Song A - Single,111,plays,song\n")
	writeFile(t, dir, "parsed_monthly_listeners_by_city_artist_20240101.csv",
		"City,Previous Period,Current Period,% Change,Week,Song,Song ID,Measure\n"+
			"Austin,\"1,200\",\"1,500\",25%,20240101,Artist Level,artist,listeners\n")

	p, skipped, err := newTestLoader().Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %v, want none", skipped)
	}
	if len(p) != 3 {
		t.Fatalf("len(panel) = %d, want 3", len(p))
	}

	// Files load in lexical order: monthly before weekly.
	artist := p[0]
	if artist.Level != LevelArtist {
		t.Errorf("artist row level = %q, want %q", artist.Level, LevelArtist)
	}
	if artist.PeriodType != Monthly || artist.Measure != MeasureListeners {
		t.Errorf("artist row = %+v", artist)
	}
	if artist.PreviousPeriod != 1200 || artist.CurrentPeriod != 1500 {
		t.Errorf("artist counts = (%d, %d), want (1200, 1500)", artist.PreviousPeriod, artist.CurrentPeriod)
	}

	austin := p[1]
	want := Row{
		City:           "Austin",
		Song:           "Song A - Single",
		SongID:         "111",
		Level:          LevelSong,
		Measure:        MeasurePlays,
		PeriodType:     Weekly,
		Grouping:       "city",
		Week:           time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		PreviousPeriod: 0,
		CurrentPeriod:  10,
	}
	if austin != want {
		t.Errorf("row = %+v, want %+v", austin, want)
	}
}

func TestLoad_filenameIsAuthoritativeForPeriodType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parsed_monthly_listeners_by_city_111_20240101.csv",
		"City,Previous Period,Current Period,Period Type,Week,Song\n"+
			"Austin,1,2,weekly,20240101,Song A\n")

	p, _, err := newTestLoader().Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p[0].PeriodType != Monthly {
		t.Errorf("period type = %q, want %q", p[0].PeriodType, Monthly)
	}
}

func TestLoad_measureFromFilename(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parsed_weekly_listeners_by_city_111_20240105.csv",
		"City,Previous Period,Current Period,Song\n"+
			"Austin,1,2,Song A\n")

	p, _, err := newTestLoader().Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p[0].Measure != MeasureListeners {
		t.Errorf("measure = %q, want %q", p[0].Measure, MeasureListeners)
	}
	if !p[0].Week.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("week = %v, want week from file name", p[0].Week)
	}
}

func TestLoad_skipsBadFragments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parsed_weekly_plays_by_city_111_20240105.csv",
		"City,Previous Period,Current Period,Song\nAustin,1,2,Song A\n")
	writeFile(t, dir, "parsed_weekly_plays_by_city_222_20240105.csv",
		"City,Previous Period,Current Period,Song\n")
	writeFile(t, dir, "parsed_weekly_plays_by_city_333_20240105.csv",
		"City,Previous Period,Current Period,Song\nAustin,lots,2,Song C\n")
	writeFile(t, dir, "parsed_weekly_plays_by_city_444_20240105.csv", "\n")

	p, skipped, err := newTestLoader().Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(p) != 1 {
		t.Errorf("len(panel) = %d, want 1", len(p))
	}
	if len(skipped) != 2 {
		t.Fatalf("skipped = %v, want 2 entries", skipped)
	}
	if skipped[0].SongID != "222" || skipped[0].Reason != "empty" {
		t.Errorf("skipped[0] = %+v, want empty fragment for 222", skipped[0])
	}
	if skipped[1].SongID != "333" || skipped[1].Week != "20240105" {
		t.Errorf("skipped[1] = %+v, want unreadable fragment for 333", skipped[1])
	}
}

func TestLoad_noData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parsed_weekly_plays_by_city_111_20240105.csv", "City,Previous Period,Current Period\n")

	_, _, err := newTestLoader().Load(dir)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Load() error = %v, want ErrNoData", err)
	}

	_, _, err = newTestLoader().Load(t.TempDir())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Load(empty dir) error = %v, want ErrNoData", err)
	}
}

func TestNormalizeColumn(t *testing.T) {
	cases := map[string]string{
		"Previous Period": "previous_period",
		" % Change ":      "%_change",
		"Song ID":         "song_id",
		"period-type":     "period_type",
		"\ufeffCity":      "city",
	}
	for in, want := range cases {
		if got := NormalizeColumn(in); got != want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"1,234", 1234, false},
		{"12.0", 12, false},
		{"", 0, false},
		{"12.5", 0, true},
		{"-1", 0, true},
		{"n/a", 0, true},
	}
	for _, c := range cases {
		got, err := ParseCount(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseCount(%q) error = %v, wantErr %v", c.in, err, c.wantErr)
			continue
		}
		if got != c.want {
			t.Errorf("ParseCount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	week := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	p := Panel{
		{City: "Austin", SongID: "1", Week: week, CurrentPeriod: 1},
		{City: "Boston", SongID: "1", Week: week, CurrentPeriod: 2},
		{City: "Austin", SongID: "1", Week: week, CurrentPeriod: 3},
	}
	got := p.Dedupe()
	if len(got) != 2 {
		t.Fatalf("len(Dedupe()) = %d, want 2", len(got))
	}
	if got[0].City != "Boston" || got[1].CurrentPeriod != 3 {
		t.Errorf("Dedupe() = %+v", got)
	}
}
