package panel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoData is returned when a directory yields no usable rows.
var ErrNoData = errors.New("no data loaded")

// Skipped records a fragment that could not be used.
type Skipped struct {
	Path   string
	SongID string
	Week   string
	Reason string
}

type Loader struct {
	Conventions Conventions
	Log         zerolog.Logger
}

func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{Conventions: DefaultConventions(), Log: log}
}

// Load reads every fragment in dir, in lexical file order. Fragments that
// fail to parse are reported in the skipped list and do not abort the load.
func (l *Loader) Load(dir string) (Panel, []Skipped, error) {
	paths, err := filepath.Glob(filepath.Join(dir, l.Conventions.FragmentGlob))
	if err != nil {
		return nil, nil, fmt.Errorf("listing fragments in %s: %w", dir, err)
	}
	sort.Strings(paths)

	var p Panel
	var skipped []Skipped
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Size() <= 1 {
			l.Log.Debug().Str("path", path).Msg("skipping empty file")
			continue
		}

		key, err := l.Conventions.ParseFragmentName(path)
		if err != nil {
			l.Log.Warn().Err(err).Str("path", path).Msg("skipping fragment")
			skipped = append(skipped, Skipped{Path: path, Reason: err.Error()})
			continue
		}

		rows, err := l.loadFile(path, key)
		if err != nil {
			l.Log.Warn().Err(err).Str("path", path).Msg("skipping fragment")
			skipped = append(skipped, Skipped{Path: path, SongID: key.SongID, Week: key.Period, Reason: err.Error()})
			continue
		}
		if len(rows) == 0 {
			l.Log.Warn().Str("path", path).Msg("fragment has no data rows")
			skipped = append(skipped, Skipped{Path: path, SongID: key.SongID, Week: key.Period, Reason: "empty"})
			continue
		}
		p = append(p, rows...)
	}

	if len(p) == 0 {
		return nil, skipped, fmt.Errorf("loading %s: %w", dir, ErrNoData)
	}
	l.Log.Info().Int("files", len(paths)).Int("rows", len(p)).Int("skipped", len(skipped)).Msg("loaded panel")
	return p, skipped, nil
}

func (l *Loader) loadFile(path string, key FragmentKey) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readFragment(f, key)
}

// NormalizeColumn maps a header such as "Previous Period" or "% Change" to
// its canonical form ("previous_period", "%_change").
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

func readFragment(r io.Reader, key FragmentKey) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[NormalizeColumn(h)] = i
	}
	for _, required := range []string{"city", "previous_period", "current_period"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	get := func(record []string, col string) (string, bool) {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		city, _ := get(record, "city")
		if city == "" {
			continue
		}
		row := Row{
			City:       city,
			SongID:     key.SongID,
			Measure:    key.Measure,
			PeriodType: key.PeriodType,
			Grouping:   key.GroupBy,
		}

		prev, _ := get(record, "previous_period")
		if row.PreviousPeriod, err = ParseCount(prev); err != nil {
			return nil, fmt.Errorf("line %d: previous period: %w", line, err)
		}
		curr, _ := get(record, "current_period")
		if row.CurrentPeriod, err = ParseCount(curr); err != nil {
			return nil, fmt.Errorf("line %d: current period: %w", line, err)
		}
		row.PctChange, _ = get(record, "%_change")

		if v, ok := get(record, "song"); ok {
			row.Song = v
		}
		if v, ok := get(record, "song_id"); ok && v != "" {
			row.SongID = v
		}
		if v, ok := get(record, "measure"); ok && v != "" {
			m, err := ParseMeasure(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			row.Measure = m
		}

		row.Week, err = ParseWeek(key.Period)
		if v, ok := get(record, "week"); ok && v != "" {
			if w, werr := ParseWeek(v); werr == nil {
				row.Week, err = w, nil
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if v, ok := get(record, "level"); ok && v != "" {
			lvl, err := ParseLevel(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			row.Level = lvl
		} else if row.Song == ArtistSong || (row.Song == "" && row.SongID == ArtistSongID) {
			row.Level = LevelArtist
		} else {
			row.Level = LevelSong
		}
		if row.Song == "" && row.Level == LevelArtist {
			row.Song = ArtistSong
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// ParseCount parses a non-negative count. Thousands separators are removed
// and integral floats such as "12.0" are accepted.
func ParseCount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, fmt.Errorf("invalid count %q", s)
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %q", s)
	}
	return n, nil
}
