// Package export writes derived tables to timestamped CSV files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Table kinds, used as file name prefixes.
const (
	CityPeakMetrics         = "city_peak_metrics"
	SongPeakMetrics         = "song_peak_metrics"
	CategoryMetrics         = "category_metrics"
	SongAdoptionMetrics     = "song_adoption_metrics"
	SongStickiness          = "song_stickiness"
	StickinessSummary       = "stickiness_summary"
	SongArtistListenerRatio = "song_artist_listener_ratio"
	SongVelocity            = "song_velocity"
	LapsedCities            = "lapsed_cities"
	StatusReport            = "status_report"
)

const timestampLayout = "20060102_150405"

// maxSuffix bounds the search for a free file name.
const maxSuffix = 1000

type Table interface {
	Header() []string
	Rows() [][]string
}

type Writer struct {
	Dir string
	Now func() time.Time
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Now: time.Now}
}

// Write creates {Dir}/{kind}_{timestamp}.csv. An existing file is never
// replaced; a _N suffix is added instead.
func (w *Writer) Write(kind string, t Table) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", w.Dir, err)
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	base := fmt.Sprintf("%s_%s", kind, now().Format(timestampLayout))

	f, path, err := create(w.Dir, base)
	if err != nil {
		return "", err
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(t.Header()); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

func create(dir, base string) (*os.File, string, error) {
	for i := 0; i < maxSuffix; i++ {
		name := base + ".csv"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.csv", base, i)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("no free file name for %s in %s", base, dir)
}

// ReadTable returns the header and rows of an exported file.
func ReadTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("reading %s: no header", path)
	}
	return records[0], records[1:], nil
}
