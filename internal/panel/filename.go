package panel

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FragmentKey identifies one saved dashboard view. The same key names both
// the page source and the fragment parsed from it.
type FragmentKey struct {
	PeriodType PeriodType
	Measure    Measure
	GroupBy    string
	SongID     string
	// Period is the raw YYYYMMDD token from the file name.
	Period string
}

// Conventions holds the file naming scheme shared by the scraper, the page
// parser and the loader.
type Conventions struct {
	FragmentPrefix string
	PagePrefix     string
	FragmentGlob   string
}

// DefaultConventions names fragments
// parsed_{period_type}_{measure}_by_{group_by}_{song_id}_{period}.csv and
// page sources page_source_{period_type}_{measure}_by_{group_by}_{song_id}_{period}.html.
func DefaultConventions() Conventions {
	return Conventions{
		FragmentPrefix: "parsed",
		PagePrefix:     "page_source",
		FragmentGlob:   "*_by_*.csv",
	}
}

func (c Conventions) FragmentName(k FragmentKey) string {
	return c.name(c.FragmentPrefix, k) + ".csv"
}

func (c Conventions) PageName(k FragmentKey) string {
	return c.name(c.PagePrefix, k) + ".html"
}

func (c Conventions) name(prefix string, k FragmentKey) string {
	groupBy := k.GroupBy
	if groupBy == "" {
		groupBy = "city"
	}
	return fmt.Sprintf("%s_%s_%s_by_%s_%s_%s", prefix, k.PeriodType, k.Measure, groupBy, k.SongID, k.Period)
}

// ParseFragmentName recovers the key from a fragment path. Only the base
// name is considered.
func (c Conventions) ParseFragmentName(path string) (FragmentKey, error) {
	return parseName(filepath.Base(path), ".csv")
}

// ParsePageName recovers the key from a page source path.
func (c Conventions) ParsePageName(path string) (FragmentKey, error) {
	base := filepath.Base(path)
	// The two-token prefix collapses to one so the positions line up with
	// fragment names.
	if strings.HasPrefix(base, c.PagePrefix+"_") {
		base = "page_" + strings.TrimPrefix(base, c.PagePrefix+"_")
	}
	return parseName(base, ".html")
}

func parseName(base string, ext string) (FragmentKey, error) {
	parts := strings.Split(base, "_")
	if len(parts) < 7 {
		return FragmentKey{}, fmt.Errorf("file name %q has %d fields, want at least 7", base, len(parts))
	}
	if parts[3] != "by" {
		return FragmentKey{}, fmt.Errorf("file name %q: missing _by_ separator", base)
	}

	periodType, err := ParsePeriodType(parts[1])
	if err != nil {
		return FragmentKey{}, fmt.Errorf("file name %q: %w", base, err)
	}
	measure, err := ParseMeasure(parts[2])
	if err != nil {
		return FragmentKey{}, fmt.Errorf("file name %q: %w", base, err)
	}

	return FragmentKey{
		PeriodType: periodType,
		Measure:    measure,
		GroupBy:    parts[4],
		SongID:     parts[5],
		Period:     strings.TrimSuffix(parts[6], ext),
	}, nil
}
