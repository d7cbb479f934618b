// Package pagesource extracts the per-city trends table from saved
// dashboard pages.
package pagesource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrTableNotFound = errors.New("city table not found")

var header = []string{"City", "Previous Period", "This Period", "Change"}

type TableRow struct {
	City           string
	PreviousPeriod int64
	CurrentPeriod  int64
	Change         string
}

// FragmentMeta is written alongside every parsed row.
type FragmentMeta struct {
	Week    string
	Song    string
	SongID  string
	Measure string
	Level   string
}

// Parse reads the visible text of a page and returns the rows of the
// first City / Previous Period / This Period / Change table.
func Parse(r io.Reader) ([]TableRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	lines := visibleLines(doc.Selection)
	start := findHeader(lines)
	if start < 0 {
		return nil, ErrTableNotFound
	}

	var rows []TableRow
	for i := start; i+3 < len(lines); i += 4 {
		city := lines[i]
		prev, ok := parseCount(lines[i+1])
		if city == "" || !ok {
			break
		}
		curr, ok := parseCount(lines[i+2])
		if !ok {
			break
		}
		rows = append(rows, TableRow{City: city, PreviousPeriod: prev, CurrentPeriod: curr, Change: lines[i+3]})
	}
	return rows, nil
}

// visibleLines returns trimmed, non-empty text lines in document order.
func visibleLines(s *goquery.Selection) []string {
	var lines []string
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "script", "style", "noscript", "template":
				return
			case "#text":
				for _, line := range strings.Split(c.Text(), "\n") {
					if line = strings.TrimSpace(line); line != "" {
						lines = append(lines, line)
					}
				}
			default:
				walk(c)
			}
		})
	}
	walk(s)
	return lines
}

func findHeader(lines []string) int {
	for i := 0; i+len(header) <= len(lines); i++ {
		match := true
		for j, h := range header {
			if lines[i+j] != h {
				match = false
				break
			}
		}
		if match {
			return i + len(header)
		}
	}
	return -1
}

func parseCount(s string) (int64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// WriteFragment writes rows in the fragment CSV layout read by the panel
// loader.
func WriteFragment(w io.Writer, rows []TableRow, meta FragmentMeta) error {
	cw := csv.NewWriter(w)
	err := cw.Write([]string{"City", "Previous Period", "Current Period", "% Change", "Week", "Song", "Song ID", "Measure", "Level"})
	if err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.City,
			strconv.FormatInt(r.PreviousPeriod, 10),
			strconv.FormatInt(r.CurrentPeriod, 10),
			r.Change,
			meta.Week,
			meta.Song,
			meta.SongID,
			meta.Measure,
			meta.Level,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
