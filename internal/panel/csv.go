package panel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Columns of the consolidated panel file, in order.
var Columns = []string{
	"city", "previous_period", "current_period", "%_change", "week",
	"song", "song_id", "measure", "level", "grouping", "period_type",
}

func WriteCSV(w io.Writer, p Panel) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, r := range p {
		record := []string{
			r.City,
			strconv.FormatInt(r.PreviousPeriod, 10),
			strconv.FormatInt(r.CurrentPeriod, 10),
			r.PctChange,
			r.Week.Format(WeekLayout),
			r.Song,
			r.SongID,
			string(r.Measure),
			string(r.Level),
			r.Grouping,
			string(r.PeriodType),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes the consolidated panel to path, creating its directory.
func WriteFile(path string, p Panel) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(f, p); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV reads a consolidated panel written by WriteCSV.
func ReadCSV(r io.Reader) (Panel, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[NormalizeColumn(h)] = i
	}
	for _, c := range Columns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var p Panel
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := decodeRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p = append(p, row)
	}
	return p, nil
}

func ReadFile(path string) (Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("reading %s: %w", path, ErrNoData)
	}
	return p, nil
}

func decodeRow(record []string, cols map[string]int) (Row, error) {
	field := func(name string) string { return record[cols[name]] }

	var row Row
	var err error
	row.City = field("city")
	if row.PreviousPeriod, err = ParseCount(field("previous_period")); err != nil {
		return row, err
	}
	if row.CurrentPeriod, err = ParseCount(field("current_period")); err != nil {
		return row, err
	}
	row.PctChange = field("%_change")
	if row.Week, err = ParseWeek(field("week")); err != nil {
		return row, err
	}
	row.Song = field("song")
	row.SongID = field("song_id")
	if row.Measure, err = ParseMeasure(field("measure")); err != nil {
		return row, err
	}
	if row.Level, err = ParseLevel(field("level")); err != nil {
		return row, err
	}
	row.Grouping = field("grouping")
	if row.PeriodType, err = ParsePeriodType(field("period_type")); err != nil {
		return row, err
	}
	return row, nil
}
