package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
)

type LoadRun struct {
	LoadedAt time.Time
	Source   string
	Rows     int
	Skipped  int
}

// ErrNoSnapshot is returned when nothing has been saved yet.
var ErrNoSnapshot = fmt.Errorf("no panel snapshot: %w", panel.ErrNoData)

// LoadPanel returns the stored rows in insertion order.
func (s *Store) LoadPanel() (panel.Panel, error) {
	rows, err := s.db.Query(`
	SELECT city, song, song_id, level, measure, period_type, grouping, week, previous_period, current_period, pct_change
	FROM PanelRow
	ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying panel: %w", err)
	}
	defer rows.Close()

	var p panel.Panel
	for rows.Next() {
		var r panel.Row
		var level, measure, periodType, week string
		err := rows.Scan(&r.City, &r.Song, &r.SongID, &level, &measure, &periodType, &r.Grouping,
			&week, &r.PreviousPeriod, &r.CurrentPeriod, &r.PctChange)
		if err != nil {
			return nil, err
		}
		r.Level = panel.Level(level)
		r.Measure = panel.Measure(measure)
		r.PeriodType = panel.PeriodType(periodType)
		if r.Week, err = panel.ParseWeek(week); err != nil {
			return nil, fmt.Errorf("stored week %q: %w", week, err)
		}
		p = append(p, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, ErrNoSnapshot
	}
	return p, nil
}

// LastLoad returns the most recent load, or ErrNoSnapshot.
func (s *Store) LastLoad() (LoadRun, error) {
	row := s.db.QueryRow("SELECT loaded_at, source, rows, skipped FROM LoadRun ORDER BY id DESC LIMIT 1")
	var run LoadRun
	err := row.Scan(&run.LoadedAt, &run.Source, &run.Rows, &run.Skipped)
	if err == sql.ErrNoRows {
		return LoadRun{}, ErrNoSnapshot
	}
	if err != nil {
		return LoadRun{}, fmt.Errorf("getting last load: %w", err)
	}
	return run, nil
}

func (s *Store) Skipped() ([]panel.Skipped, error) {
	rows, err := s.db.Query("SELECT path, song_id, week, reason FROM SkippedFragment ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("querying skipped fragments: %w", err)
	}
	defer rows.Close()

	var results []panel.Skipped
	for rows.Next() {
		var sk panel.Skipped
		if err := rows.Scan(&sk.Path, &sk.SongID, &sk.Week, &sk.Reason); err != nil {
			return nil, err
		}
		results = append(results, sk)
	}
	return results, rows.Err()
}
