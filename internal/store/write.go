package store

import (
	"fmt"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
)

// SavePanel replaces the stored snapshot with p and records the load.
func (s *Store) SavePanel(p panel.Panel, source string, skipped []panel.Skipped, loadedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM PanelRow"); err != nil {
		return fmt.Errorf("clearing panel: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM SkippedFragment"); err != nil {
		return fmt.Errorf("clearing skipped fragments: %w", err)
	}

	insert, err := tx.Prepare(`
	INSERT INTO PanelRow (city, song, song_id, level, measure, period_type, grouping, week, previous_period, current_period, pct_change)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()

	for _, r := range p {
		_, err := insert.Exec(r.City, r.Song, r.SongID, string(r.Level), string(r.Measure), string(r.PeriodType),
			r.Grouping, r.Week.Format(panel.WeekLayout), r.PreviousPeriod, r.CurrentPeriod, r.PctChange)
		if err != nil {
			return fmt.Errorf("inserting row for %s/%s: %w", r.City, r.SongID, err)
		}
	}

	for _, sk := range skipped {
		_, err := tx.Exec("INSERT OR REPLACE INTO SkippedFragment (path, song_id, week, reason) VALUES (?, ?, ?, ?)",
			sk.Path, sk.SongID, sk.Week, sk.Reason)
		if err != nil {
			return fmt.Errorf("recording skipped fragment %q: %w", sk.Path, err)
		}
	}

	_, err = tx.Exec("INSERT INTO LoadRun (loaded_at, source, rows, skipped) VALUES (?, ?, ?, ?)",
		loadedAt.UTC(), source, len(p), len(skipped))
	if err != nil {
		return fmt.Errorf("recording load: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
