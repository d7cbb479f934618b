package store

import (
	"fmt"
)

type CityCount struct {
	City  string
	Count int64
}

// SliceCount is the number of stored rows for one slice of the panel.
type SliceCount struct {
	PeriodType string
	Measure    string
	Level      string
	Rows       int64
	Weeks      int64
}

// GetTopCitiesWithCount sums current-period values per city for one
// measure of weekly song-level rows.
func (s *Store) GetTopCitiesWithCount(measure string, limit int) ([]CityCount, error) {
	query := `
	SELECT city, SUM(current_period)
	FROM PanelRow
	WHERE measure = ?
	AND level = 'song'
	AND period_type = 'weekly'
	AND city <> 'All Cities'
	GROUP BY city
	ORDER BY SUM(current_period) DESC, city
	LIMIT ?
	`
	rows, err := s.db.Query(query, measure, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top cities: %w", err)
	}
	defer rows.Close()

	var results []CityCount
	for rows.Next() {
		var cc CityCount
		if err := rows.Scan(&cc.City, &cc.Count); err != nil {
			return nil, err
		}
		results = append(results, cc)
	}
	return results, rows.Err()
}

func (s *Store) GetSliceCounts() ([]SliceCount, error) {
	query := `
	SELECT period_type, measure, level, COUNT(*), COUNT(DISTINCT week)
	FROM PanelRow
	GROUP BY period_type, measure, level
	ORDER BY period_type, measure, level
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying slice counts: %w", err)
	}
	defer rows.Close()

	var results []SliceCount
	for rows.Next() {
		var sc SliceCount
		if err := rows.Scan(&sc.PeriodType, &sc.Measure, &sc.Level, &sc.Rows, &sc.Weeks); err != nil {
			return nil, err
		}
		results = append(results, sc)
	}
	return results, rows.Err()
}
