package analysis

import (
	"fmt"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

// Tables render a result slice as a header and string rows for CSV export
// and terminal output.

type SongTable []SongMetric
type CityTable []CityMetric
type CategoryTable []CategoryMetric
type AdoptionTable []SongAdoption
type StickinessTable []StickinessRow
type StickinessSummaryTable []StickinessSummary
type RatioTable []ListenerRatioRow
type VelocityTable []VelocityRow
type LapsedTable []LapsedCity
type ListenersTable []CityListeners

func (t SongTable) Header() []string {
	return []string{"city", "song", "song_id", "release_date", "peak_date", "peak_streams", "peak_listeners",
		"weeks_to_peak", "weeks_to_adopt", "is_still_growing", "peaked_first_week", "total_streams"}
}

func (t SongTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, m := range t {
		rows = append(rows, []string{m.City, m.Song, m.SongID, formatDate(m.ReleaseDate), formatDate(m.PeakDate),
			formatInt(m.PeakStreams), formatInt(m.PeakListeners), formatOptional(m.WeeksToPeak),
			formatOptional(m.WeeksToAdopt), strconv.FormatBool(m.StillGrowing), strconv.FormatBool(m.PeakedFirstWeek),
			formatInt(m.TotalStreams)})
	}
	return rows
}

func (t CityTable) Header() []string {
	return []string{"city", "avg_weeks_to_peak", "peak_streams", "peak_weekly_listeners", "songs_analyzed",
		"songs_peaked_first_week", "pct_peaked_first_week", "songs_missing_release_date", "songs_still_growing",
		"total_streams", "consistency_score", "avg_weekly_streams_per_listener", "avg_weeks_to_adopt", "category"}
}

func (t CityTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, c := range t {
		rows = append(rows, []string{c.City, formatOptional(c.AvgWeeksToPeak), formatInt(c.PeakStreams),
			formatInt(c.PeakWeeklyListeners), strconv.Itoa(c.SongsAnalyzed), strconv.Itoa(c.SongsPeakedFirstWeek),
			formatFloat(c.PctPeakedFirstWeek), strconv.Itoa(c.SongsMissingReleaseDate), strconv.Itoa(c.SongsStillGrowing),
			formatInt(c.TotalStreams), formatFloat(c.ConsistencyScore), formatFloat(c.AvgWeeklyStreamsPerListener),
			formatOptional(c.AvgWeeksToAdopt), c.Category})
	}
	return rows
}

// ParseCityTable reads rows written by CityTable back into metrics. The
// header row is expected first.
func ParseCityTable(records [][]string) ([]CityMetric, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no header")
	}
	if len(records[0]) != len(CityTable{}.Header()) {
		return nil, fmt.Errorf("header has %d columns, want %d", len(records[0]), len(CityTable{}.Header()))
	}
	var out []CityMetric
	for i, rec := range records[1:] {
		if len(rec) != len(records[0]) {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i+1, len(rec), len(records[0]))
		}
		p := parser{record: rec}
		c := CityMetric{
			City:                        rec[0],
			AvgWeeksToPeak:              p.parseOptional(1),
			PeakStreams:                 p.parseInt(2),
			PeakWeeklyListeners:         p.parseInt(3),
			SongsAnalyzed:               int(p.parseInt(4)),
			SongsPeakedFirstWeek:        int(p.parseInt(5)),
			PctPeakedFirstWeek:          p.parseFloat(6),
			SongsMissingReleaseDate:     int(p.parseInt(7)),
			SongsStillGrowing:           int(p.parseInt(8)),
			TotalStreams:                p.parseInt(9),
			ConsistencyScore:            p.parseFloat(10),
			AvgWeeklyStreamsPerListener: p.parseFloat(11),
			AvgWeeksToAdopt:             p.parseOptional(12),
			Category:                    rec[13],
		}
		if p.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, p.err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (t CategoryTable) Header() []string {
	return []string{"category", "num_cities", "avg_streams", "avg_consistency", "avg_weeks_to_adopt"}
}

func (t CategoryTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, c := range t {
		rows = append(rows, []string{c.Category, strconv.Itoa(c.NumCities), formatFloat(c.AvgStreams),
			formatFloat(c.AvgConsistency), formatOptional(c.AvgWeeksToAdopt)})
	}
	return rows
}

func (t AdoptionTable) Header() []string {
	return []string{"song", "song_id", "release_date", "peak_date", "peak_streams", "weeks_to_peak", "weeks_to_adopt",
		"is_still_growing", "peaked_first_week", "total_streams", "avg_weekly_streams", "peak_weekly_listeners",
		"avg_weekly_listeners", "avg_weekly_streams_per_listener", "total_cities", "active_cities",
		"avg_streams_per_city", "peak_to_total_ratio", "consistency_score", "avg_post_peak_streams", "adoption_category"}
}

func (t AdoptionTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, a := range t {
		rows = append(rows, []string{a.Song, a.SongID, formatDate(a.ReleaseDate), formatDate(a.PeakDate),
			formatInt(a.PeakStreams), formatOptional(a.WeeksToPeak), formatOptional(a.WeeksToAdopt),
			strconv.FormatBool(a.StillGrowing), strconv.FormatBool(a.PeakedFirstWeek), formatInt(a.TotalStreams),
			formatFloat(a.AvgWeeklyStreams), formatInt(a.PeakWeeklyListeners), formatFloat(a.AvgWeeklyListeners),
			formatFloat(a.AvgWeeklyStreamsPerListener), strconv.Itoa(a.TotalCities), strconv.Itoa(a.ActiveCities),
			formatFloat(a.AvgStreamsPerCity), formatFloat(a.PeakToTotalRatio), formatFloat(a.ConsistencyScore),
			formatFloat(a.AvgPostPeakStreams), a.AdoptionCategory})
	}
	return rows
}

func (t StickinessTable) Header() []string {
	return []string{"song", "song_id", "city", "week", "wau_listeners", "mau_listeners", "stickiness_ratio",
		"release_date", "weeks_since_release"}
}

func (t StickinessTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, s := range t {
		rows = append(rows, []string{s.Song, s.SongID, s.City, formatDate(s.Week), formatInt(s.WAUListeners),
			formatInt(s.MAUListeners), formatFloat(s.StickinessRatio), formatDate(s.ReleaseDate),
			formatFloat(s.WeeksSinceRelease)})
	}
	return rows
}

func (t StickinessSummaryTable) Header() []string {
	return []string{"song", "song_id", "mean", "median", "min", "max", "std"}
}

func (t StickinessSummaryTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, s := range t {
		rows = append(rows, []string{s.Song, s.SongID, formatFloat(s.Mean), formatFloat(s.Median),
			formatFloat(s.Min), formatFloat(s.Max), formatFloat(s.Std)})
	}
	return rows
}

func (t RatioTable) Header() []string {
	return []string{"song", "song_id", "city", "week", "song_listeners", "artist_listeners", "listener_ratio",
		"release_date", "weeks_since_release"}
}

func (t RatioTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{r.Song, r.SongID, r.City, formatDate(r.Week), formatInt(r.SongListeners),
			formatInt(r.ArtistListeners), formatFloat(r.ListenerRatio), formatDate(r.ReleaseDate),
			formatFloat(r.WeeksSinceRelease)})
	}
	return rows
}

func (t VelocityTable) Header() []string {
	return []string{"city", "song", "song_id", "level", "measure", "period_type", "week", "current_period",
		"delta", "pct_delta"}
}

func (t VelocityTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, v := range t {
		delta := ""
		if v.Delta != nil {
			delta = formatInt(*v.Delta)
		}
		rows = append(rows, []string{v.City, v.Song, v.SongID, v.Level, v.Measure, v.PeriodType, formatDate(v.Week),
			formatInt(v.CurrentPeriod), delta, formatOptional(v.PctDelta)})
	}
	return rows
}

func (t LapsedTable) Header() []string {
	return []string{"band", "city", "song", "song_id", "total_streams", "first_active", "last_active", "weeks_since_last"}
}

func (t LapsedTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, c := range t {
		rows = append(rows, []string{c.Band, c.City, c.Song, c.SongID, formatInt(c.TotalStreams),
			formatDate(c.FirstActive), formatDate(c.LastActive), formatFloat(c.WeeksSinceLast)})
	}
	return rows
}

func (t ListenersTable) Header() []string {
	return []string{"city", "avg_monthly_listeners"}
}

func (t ListenersTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, c := range t {
		rows = append(rows, []string{c.City, formatFloat(c.AvgMonthlyListeners)})
	}
	return rows
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// parser keeps the first conversion error.
type parser struct {
	record []string
	err    error
}

func (p *parser) parseInt(i int) int64 {
	n, err := strconv.ParseInt(p.record[i], 10, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %d: %w", i, err)
	}
	return n
}

func (p *parser) parseFloat(i int) float64 {
	f, err := strconv.ParseFloat(p.record[i], 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %d: %w", i, err)
	}
	return f
}

func (p *parser) parseOptional(i int) *float64 {
	if p.record[i] == "" {
		return nil
	}
	f := p.parseFloat(i)
	return &f
}
