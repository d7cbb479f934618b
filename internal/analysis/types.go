package analysis

import "time"

// SongMetric is the peak and adoption timing of one song in one city.
type SongMetric struct {
	City            string    `yaml:"city"`
	Song            string    `yaml:"song"`
	SongID          string    `yaml:"song_id"`
	ReleaseDate     time.Time `yaml:"release_date"`
	PeakDate        time.Time `yaml:"peak_date"`
	PeakStreams     int64     `yaml:"peak_streams"`
	PeakListeners   int64     `yaml:"peak_listeners"`
	WeeksToPeak     *float64  `yaml:"weeks_to_peak"`
	WeeksToAdopt    *float64  `yaml:"weeks_to_adopt"`
	StillGrowing    bool      `yaml:"is_still_growing"`
	PeakedFirstWeek bool      `yaml:"peaked_first_week"`
	TotalStreams    int64     `yaml:"total_streams"`

	activeWeeks int
	totalWeeks  int
}

type CityMetric struct {
	City                        string   `yaml:"city"`
	AvgWeeksToPeak              *float64 `yaml:"avg_weeks_to_peak"`
	PeakStreams                 int64    `yaml:"peak_streams"`
	PeakWeeklyListeners         int64    `yaml:"peak_weekly_listeners"`
	SongsAnalyzed               int      `yaml:"songs_analyzed"`
	SongsPeakedFirstWeek        int      `yaml:"songs_peaked_first_week"`
	PctPeakedFirstWeek          float64  `yaml:"pct_peaked_first_week"`
	SongsMissingReleaseDate     int      `yaml:"songs_missing_release_date"`
	SongsStillGrowing           int      `yaml:"songs_still_growing"`
	TotalStreams                int64    `yaml:"total_streams"`
	ConsistencyScore            float64  `yaml:"consistency_score"`
	AvgWeeklyStreamsPerListener float64  `yaml:"avg_weekly_streams_per_listener"`
	AvgWeeksToAdopt             *float64 `yaml:"avg_weeks_to_adopt"`
	Category                    string   `yaml:"category"`
}

type CategoryMetric struct {
	Category        string   `yaml:"category"`
	NumCities       int      `yaml:"num_cities"`
	AvgStreams      float64  `yaml:"avg_streams"`
	AvgConsistency  float64  `yaml:"avg_consistency"`
	AvgWeeksToAdopt *float64 `yaml:"avg_weeks_to_adopt"`
}

// PeakResult holds the per-song and per-city peak tables.
type PeakResult struct {
	Songs              []SongMetric
	Cities             []CityMetric
	MissingReleaseDate int
}

// SongAdoption is a song's overall adoption, taken from the All Cities rows.
type SongAdoption struct {
	Song                        string    `yaml:"song"`
	SongID                      string    `yaml:"song_id"`
	ReleaseDate                 time.Time `yaml:"release_date"`
	PeakDate                    time.Time `yaml:"peak_date"`
	PeakStreams                 int64     `yaml:"peak_streams"`
	WeeksToPeak                 *float64  `yaml:"weeks_to_peak"`
	WeeksToAdopt                *float64  `yaml:"weeks_to_adopt"`
	StillGrowing                bool      `yaml:"is_still_growing"`
	PeakedFirstWeek             bool      `yaml:"peaked_first_week"`
	TotalStreams                int64     `yaml:"total_streams"`
	AvgWeeklyStreams            float64   `yaml:"avg_weekly_streams"`
	PeakWeeklyListeners         int64     `yaml:"peak_weekly_listeners"`
	AvgWeeklyListeners          float64   `yaml:"avg_weekly_listeners"`
	AvgWeeklyStreamsPerListener float64   `yaml:"avg_weekly_streams_per_listener"`
	TotalCities                 int       `yaml:"total_cities"`
	ActiveCities                int       `yaml:"active_cities"`
	AvgStreamsPerCity           float64   `yaml:"avg_streams_per_city"`
	PeakToTotalRatio            float64   `yaml:"peak_to_total_ratio"`
	ConsistencyScore            float64   `yaml:"consistency_score"`
	AvgPostPeakStreams          float64   `yaml:"avg_post_peak_streams"`
	AdoptionCategory            string    `yaml:"adoption_category"`
}

type StickinessRow struct {
	Song              string    `yaml:"song"`
	SongID            string    `yaml:"song_id"`
	City              string    `yaml:"city"`
	Week              time.Time `yaml:"week"`
	WAUListeners      int64     `yaml:"wau_listeners"`
	MAUListeners      int64     `yaml:"mau_listeners"`
	StickinessRatio   float64   `yaml:"stickiness_ratio"`
	ReleaseDate       time.Time `yaml:"release_date"`
	WeeksSinceRelease float64   `yaml:"weeks_since_release"`
}

type StickinessSummary struct {
	Song   string  `yaml:"song"`
	SongID string  `yaml:"song_id"`
	Mean   float64 `yaml:"mean"`
	Median float64 `yaml:"median"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Std    float64 `yaml:"std"`
}

type ListenerRatioRow struct {
	Song              string    `yaml:"song"`
	SongID            string    `yaml:"song_id"`
	City              string    `yaml:"city"`
	Week              time.Time `yaml:"week"`
	SongListeners     int64     `yaml:"song_listeners"`
	ArtistListeners   int64     `yaml:"artist_listeners"`
	ListenerRatio     float64   `yaml:"listener_ratio"`
	ReleaseDate       time.Time `yaml:"release_date"`
	WeeksSinceRelease float64   `yaml:"weeks_since_release"`
}

type CityListeners struct {
	City                string  `yaml:"city"`
	AvgMonthlyListeners float64 `yaml:"avg_monthly_listeners"`
}

type VelocityRow struct {
	City          string    `yaml:"city"`
	Song          string    `yaml:"song"`
	SongID        string    `yaml:"song_id"`
	Level         string    `yaml:"level"`
	Measure       string    `yaml:"measure"`
	PeriodType    string    `yaml:"period_type"`
	Week          time.Time `yaml:"week"`
	CurrentPeriod int64     `yaml:"current_period"`
	Delta         *int64    `yaml:"delta"`
	PctDelta      *float64  `yaml:"pct_delta"`
}

// Report is the top-level structure of the YAML report.
type Report struct {
	Metadata     ReportMetadata      `yaml:"metadata"`
	Songs        []SongAdoption      `yaml:"songs"`
	Categories   []CategoryMetric    `yaml:"categories"`
	TopCities    []CityMetric        `yaml:"top_cities"`
	Stickiness   []StickinessSummary `yaml:"stickiness"`
	TopListeners []CityListeners     `yaml:"top_cities_by_monthly_listeners,omitempty"`
	Lapsed       []LapsedCity        `yaml:"lapsed_cities,omitempty"`
}

type ReportMetadata struct {
	GeneratedDate      string `yaml:"generated_date"`
	FirstWeek          string `yaml:"first_week"`
	LatestWeek         string `yaml:"latest_week"`
	Rows               int    `yaml:"rows"`
	Cities             int    `yaml:"cities"`
	SongsAnalyzed      int    `yaml:"songs_analyzed"`
	MissingReleaseDate int    `yaml:"missing_release_date"`
	MinStreams         int64  `yaml:"min_streams"`
	WindowWeeks        int    `yaml:"window_weeks"`
}
