package scrape

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/ademuri/song-velocity/internal/panel"
)

// URLData is the value a dashboard URL template is executed with.
type URLData struct {
	ArtistID   string
	SongID     string
	Level      string
	Measure    string
	PeriodType string
	GroupBy    string
	Period     string
	Start      string
	End        string
}

type URLBuilder struct {
	tmpl     *template.Template
	artistID string
}

func NewURLBuilder(text, artistID string) (*URLBuilder, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty url template")
	}
	tmpl, err := template.New("url").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing url template: %w", err)
	}
	return &URLBuilder{tmpl: tmpl, artistID: artistID}, nil
}

// URL renders the dashboard address of a job. Artist-level jobs have an
// empty SongID.
func (b *URLBuilder) URL(job Job) (string, error) {
	period, err := panel.ParseWeek(job.Key.Period)
	if err != nil {
		return "", err
	}
	data := URLData{
		ArtistID:   b.artistID,
		Level:      string(job.Level),
		Measure:    string(job.Key.Measure),
		PeriodType: string(job.Key.PeriodType),
		GroupBy:    job.Key.GroupBy,
		Period:     job.Key.Period,
		Start:      startOf(job.Key.PeriodType, period).Format("2006-01-02"),
		End:        endOf(job.Key.PeriodType, period).Format("2006-01-02"),
	}
	if job.Level != panel.LevelArtist {
		data.SongID = job.Key.SongID
	}

	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering url for %s: %w", job.Path, err)
	}
	return sb.String(), nil
}
