package cmd

import (
	"fmt"
	"html"
	"os"
	"strconv"
	"strings"

	"github.com/ademuri/song-velocity/internal/analysis"
	"github.com/ademuri/song-velocity/internal/export"
	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	quietWeeks     int
	resultsPerBand int
	sortBy         string
)

var lapsedCmd = &cobra.Command{
	Use:   "lapsed",
	Short: "Surfaces cities that streamed a song heavily and then went quiet",
	Long:  `Groups (city, song) pairs with no streams in the trailing weeks by how much they streamed before.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := printLapsed()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(lapsedCmd)

	lapsedCmd.Flags().IntVar(&quietWeeks, "quiet_weeks", 4, "Weeks without streams before a city counts as lapsed")
	lapsedCmd.Flags().IntVar(&resultsPerBand, "results", 10, "Max results shown per interest band")
	lapsedCmd.Flags().StringVar(&sortBy, "sort", "dormancy", "Sort order: 'dormancy' or 'streams'")
}

type LapsedAnalyzer struct {
	Config analysis.LapsedConfig
}

func (l *LapsedAnalyzer) Configure(params map[string]string) error {
	l.Config = analysis.LapsedConfig{QuietWeeks: 4, ResultsPerBand: 10, SortBy: "dormancy"}

	if val, ok := params["quiet_weeks"]; ok {
		v, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid quiet_weeks: %w", err)
		}
		l.Config.QuietWeeks = v
	}
	if val, ok := params["results"]; ok {
		v, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid results: %w", err)
		}
		l.Config.ResultsPerBand = v
	}
	if val, ok := params["sort"]; ok {
		l.Config.SortBy = val
	}
	return nil
}

func (l *LapsedAnalyzer) GetName() string {
	return "Lapsed cities"
}

func (l *LapsedAnalyzer) GetResults(p panel.Panel) (Analysis, error) {
	var a Analysis
	if l.Config.QuietWeeks == 0 {
		l.Config.QuietWeeks = 4
	}
	bands := analysis.LapsedCities(p, l.Config)

	var all []analysis.LapsedCity
	var sb strings.Builder
	for _, band := range analysis.Bands {
		all = append(all, bands[band]...)
		sb.WriteString(formatBandHTML(bands, band))
	}
	if len(all) == 0 {
		a.summary = fmt.Sprintf("No cities have gone quiet for %d weeks.", l.Config.QuietWeeks)
		return a, nil
	}

	a.BodyOverride = "<h3>Lapsed Cities</h3>" + sb.String()
	a.summary = fmt.Sprintf("Found %d lapsed cities.", len(all))
	a.exports = []exportTable{{export.LapsedCities, analysis.LapsedTable(all)}}
	return a, nil
}

func formatBandHTML(results map[string][]analysis.LapsedCity, band string) string {
	items, ok := results[band]
	if !ok || len(items) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h4>%s (%d+ streams)</h4>", band, analysis.BandThreshold(band)))
	sb.WriteString("<table><thead><tr><th>City</th><th>Song</th><th>Streams</th><th>Last Active</th></tr></thead><tbody>")
	for _, c := range items {
		sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(c.City), html.EscapeString(c.Song), c.TotalStreams, c.LastActive.Format("2006-01-02")))
	}
	sb.WriteString("</tbody></table>")
	return sb.String()
}

func printLapsed() error {
	p, err := loadPanel(viper.GetString("source"))
	if err != nil {
		return fmt.Errorf("loading panel: %w", err)
	}

	l := &LapsedAnalyzer{Config: analysis.LapsedConfig{
		QuietWeeks:     quietWeeks,
		ResultsPerBand: resultsPerBand,
		SortBy:         sortBy,
	}}
	result, err := l.GetResults(p)
	if err != nil {
		return err
	}
	if result.Empty() {
		fmt.Println(result.summary)
		return nil
	}

	bands := analysis.LapsedCities(p, l.Config)
	for _, band := range analysis.Bands {
		printBand(bands, band)
	}
	fmt.Println()
	fmt.Println(result.summary)
	return result.Export(export.NewWriter(viper.GetString("output_dir")), os.Stdout)
}

func printBand(results map[string][]analysis.LapsedCity, band string) {
	items, ok := results[band]
	if !ok || len(items) == 0 {
		return
	}

	fmt.Printf("\n### %s (%d+ streams)\n", band, analysis.BandThreshold(band))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"City", "Song", "Streams", "Last Active", "Weeks Quiet"})

	for _, c := range items {
		table.Append(truncateRow([]string{
			c.City,
			c.Song,
			strconv.FormatInt(c.TotalStreams, 10),
			c.LastActive.Format("2006-01-02"),
			strconv.FormatFloat(c.WeeksSinceLast, 'f', 1, 64),
		}))
	}
	table.Render()
}
