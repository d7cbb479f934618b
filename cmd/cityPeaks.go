package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ademuri/song-velocity/internal/analysis"
	"github.com/ademuri/song-velocity/internal/export"
	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/spf13/cobra"
)

var cityPeaksNumber int
var cityPeaksCmd = &cobra.Command{
	Use:   "city-peaks",
	Short: "Computes per-city peak and adoption timing",
	Long: `For every city and song, finds the peak week and the first week with streams
inside the song's release window, then rolls the results up per city and per
adoption category.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := printCityPeaks(cityPeaksNumber)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(cityPeaksCmd)

	cityPeaksCmd.Flags().IntVarP(&cityPeaksNumber, "number", "n", 20, "number of cities to show")
}

func printCityPeaks(numToReturn int) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	return runAnalyser(os.Stdout, CityPeaksAnalyzer{Engine: engine, Config: AnalyserConfig{numToReturn}})
}

type CityPeaksAnalyzer struct {
	Engine *analysis.Engine
	Config AnalyserConfig
}

func (c *CityPeaksAnalyzer) Configure(params map[string]string) error {
	return configureNumber(params, &c.Config)
}

func (c CityPeaksAnalyzer) GetName() string {
	return "City peaks"
}

func (c CityPeaksAnalyzer) GetResults(p panel.Panel) (Analysis, error) {
	var a Analysis
	threshold := c.Engine.Config().MinStreamsThreshold
	result := c.Engine.CityPeaks(p)
	if len(result.Songs) == 0 {
		a.summary = fmt.Sprintf("No songs had streams inside their release window (%d rows missing a release date).",
			result.MissingReleaseDate)
		return a, nil
	}

	cities, categories := analysis.Summarize(result.Cities, threshold)
	if len(cities) == 0 {
		a.summary = fmt.Sprintf("No cities qualified with at least %d total streams.", threshold)
		return a, nil
	}

	a.results = [][]string{{"City", "Category", "Total Streams", "Peak Streams", "Weeks to Peak", "Weeks to Adopt", "Consistency"}}
	for i, city := range cities {
		if c.Config.NumToReturn > 0 && i >= c.Config.NumToReturn {
			break
		}
		a.results = append(a.results, []string{
			city.City,
			city.Category,
			strconv.FormatInt(city.TotalStreams, 10),
			strconv.FormatInt(city.PeakStreams, 10),
			formatWeeks(city.AvgWeeksToPeak),
			formatWeeks(city.AvgWeeksToAdopt),
			strconv.FormatFloat(city.ConsistencyScore, 'f', 1, 64) + "%",
		})
	}

	a.summary = fmt.Sprintf("Found %d song and city pairs in %d cities; %d cities have at least %d streams. %d rows were missing a release date.",
		len(result.Songs), len(result.Cities), len(cities), threshold, result.MissingReleaseDate)
	for _, cat := range categories {
		a.summary += fmt.Sprintf("\n  %s: %d cities, %.0f average streams", cat.Category, cat.NumCities, cat.AvgStreams)
	}

	a.exports = []exportTable{
		{export.CityPeakMetrics, analysis.CityTable(cities)},
		{export.SongPeakMetrics, analysis.SongTable(result.Songs)},
		{export.CategoryMetrics, analysis.CategoryTable(categories)},
	}
	return a, nil
}

func formatWeeks(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
