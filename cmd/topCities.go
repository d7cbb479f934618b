package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ademuri/song-velocity/internal/analysis"
	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/ademuri/song-velocity/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var topCitiesNumber int
var topCitiesMeasure string
var topCitiesFromDb bool

var topCitiesCmd = &cobra.Command{
	Use:   "top-cities",
	Short: "Gets the artist's top cities",
	Long: `Ranks cities by mean monthly artist listeners. With --from_db, ranks them by
total weekly song-level streams in the SQLite snapshot instead.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		if topCitiesFromDb {
			err = printTopCitiesFromDb(viper.GetString("database"), topCitiesMeasure, topCitiesNumber)
		} else {
			err = runAnalyser(os.Stdout, TopCitiesAnalyzer{Config: AnalyserConfig{topCitiesNumber}})
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topCitiesCmd)

	topCitiesCmd.Flags().IntVarP(&topCitiesNumber, "number", "n", 10, "number of results to return")
	topCitiesCmd.Flags().StringVar(&topCitiesMeasure, "measure", string(panel.MeasurePlays), "measure to rank by with --from_db")
	topCitiesCmd.Flags().BoolVar(&topCitiesFromDb, "from_db", false, "rank by streams in the SQLite snapshot")
}

type TopCitiesAnalyzer struct {
	Config AnalyserConfig
}

func (t *TopCitiesAnalyzer) Configure(params map[string]string) error {
	return configureNumber(params, &t.Config)
}

func (t TopCitiesAnalyzer) GetName() string {
	return "Top cities"
}

func (t TopCitiesAnalyzer) GetResults(p panel.Panel) (Analysis, error) {
	cities := analysis.TopCitiesByMonthlyListeners(p, t.Config.NumToReturn)
	if len(cities) == 0 {
		return Analysis{summary: "No monthly artist listener rows found."}, nil
	}

	a := newAnalysis(analysis.ListenersTable(cities), t.Config)
	a.summary = fmt.Sprintf("Top %d cities by average monthly listeners", len(cities))
	return a, nil
}

func printTopCitiesFromDb(dbPath string, measure string, numToReturn int) error {
	m, err := panel.ParseMeasure(measure)
	if err != nil {
		return err
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("printTopCitiesFromDb: %w", err)
	}
	defer db.Close()

	if numToReturn <= 0 {
		numToReturn = -1
	}
	counts, err := db.GetTopCitiesWithCount(string(m), numToReturn)
	if err != nil {
		return fmt.Errorf("printTopCitiesFromDb: %w", err)
	}

	var a Analysis
	a.results = [][]string{{"City", "Total " + string(m)}}
	var total int64
	for _, c := range counts {
		a.results = append(a.results, []string{c.City, strconv.FormatInt(c.Count, 10)})
		total += c.Count
	}
	a.summary = fmt.Sprintf("Found %d cities and %d %s", len(counts), total, m)
	fmt.Print(a)
	return nil
}
