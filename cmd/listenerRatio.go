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

var listenerRatioNumber int
var listenerRatioCmd = &cobra.Command{
	Use:   "listener-ratio",
	Short: "Computes each song's share of the artist's weekly listeners",
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := newEngine()
		if err == nil {
			err = runAnalyser(os.Stdout, ListenerRatioAnalyzer{Engine: engine, Config: AnalyserConfig{listenerRatioNumber}})
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenerRatioCmd)

	listenerRatioCmd.Flags().IntVarP(&listenerRatioNumber, "number", "n", 20, "number of rows to show")
}

type ListenerRatioAnalyzer struct {
	Engine *analysis.Engine
	Config AnalyserConfig
}

func (l *ListenerRatioAnalyzer) Configure(params map[string]string) error {
	return configureNumber(params, &l.Config)
}

func (l ListenerRatioAnalyzer) GetName() string {
	return "Song to artist listener ratio"
}

func (l ListenerRatioAnalyzer) GetResults(p panel.Panel) (Analysis, error) {
	var a Analysis
	rows, missing := l.Engine.ListenerRatios(p)
	if len(rows) == 0 {
		a.summary = "No weeks had both song and artist listener data."
		return a, nil
	}

	a.results = [][]string{{"Song", "City", "Week", "Song Listeners", "Artist Listeners", "Ratio"}}
	for i, r := range rows {
		if l.Config.NumToReturn > 0 && i >= l.Config.NumToReturn {
			break
		}
		a.results = append(a.results, []string{
			r.Song,
			r.City,
			r.Week.Format("2006-01-02"),
			strconv.FormatInt(r.SongListeners, 10),
			strconv.FormatInt(r.ArtistListeners, 10),
			strconv.FormatFloat(r.ListenerRatio, 'f', 1, 64) + "%",
		})
	}
	a.summary = fmt.Sprintf("Computed %d ratios; %d songs were missing a release date.", len(rows), missing)
	a.exports = []exportTable{{export.SongArtistListenerRatio, analysis.RatioTable(rows)}}
	return a, nil
}
