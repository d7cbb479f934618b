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

var songAdoptionCmd = &cobra.Command{
	Use:   "song-adoption",
	Short: "Computes overall adoption and retention per song",
	Long:  `Uses the All Cities rows of each song inside its release window.`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := newEngine()
		if err == nil {
			err = runAnalyser(os.Stdout, SongAdoptionAnalyzer{Engine: engine})
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(songAdoptionCmd)
}

type SongAdoptionAnalyzer struct {
	Engine *analysis.Engine
}

func (s SongAdoptionAnalyzer) GetName() string {
	return "Song adoption"
}

func (s SongAdoptionAnalyzer) GetResults(p panel.Panel) (Analysis, error) {
	var a Analysis
	songs, missing := s.Engine.SongAdoption(p)
	if len(songs) == 0 {
		a.summary = fmt.Sprintf("No songs had All Cities streams inside their release window (%d songs missing a release date).", missing)
		return a, nil
	}

	a.results = [][]string{{"Song", "Released", "Category", "Total Streams", "Peak Week", "Weeks to Adopt", "Active Cities", "Retention"}}
	for _, song := range songs {
		a.results = append(a.results, []string{
			song.Song,
			song.ReleaseDate.Format("2006-01-02"),
			song.AdoptionCategory,
			strconv.FormatInt(song.TotalStreams, 10),
			formatWeeks(song.WeeksToPeak),
			formatWeeks(song.WeeksToAdopt),
			fmt.Sprintf("%d/%d", song.ActiveCities, song.TotalCities),
			strconv.FormatFloat(song.ConsistencyScore, 'f', 1, 64) + "%",
		})
	}
	a.summary = fmt.Sprintf("Analyzed %d songs; %d songs were missing a release date.", len(songs), missing)
	a.exports = []exportTable{{export.SongAdoptionMetrics, analysis.AdoptionTable(songs)}}
	return a, nil
}
