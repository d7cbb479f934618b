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

var stickinessCmd = &cobra.Command{
	Use:   "stickiness",
	Short: "Computes weekly over monthly listener stickiness",
	Long: `Divides each city's weekly listeners by its listeners for the same calendar
month. Weeks in the current, incomplete month are left out.`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := newEngine()
		if err == nil {
			err = runAnalyser(os.Stdout, StickinessAnalyzer{Engine: engine})
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(stickinessCmd)
}

type StickinessAnalyzer struct {
	Engine *analysis.Engine
}

func (s StickinessAnalyzer) GetName() string {
	return "Stickiness"
}

func (s StickinessAnalyzer) GetResults(p panel.Panel) (Analysis, error) {
	var a Analysis
	rows, missing := s.Engine.Stickiness(p)
	if len(rows) == 0 {
		a.summary = "No weeks had both weekly and monthly listener data."
		if missing > 0 {
			a.summary += fmt.Sprintf(" %d songs were missing a release date.", missing)
		}
		return a, nil
	}

	summaries := analysis.StickinessSummaries(rows)
	a.results = [][]string{{"Song", "Mean", "Median", "Min", "Max", "Std"}}
	for _, sum := range summaries {
		a.results = append(a.results, []string{
			sum.Song,
			strconv.FormatFloat(sum.Mean, 'f', 2, 64),
			strconv.FormatFloat(sum.Median, 'f', 2, 64),
			strconv.FormatFloat(sum.Min, 'f', 2, 64),
			strconv.FormatFloat(sum.Max, 'f', 2, 64),
			strconv.FormatFloat(sum.Std, 'f', 2, 64),
		})
	}
	a.summary = fmt.Sprintf("Computed %d city weeks of stickiness for %d songs.", len(rows), len(summaries))
	a.exports = []exportTable{
		{export.SongStickiness, analysis.StickinessTable(rows)},
		{export.StickinessSummary, analysis.StickinessSummaryTable(summaries)},
	}
	return a, nil
}
