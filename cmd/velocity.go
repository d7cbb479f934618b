/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ademuri/song-velocity/internal/analysis"
	"github.com/ademuri/song-velocity/internal/export"
	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/spf13/cobra"
)

var velocitySong string
var velocityCity string
var velocityMeasure string
var velocityNumber int

var velocityCmd = &cobra.Command{
	Use:   "velocity [from] [to (optional)]",
	Short: "Computes week-over-week change for every city and song",
	Long: `Without dates every week is used. Date strings look like 'yyyy', 'yyyy-mm',
'yyyy-mm-dd', or a duration before today like '12w'.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printVelocity(args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(velocityCmd)

	velocityCmd.Flags().StringVar(&velocitySong, "song", "", "only this song id")
	velocityCmd.Flags().StringVar(&velocityCity, "city", "", "only this city")
	velocityCmd.Flags().StringVar(&velocityMeasure, "measure", "", "only this measure: plays or listeners")
	velocityCmd.Flags().IntVarP(&velocityNumber, "number", "n", 20, "number of rows to show")
}

func printVelocity(args []string) error {
	v := VelocityAnalyzer{Song: velocitySong, City: velocityCity, Config: AnalyserConfig{velocityNumber}}
	if velocityMeasure != "" {
		m, err := panel.ParseMeasure(velocityMeasure)
		if err != nil {
			return err
		}
		v.Measure = m
	}
	if len(args) > 0 {
		start, end, err := parseDateRangeFromArgs(args)
		if err != nil {
			return err
		}
		v.Start, v.End = start, end
	}
	return runAnalyser(os.Stdout, v)
}

type VelocityAnalyzer struct {
	Song    string
	City    string
	Measure panel.Measure
	// Weeks in [Start, End) are kept when End is set.
	Start  time.Time
	End    time.Time
	Config AnalyserConfig
}

func (v *VelocityAnalyzer) Configure(params map[string]string) error {
	if val, ok := params["measure"]; ok {
		m, err := panel.ParseMeasure(val)
		if err != nil {
			return err
		}
		v.Measure = m
	}
	v.Song = params["song"]
	v.City = params["city"]
	return configureNumber(params, &v.Config)
}

func (v VelocityAnalyzer) GetName() string {
	return "Velocity"
}

func (v VelocityAnalyzer) keep(r panel.Row) bool {
	if v.Song != "" && r.SongID != v.Song {
		return false
	}
	if v.City != "" && r.City != v.City {
		return false
	}
	if v.Measure != "" && r.Measure != v.Measure {
		return false
	}
	if !v.End.IsZero() && (r.Week.Before(v.Start) || !r.Week.Before(v.End)) {
		return false
	}
	return true
}

func (v VelocityAnalyzer) GetResults(p panel.Panel) (Analysis, error) {
	var a Analysis
	rows := analysis.Velocity(p.Filter(v.keep))
	if len(rows) == 0 {
		a.summary = "No rows matched."
		return a, nil
	}

	a.results = [][]string{{"City", "Song", "Measure", "Period", "Week", "Current", "Delta", "% Delta"}}
	for i, r := range rows {
		if v.Config.NumToReturn > 0 && i >= v.Config.NumToReturn {
			break
		}
		delta, pct := "-", "-"
		if r.Delta != nil {
			delta = strconv.FormatInt(*r.Delta, 10)
		}
		if r.PctDelta != nil {
			pct = strconv.FormatFloat(*r.PctDelta, 'f', 1, 64) + "%"
		}
		a.results = append(a.results, []string{
			r.City, r.Song, r.Measure, r.PeriodType, r.Week.Format("2006-01-02"),
			strconv.FormatInt(r.CurrentPeriod, 10), delta, pct,
		})
	}
	a.summary = fmt.Sprintf("Computed %d points of week-over-week change.", len(rows))
	a.exports = []exportTable{{export.SongVelocity, analysis.VelocityTable(rows)}}
	return a, nil
}
