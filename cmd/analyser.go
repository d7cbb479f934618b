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
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/ademuri/song-velocity/internal/export"
	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
)

// Terminal tables cut longer cells to this many columns.
const maxCellWidth = 32

type exportTable struct {
	kind  string
	table export.Table
}

type Analysis struct {
	results      [][]string
	summary      string
	BodyOverride string

	exports []exportTable
}

type AnalyserConfig struct {
	// Number of results to return, default is all results.
	NumToReturn int
}

type Analyser interface {
	GetResults(p panel.Panel) (Analysis, error)

	GetName() string
}

// Configurable analysers accept key=value parameters from the email command.
type Configurable interface {
	Configure(params map[string]string) error
}

// configureNumber reads the row limit from the "n" parameter.
func configureNumber(params map[string]string, config *AnalyserConfig) error {
	val, ok := params["n"]
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid value for 'n': %w", err)
	}
	config.NumToReturn = n
	return nil
}

// newAnalysis shows the first NumToReturn rows of t.
func newAnalysis(t export.Table, config AnalyserConfig) Analysis {
	rows := t.Rows()
	if config.NumToReturn > 0 && len(rows) > config.NumToReturn {
		rows = rows[:config.NumToReturn]
	}
	return Analysis{results: append([][]string{t.Header()}, rows...)}
}

// Empty reports whether the analysis has no rows to show.
func (a Analysis) Empty() bool {
	return a.BodyOverride == "" && len(a.results) <= 1
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if len(a.results) > 0 {
		table := tablewriter.NewWriter(out)
		table.Header(truncateRow(a.results[0]))
		for _, row := range a.results[1:] {
			if err := table.Append(truncateRow(row)); err != nil {
				return fmt.Sprintf("Error rendering table: %v", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

// Export writes every table attached to the analysis and lists the files.
func (a Analysis) Export(w *export.Writer, out io.Writer) error {
	for _, e := range a.exports {
		path, err := w.Write(e.kind, e.table)
		if err != nil {
			return fmt.Errorf("exporting %s: %w", e.kind, err)
		}
		fmt.Fprintf(out, "Exported %s\n", path)
	}
	return nil
}

func truncateRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = truncate(cell, maxCellWidth)
	}
	return out
}

// truncate shortens text to width display columns, ending in "...".
func truncate(text string, width int) string {
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "...")
}

// runAnalyser prints an analysis of the configured panel and exports its
// tables. An empty analysis prints its summary and exports nothing.
func runAnalyser(out io.Writer, a Analyser) error {
	p, err := loadPanel(viper.GetString("source"))
	if err != nil {
		return fmt.Errorf("loading panel: %w", err)
	}

	result, err := a.GetResults(p)
	if err != nil {
		return fmt.Errorf("%s: %w", a.GetName(), err)
	}
	if result.Empty() {
		fmt.Fprintln(out, result.summary)
		return nil
	}

	fmt.Fprint(out, result)
	return result.Export(export.NewWriter(viper.GetString("output_dir")), out)
}
