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
	"html"
	"os"
	"strings"

	"github.com/ademuri/song-velocity/internal/analysis"
	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type SendEmailConfig struct {
	From       string
	To         string
	Artist     string
	ReportName string
	Types      []string
	Params     []map[string]string
	DryRun     bool
	APIKey     string
}

var emailCmd = &cobra.Command{
	Use:   "email <address> <analysis_name...>",
	Short: "Sends an email report",
	Long: `Emails the chosen analyses of the current panel to the given address.
  <analysis_name> is one or more of: city-peaks, song-adoption, stickiness, listener-ratio, velocity, lapsed, top-cities.`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		analysisTypes := args[1:]

		params, _ := cmd.Flags().GetStringArray("params")
		if len(params) > 0 && len(params) != len(analysisTypes) {
			fmt.Printf("Error: Number of --params flags (%d) must match number of reports (%d), or be 0.\n", len(params), len(analysisTypes))
			os.Exit(1)
		}

		config := SendEmailConfig{
			From:       viper.GetString("from"),
			To:         args[0],
			Artist:     viper.GetString("artist_name"),
			ReportName: viper.GetString("name"),
			Types:      analysisTypes,
			Params:     parseParams(params, len(analysisTypes)),
			DryRun:     viper.GetBool("dryRun"),
			APIKey:     viper.GetString("sendgrid_api_key"),
		}
		err := sendEmail(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	var from string
	emailCmd.Flags().StringVar(&from, "from", "", "Sender address")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))

	var name string
	emailCmd.Flags().StringVar(&name, "name", "", "Report name added to the subject")
	viper.BindPFlag("name", emailCmd.Flags().Lookup("name"))

	emailCmd.Flags().StringArray("params", nil, "Parameters for reports, matched by index (e.g. --params 'n=20')")
}

// parseParams turns each "k=v,k=v" flag value into a map.
func parseParams(params []string, n int) []map[string]string {
	structured := make([]map[string]string, n)
	for i, v := range params {
		pMap := make(map[string]string)
		if v != "" {
			for _, pair := range strings.Split(v, ",") {
				kv := strings.SplitN(pair, "=", 2)
				if len(kv) == 2 {
					pMap[kv[0]] = kv[1]
				}
			}
		}
		structured[i] = pMap
	}
	return structured
}

func sendEmail(config SendEmailConfig) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	actions := make([]Analyser, 0)
	for i, actionName := range config.Types {
		action, err := getActionFromName(actionName, engine)
		if err != nil {
			return err
		}

		if i < len(config.Params) && len(config.Params[i]) > 0 {
			if configurable, ok := action.(Configurable); ok {
				err := configurable.Configure(config.Params[i])
				if err != nil {
					return fmt.Errorf("configuring %s (index %d): %w", actionName, i, err)
				}
			}
		}

		actions = append(actions, action)
	}

	p, err := loadPanel(viper.GetString("source"))
	if err != nil {
		return fmt.Errorf("loading panel: %w", err)
	}
	subject, out, err := generateEmailContent(config, p, actions)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}
	if config.APIKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	from := mail.NewEmail("song-velocity", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, subject, out)
	client := sendgrid.NewSendClient(config.APIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: status %d: %s", response.StatusCode, response.Body)
	}
	logger.Info().Str("to", config.To).Int("analyses", len(actions)).Msg("sent email report")
	return nil
}

// weekRange returns the first and last week in p.
func weekRange(p panel.Panel) (first string, last string) {
	if len(p) == 0 {
		return "", ""
	}
	lo, hi := p[0].Week, p[0].Week
	for _, r := range p[1:] {
		if r.Week.Before(lo) {
			lo = r.Week
		}
		if r.Week.After(hi) {
			hi = r.Week
		}
	}
	return lo.Format("2006-01-02"), hi.Format("2006-01-02")
}

func generateEmailContent(config SendEmailConfig, p panel.Panel, actions []Analyser) (subject string, body string, err error) {
	first, last := weekRange(p)

	var out strings.Builder
	out.WriteString(`
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`)
	for _, action := range actions {
		out.WriteString("\t\t<div>\n")
		fmt.Fprintf(&out, "<h2>%s, weeks %s to %s:</h2>\n", action.GetName(), first, last)

		result, err := action.GetResults(p)
		if err != nil {
			return "", "", fmt.Errorf("getting results for %s: %w", action.GetName(), err)
		}

		if result.BodyOverride != "" {
			out.WriteString(result.BodyOverride)
		} else if len(result.results) <= 1 {
			out.WriteString("<div>No rows found.</div>\n")
		} else {
			out.WriteString("\t\t\t<table>\n\t\t\t\t<thead>\n\t\t\t\t\t<tr>\n")
			for _, header := range result.results[0] {
				fmt.Fprintf(&out, "<th>%s</th>", html.EscapeString(header))
			}
			out.WriteString("\t\t\t\t</tr>\n\t\t\t</thead>\n\t\t\t<tbody>\n")

			for _, row := range result.results[1:] {
				out.WriteString("<tr>\n")
				for _, column := range row {
					fmt.Fprintf(&out, "<td>%s</td>\n", html.EscapeString(column))
				}
				out.WriteString("</tr>\n")
			}
			out.WriteString("\t\t\t\t</tbody>\n\t\t\t</table>\n")
		}
		fmt.Fprintf(&out, "<div>%s</div>\n\t\t</div>", html.EscapeString(result.summary))
	}
	out.WriteString("\n  </body>\n</html>\n")

	subjectSuffix := ""
	if len(config.ReportName) > 0 {
		subjectSuffix = ": " + config.ReportName
	}
	artist := config.Artist
	if artist == "" {
		artist = "artist"
	}
	subject = fmt.Sprintf("Streaming report for %s %s to %s%s", artist, first, last, subjectSuffix)

	return subject, out.String(), nil
}

func getActionFromName(actionName string, engine *analysis.Engine) (Analyser, error) {
	// Pointers required for Configure.
	actionMap := map[string]Analyser{
		"city-peaks":     &CityPeaksAnalyzer{Engine: engine, Config: AnalyserConfig{20}},
		"song-adoption":  &SongAdoptionAnalyzer{Engine: engine},
		"stickiness":     &StickinessAnalyzer{Engine: engine},
		"listener-ratio": &ListenerRatioAnalyzer{Engine: engine, Config: AnalyserConfig{20}},
		"velocity":       &VelocityAnalyzer{Config: AnalyserConfig{20}},
		"lapsed":         &LapsedAnalyzer{},
		"top-cities":     &TopCitiesAnalyzer{Config: AnalyserConfig{10}},
	}

	action, ok := actionMap[actionName]
	if !ok {
		return nil, fmt.Errorf("invalid analysis_name: %s", actionName)
	}

	return action, nil
}
