package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var reportTopN int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generates a YAML report of every metric",
	Long:  `Runs the peak, adoption, stickiness and listener ratio analyses over the panel and writes them as one YAML document.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVarP(&reportTopN, "number", "n", 20, "number of top cities to include")
}

func runReport(out io.Writer) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	p, err := loadPanel(viper.GetString("source"))
	if err != nil {
		return fmt.Errorf("loading panel: %w", err)
	}

	report := engine.GenerateReport(p, reportTopN)

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	err = encoder.Encode(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return encoder.Close()
}
