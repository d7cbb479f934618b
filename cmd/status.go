package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ademuri/song-velocity/internal/export"
	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/ademuri/song-velocity/internal/registry"
	"github.com/ademuri/song-velocity/internal/status"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusExport bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Checks which pages and fragments are missing or empty",
	Long: `Lists every expected page source and parsed fragment for the configured weeks
and months, and reports the ones that are missing, empty or unreadable.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := checkStatus(statusExport)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusExport, "csv", false, "also export the issues as CSV")
}

// configuredPeriods expands the "weeks" and "months" config entries. Without
// entries, every period since the earliest release is used.
func configuredPeriods(reg *registry.Registry, now time.Time) (status.Periods, error) {
	weekEntries := viper.GetStringSlice("weeks")
	monthEntries := viper.GetStringSlice("months")

	var periods status.Periods
	var err error
	if len(weekEntries) > 0 {
		periods.Weeks, err = expandWeeks(weekEntries, now)
		if err != nil {
			return periods, err
		}
	}
	if len(monthEntries) > 0 {
		periods.Months, err = expandMonths(monthEntries, now)
		if err != nil {
			return periods, err
		}
	}

	earliest, ok := reg.Earliest()
	if !ok {
		return periods, nil
	}
	end := today(now).AddDate(0, 0, 1)
	if len(weekEntries) == 0 {
		periods.Weeks = fridaysBetween(earliest, end)
	}
	if len(monthEntries) == 0 {
		for m := firstOfMonth(earliest); m.Before(end); m = m.AddDate(0, 1, 0) {
			periods.Months = append(periods.Months, m)
		}
	}
	return periods, nil
}

func checkStatus(exportCSV bool) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	periods, err := configuredPeriods(reg, time.Now())
	if err != nil {
		return err
	}

	report := status.Check(reg, panel.DefaultConventions(), periods, status.Dirs{
		HTML: viper.GetString("html_dir"),
		CSV:  viper.GetString("data_dir"),
	})

	if len(report.Issues) == 0 {
		fmt.Printf("All %d expected pages are captured and parsed.\n", report.Expected)
		return nil
	}

	issues := Analysis{results: append([][]string{report.Header()}, report.Rows()...)}
	issues.summary = fmt.Sprintf("%d issues across %d expected pages", len(report.Issues), report.Expected)
	fmt.Print(issues)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(status.Summary{}.Header())
	for _, s := range report.Summaries() {
		table.Append(s.Row())
	}
	table.Render()

	if !exportCSV {
		return nil
	}
	path, err := export.NewWriter(viper.GetString("output_dir")).Write(export.StatusReport, report)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %s\n", path)
	return nil
}
