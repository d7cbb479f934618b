package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/ademuri/song-velocity/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rescrapeListName lists the commands that recapture skipped fragments.
const rescrapeListName = "empty_files_to_rescrape.txt"

type LoadConfig struct {
	DataDir string
	Panel   string
	DbPath  string
	Dedupe  bool
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Consolidates parsed CSV fragments into one panel",
	Long: `Reads every fragment in the data directory, writes the consolidated panel CSV
and replaces the SQLite snapshot. Fragments that could not be read are listed in
` + rescrapeListName + ` next to the panel.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := LoadConfig{
			DataDir: viper.GetString("data_dir"),
			Panel:   viper.GetString("panel"),
			DbPath:  viper.GetString("database"),
			Dedupe:  viper.GetBool("dedupe"),
		}
		err := loadFragments(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)

	var dedupe bool
	loadCmd.Flags().BoolVar(&dedupe, "dedupe", false, "Drop rows repeated across overlapping fragments")
	viper.BindPFlag("dedupe", loadCmd.Flags().Lookup("dedupe"))
}

func loadFragments(config LoadConfig) error {
	p, skipped, err := panel.NewLoader(logger).Load(config.DataDir)
	if err != nil {
		return fmt.Errorf("loading %s: %w", config.DataDir, err)
	}
	if config.Dedupe {
		before := len(p)
		p = p.Dedupe()
		logger.Info().Int("dropped", before-len(p)).Msg("removed duplicate rows")
	}

	if err := panel.WriteFile(config.Panel, p); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s\n", len(p), config.Panel)

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.SavePanel(p, config.DataDir, skipped, time.Now()); err != nil {
		return err
	}

	counts, err := db.GetSliceCounts()
	if err != nil {
		return err
	}
	var a Analysis
	a.results = [][]string{{"Period", "Measure", "Level", "Rows", "Weeks"}}
	for _, c := range counts {
		a.results = append(a.results, []string{c.PeriodType, c.Measure, c.Level,
			strconv.FormatInt(c.Rows, 10), strconv.FormatInt(c.Weeks, 10)})
	}
	a.summary = fmt.Sprintf("Saved snapshot to %s", config.DbPath)
	fmt.Print(a)

	if len(skipped) == 0 {
		return nil
	}
	path := filepath.Join(filepath.Dir(config.Panel), rescrapeListName)
	if err := writeRescrapeList(path, skipped); err != nil {
		return err
	}
	fmt.Printf("Skipped %d fragments; rescrape commands are in %s\n", len(skipped), path)
	return nil
}

func writeRescrapeList(path string, skipped []panel.Skipped) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing rescrape list: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, s := range skipped {
		fmt.Fprintf(w, "# %s: %s\n", s.Path, s.Reason)
		if s.SongID != "" && s.Week != "" {
			fmt.Fprintf(w, "song-velocity scrape --force --week %s --song %s\n", s.Week, s.SongID)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing rescrape list: %w", err)
	}
	return f.Close()
}
