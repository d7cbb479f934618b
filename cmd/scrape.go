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
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/ademuri/song-velocity/internal/scrape"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ScrapeConfig struct {
	HTMLDir     string
	URLTemplate string
	ArtistID    string
	UserDataDir string
	PageDelay   time.Duration
	LoadWait    time.Duration
	Attempts    uint
	Measures    []string
	Levels      []string
	PeriodTypes []string
	SongID      string
	Week        string
	Force       bool
	Login       bool
}

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Saves dashboard pages for every song, measure and period",
	Long: `Opens a Chrome window on the artist dashboard and saves the page source of each
view that has not been captured yet.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config := ScrapeConfig{
			HTMLDir:     viper.GetString("html_dir"),
			URLTemplate: viper.GetString("dashboard.url_template"),
			ArtistID:    viper.GetString("artist_id"),
			UserDataDir: viper.GetString("dashboard.user_data_dir"),
			PageDelay:   viper.GetDuration("dashboard.page_delay"),
			LoadWait:    viper.GetDuration("dashboard.load_wait"),
			Attempts:    viper.GetUint("dashboard.attempts"),
			Measures:    viper.GetStringSlice("measures"),
			Levels:      viper.GetStringSlice("levels"),
			PeriodTypes: viper.GetStringSlice("periods"),
			SongID:      viper.GetString("song"),
			Week:        viper.GetString("week"),
			Force:       viper.GetBool("force"),
			Login:       !viper.GetBool("no_login"),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := scrapePages(ctx, config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	var force bool
	scrapeCmd.Flags().BoolVarP(&force, "force", "f", false, "Scrape pages even if they were already captured")
	viper.BindPFlag("force", scrapeCmd.Flags().Lookup("force"))

	var measures []string
	scrapeCmd.Flags().StringSliceVar(&measures, "measures", []string{"plays", "listeners"}, "Measures to scrape")
	viper.BindPFlag("measures", scrapeCmd.Flags().Lookup("measures"))

	var levels []string
	scrapeCmd.Flags().StringSliceVar(&levels, "levels", []string{"song", "artist"}, "Levels to scrape")
	viper.BindPFlag("levels", scrapeCmd.Flags().Lookup("levels"))

	var periods []string
	scrapeCmd.Flags().StringSliceVar(&periods, "periods", []string{"weekly", "monthly"}, "Period types to scrape")
	viper.BindPFlag("periods", scrapeCmd.Flags().Lookup("periods"))

	var song string
	scrapeCmd.Flags().StringVar(&song, "song", "", "Only scrape this song id")
	viper.BindPFlag("song", scrapeCmd.Flags().Lookup("song"))

	var week string
	scrapeCmd.Flags().StringVar(&week, "week", "", "Only scrape this period, as yyyymmdd or yyyy-mm-dd")
	viper.BindPFlag("week", scrapeCmd.Flags().Lookup("week"))

	var noLogin bool
	scrapeCmd.Flags().BoolVar(&noLogin, "no_login", false, "Start scraping without waiting for a manual login")
	viper.BindPFlag("no_login", scrapeCmd.Flags().Lookup("no_login"))

	viper.SetDefault("dashboard.page_delay", "2s")
	viper.SetDefault("dashboard.load_wait", "5s")
	viper.SetDefault("dashboard.attempts", 3)
}

// scrapeOptions resolves the plan options from the command config.
func scrapeOptions(config ScrapeConfig, periods []time.Time, months []time.Time) (scrape.Options, error) {
	opts := scrape.Options{
		HTMLDir: config.HTMLDir,
		Weeks:   periods,
		Months:  months,
		SongID:  config.SongID,
		Force:   config.Force,
	}
	for _, m := range config.Measures {
		measure, err := panel.ParseMeasure(m)
		if err != nil {
			return opts, fmt.Errorf("--measures: %w", err)
		}
		opts.Measures = append(opts.Measures, measure)
	}
	for _, l := range config.Levels {
		level, err := panel.ParseLevel(l)
		if err != nil {
			return opts, fmt.Errorf("--levels: %w", err)
		}
		opts.Levels = append(opts.Levels, level)
	}
	for _, p := range config.PeriodTypes {
		pt, err := panel.ParsePeriodType(p)
		if err != nil {
			return opts, fmt.Errorf("--periods: %w", err)
		}
		opts.PeriodTypes = append(opts.PeriodTypes, pt)
	}
	if config.Week != "" {
		date, err := parseSingleDatestring(config.Week)
		if err != nil || !date.Day {
			return opts, fmt.Errorf("--week: want a single day, got %q", config.Week)
		}
		opts.Period = date.Date.Format(panel.WeekLayout)
	}
	return opts, nil
}

func scrapePages(ctx context.Context, config ScrapeConfig) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	periods, err := configuredPeriods(reg, time.Now())
	if err != nil {
		return err
	}
	opts, err := scrapeOptions(config, periods.Weeks, periods.Months)
	if err != nil {
		return err
	}

	jobs := scrape.Plan(reg, panel.DefaultConventions(), opts)
	if len(jobs) == 0 {
		fmt.Println("Every page is already captured")
		return nil
	}
	fmt.Printf("Scraping %d pages into %s\n", len(jobs), config.HTMLDir)

	urls, err := scrape.NewURLBuilder(config.URLTemplate, config.ArtistID)
	if err != nil {
		return fmt.Errorf("dashboard.url_template: %w", err)
	}

	browser, err := scrape.NewChrome(ctx, scrape.ChromeOptions{
		Headless:    false,
		UserDataDir: config.UserDataDir,
		LoadWait:    config.LoadWait,
	})
	if err != nil {
		return fmt.Errorf("starting chrome: %w", err)
	}
	defer browser.Close()

	result, err := scrape.Run(ctx, browser, jobs, scrape.RunOptions{
		URLs:       urls,
		Login:      config.Login,
		In:         os.Stdin,
		Out:        os.Stdout,
		PageDelay:  config.PageDelay,
		Attempts:   config.Attempts,
		RetryDelay: config.PageDelay,
		Progress:   os.Stderr,
		Log:        logger,
	})
	fmt.Printf("Saved %d pages\n", len(result.Saved))
	for _, job := range result.Failed {
		fmt.Printf("Failed: %s\n", job.Path)
	}
	return err
}
