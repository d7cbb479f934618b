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
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string
var dataDir string
var htmlDir string
var outputDir string
var panelPath string
var databasePath string
var panelSource string
var windowWeeks int
var minStreams int64
var includeArtistLevel bool
var logLevel string
var logFile string

var logger = zerolog.Nop()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "song-velocity",
	Short: "Analyzes per-city streaming trends for an artist's songs",
	Long: `Scrapes the artist dashboard, parses the saved pages into CSV fragments,
and computes per-city peak, adoption, stickiness and velocity metrics.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.song-velocity.yaml)")

	flags.StringVar(&dataDir, "data_dir", "parsed_csvs", "Directory of parsed CSV fragments")
	viper.BindPFlag("data_dir", flags.Lookup("data_dir"))

	flags.StringVar(&htmlDir, "html_dir", "html_outputs", "Directory of saved page sources")
	viper.BindPFlag("html_dir", flags.Lookup("html_dir"))

	flags.StringVar(&outputDir, "output_dir", "analysis_outputs", "Directory for exported metric CSVs")
	viper.BindPFlag("output_dir", flags.Lookup("output_dir"))

	flags.StringVar(&panelPath, "panel", "song_velocity.csv", "Path of the consolidated panel CSV")
	viper.BindPFlag("panel", flags.Lookup("panel"))

	flags.StringVarP(&databasePath, "database", "d", "./song_velocity.db", "Path to the SQLite panel snapshot")
	viper.BindPFlag("database", flags.Lookup("database"))

	flags.StringVar(&panelSource, "source", sourceFragments, "Where analyses read the panel from: fragments, panel or db")
	viper.BindPFlag("source", flags.Lookup("source"))

	flags.IntVar(&windowWeeks, "window_weeks", 12, "Weeks after release included in windowed metrics")
	viper.BindPFlag("window_weeks", flags.Lookup("window_weeks"))

	flags.Int64Var(&minStreams, "min_streams", 50, "Cities with fewer total streams are left out of summaries")
	viper.BindPFlag("min_streams", flags.Lookup("min_streams"))

	flags.BoolVar(&includeArtistLevel, "include_artist_level", false, "Include artist-level rows in city metrics")
	viper.BindPFlag("include_artist_level", flags.Lookup("include_artist_level"))

	flags.StringVar(&logLevel, "log_level", "info", "Log level: debug, info, warn or error")
	viper.BindPFlag("log_level", flags.Lookup("log_level"))

	flags.StringVar(&logFile, "log_file", "", "Append logs to this file instead of stderr")
	viper.BindPFlag("log_file", flags.Lookup("log_file"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".song-velocity" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".song-velocity")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})

	logger = setupLogger(viper.GetString("log_file"), viper.GetString("log_level"))
}

func setupLogger(logFile, logLevel string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	output := os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			output = f
		}
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger
}
