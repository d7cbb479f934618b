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

	"github.com/ademuri/song-velocity/internal/analysis"
	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/ademuri/song-velocity/internal/registry"
	"github.com/ademuri/song-velocity/internal/store"
	"github.com/spf13/viper"
)

const (
	sourceFragments = "fragments"
	sourcePanel     = "panel"
	sourceDatabase  = "db"
)

func loadRegistry() (*registry.Registry, error) {
	var songs []registry.SongConfig
	if err := viper.UnmarshalKey("songs", &songs); err != nil {
		return nil, fmt.Errorf("reading songs from config: %w", err)
	}
	reg, err := registry.FromConfig(songs)
	if err != nil {
		return nil, fmt.Errorf("loading release dates: %w", err)
	}
	if len(reg.Songs()) == 0 {
		logger.Warn().Msg("no songs configured; every song will be missing a release date")
	}
	return reg, nil
}

func engineConfig() analysis.Config {
	config := analysis.DefaultConfig()
	config.WindowWeeks = viper.GetInt("window_weeks")
	config.MinStreamsThreshold = viper.GetInt64("min_streams")
	config.IncludeArtistLevel = viper.GetBool("include_artist_level")
	if viper.IsSet("retention_weeks") {
		config.RetentionWeeks = viper.GetInt("retention_weeks")
	}
	return config
}

func newEngine() (*analysis.Engine, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	return analysis.New(reg, engineConfig(), logger), nil
}

// loadPanel reads the panel from the configured source.
func loadPanel(source string) (panel.Panel, error) {
	switch source {
	case sourceFragments:
		p, skipped, err := panel.NewLoader(logger).Load(viper.GetString("data_dir"))
		if err != nil {
			return nil, err
		}
		if len(skipped) > 0 {
			logger.Warn().Int("skipped", len(skipped)).Msg("some fragments were skipped; run load to list them")
		}
		return p, nil

	case sourcePanel:
		return panel.ReadFile(viper.GetString("panel"))

	case sourceDatabase:
		db, err := store.New(viper.GetString("database"))
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		return db.LoadPanel()
	}
	return nil, fmt.Errorf("invalid source %q: want %s, %s or %s", source, sourceFragments, sourcePanel, sourceDatabase)
}
