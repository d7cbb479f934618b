package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ademuri/song-velocity/internal/pagesource"
	"github.com/ademuri/song-velocity/internal/panel"
	"github.com/ademuri/song-velocity/internal/registry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ParseConfig struct {
	HTMLDir string
	DataDir string
	Force   bool
}

type ParseResult struct {
	Parsed  int
	Skipped int
	NoTable []string
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Converts saved page sources into CSV fragments",
	Long:  `Extracts the city table from every saved page that has no fragment yet.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := loadRegistry()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		config := ParseConfig{
			HTMLDir: viper.GetString("html_dir"),
			DataDir: viper.GetString("data_dir"),
			Force:   viper.GetBool("parse_force"),
		}
		result, err := parsePages(config, reg, panel.DefaultConventions())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Parsed %d pages, %d already had fragments\n", result.Parsed, result.Skipped)
		for _, path := range result.NoTable {
			fmt.Printf("No city table found in %s\n", path)
		}
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	var force bool
	parseCmd.Flags().BoolVarP(&force, "force", "f", false, "Parse every page, replacing existing fragments")
	viper.BindPFlag("parse_force", parseCmd.Flags().Lookup("force"))
}

func parsePages(config ParseConfig, reg *registry.Registry, conv panel.Conventions) (ParseResult, error) {
	var result ParseResult
	paths, err := filepath.Glob(filepath.Join(config.HTMLDir, conv.PagePrefix+"_*_by_*.html"))
	if err != nil {
		return result, fmt.Errorf("listing pages: %w", err)
	}
	sort.Strings(paths)

	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return result, fmt.Errorf("creating %s: %w", config.DataDir, err)
	}

	for _, path := range paths {
		key, err := conv.ParsePageName(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("skipping page")
			continue
		}
		out := filepath.Join(config.DataDir, conv.FragmentName(key))
		if !config.Force {
			if info, err := os.Stat(out); err == nil && info.Size() > 1 {
				result.Skipped++
				continue
			}
		}

		rows, err := parsePage(path)
		if errors.Is(err, pagesource.ErrTableNotFound) {
			result.NoTable = append(result.NoTable, path)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("parsing %s: %w", path, err)
		}

		if err := writeFragmentFile(out, rows, fragmentMeta(key, reg)); err != nil {
			return result, err
		}
		logger.Debug().Str("path", out).Int("rows", len(rows)).Msg("wrote fragment")
		result.Parsed++
	}
	return result, nil
}

func parsePage(path string) ([]pagesource.TableRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pagesource.Parse(f)
}

func fragmentMeta(key panel.FragmentKey, reg *registry.Registry) pagesource.FragmentMeta {
	meta := pagesource.FragmentMeta{
		Week:    key.Period,
		SongID:  key.SongID,
		Measure: string(key.Measure),
		Level:   string(panel.LevelSong),
	}
	if key.SongID == panel.ArtistSongID {
		meta.Song = panel.ArtistSong
		meta.Level = string(panel.LevelArtist)
	} else {
		meta.Song = reg.Name(key.SongID)
	}
	return meta
}

func writeFragmentFile(path string, rows []pagesource.TableRow, meta pagesource.FragmentMeta) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := pagesource.WriteFragment(f, rows, meta); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
