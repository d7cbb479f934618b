// Package registry maps song ids to their release dates.
package registry

import (
	"fmt"
	"sort"
	"time"

	"github.com/ademuri/song-velocity/internal/panel"
)

type Song struct {
	ID          string
	Name        string
	ReleaseDate time.Time
}

// SongConfig is the shape of one entry under the "songs" config key.
type SongConfig struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	ReleaseDate string `mapstructure:"release_date"`
}

type Registry struct {
	songs map[string]Song
}

func New(songs []Song) (*Registry, error) {
	r := &Registry{songs: make(map[string]Song, len(songs))}
	for _, s := range songs {
		if s.ID == "" {
			return nil, fmt.Errorf("song %q has no id", s.Name)
		}
		if _, ok := r.songs[s.ID]; ok {
			return nil, fmt.Errorf("duplicate song id %q", s.ID)
		}
		r.songs[s.ID] = s
	}
	return r, nil
}

// FromConfig parses release dates given as YYYYMMDD.
func FromConfig(entries []SongConfig) (*Registry, error) {
	songs := make([]Song, 0, len(entries))
	for _, e := range entries {
		release, err := time.Parse(panel.WeekLayout, e.ReleaseDate)
		if err != nil {
			return nil, fmt.Errorf("song %q: release date %q: %w", e.ID, e.ReleaseDate, err)
		}
		songs = append(songs, Song{ID: e.ID, Name: e.Name, ReleaseDate: release})
	}
	return New(songs)
}

// ReleaseDate reports false for an unknown id.
func (r *Registry) ReleaseDate(id string) (time.Time, bool) {
	s, ok := r.songs[id]
	return s.ReleaseDate, ok
}

func (r *Registry) Name(id string) string {
	return r.songs[id].Name
}

// Songs returns every song ordered by release date, then id.
func (r *Registry) Songs() []Song {
	out := make([]Song, 0, len(r.songs))
	for _, s := range r.songs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReleaseDate.Equal(out[j].ReleaseDate) {
			return out[i].ReleaseDate.Before(out[j].ReleaseDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Earliest returns the first release date, or false for an empty registry.
func (r *Registry) Earliest() (time.Time, bool) {
	songs := r.Songs()
	if len(songs) == 0 {
		return time.Time{}, false
	}
	return songs[0].ReleaseDate, true
}
