package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/justestif/go-emotion-player/internal/mood"
)

// fileTrack is the on-disk shape of a catalog entry. Mood is optional and,
// when present, must agree with the key the track is listed under.
type fileTrack struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Mood   string `json:"mood,omitempty"`
	Path   string `json:"path"`
	Cover  string `json:"cover"`
}

// LoadJSON reads a catalog of the form {"happy": [{...}], "sad": [...]}.
func LoadJSON(r io.Reader) (*Catalog, error) {
	var raw map[string][]fileTrack
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	entries := make(map[mood.Mood][]Track, len(raw))
	for key, list := range raw {
		m := normalize(key)
		if !m.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMood, key)
		}
		for _, ft := range list {
			declared := m
			if ft.Mood != "" {
				declared = normalize(ft.Mood)
			}
			entries[m] = append(entries[m], Track{
				ID:     ft.ID,
				Title:  ft.Title,
				Artist: ft.Artist,
				Mood:   declared,
				Path:   ft.Path,
				Cover:  ft.Cover,
			})
		}
	}

	return New(entries)
}

// normalize folds case and surrounding space. Unlike mood.Parse it keeps
// unknown values, so they are still rejected.
func normalize(s string) mood.Mood {
	return mood.Mood(strings.ToLower(strings.TrimSpace(s)))
}

// LoadFile opens path and decodes it with LoadJSON.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	return LoadJSON(f)
}
