package racingline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

// FormatFromPath derives the document format from the file extension.
// Unknown extensions are treated as json.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads and validates the track document at path.
func LoadFile(path string) (*model.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	track, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return track, nil
}

// Load returns the track stored at path. If path is empty or the document
// cannot be used the built-in default track is returned instead.
func Load(path string, l *log.Logger) *model.Track {
	if path == "" {
		l.Info("No track file configured, using default track",
			log.Int("points", len(lusailOutline)))
		return DefaultTrack()
	}
	track, err := LoadFile(path)
	if err != nil {
		l.Warn("Could not load track file, using default track",
			log.String("path", path),
			log.ErrorField(err))
		return DefaultTrack()
	}
	l.Info("Loaded racing line",
		log.String("path", path),
		log.Int("points", len(track.Points)),
		log.Int("segments", len(track.Segments)))
	return track
}
