package imagegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/lox/forecastcards/internal/forecast"
)

// IconGenerator produces PNG bytes for a weather type.
type IconGenerator interface {
	Generate(ctx context.Context, t forecast.WeatherType) ([]byte, error)
}

var iconKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IconSet resolves weather-type keys to PNG files named w_<key>.png in a
// directory. Missing icons are generated when a generator is configured.
type IconSet struct {
	dir string
	gen IconGenerator

	mu      sync.Mutex // serializes generation and guards decoded
	decoded map[string]image.Image
}

// NewIconSet creates an icon set. gen may be nil.
func NewIconSet(dir string, gen IconGenerator) *IconSet {
	return &IconSet{
		dir:     dir,
		gen:     gen,
		decoded: make(map[string]image.Image),
	}
}

func (s *IconSet) path(key string) string {
	return filepath.Join(s.dir, fmt.Sprintf("w_%s.png", key))
}

// Icon returns the decoded icon for key, or nil if there is none.
func (s *IconSet) Icon(ctx context.Context, key string) (image.Image, error) {
	if !iconKeyPattern.MatchString(key) {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if img, ok := s.decoded[key]; ok {
		return img, nil
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		if s.gen == nil {
			return nil, nil
		}
		data, err = s.generate(ctx, key)
	}
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode icon %s: %w", key, err)
	}
	s.decoded[key] = img
	return img, nil
}

func (s *IconSet) generate(ctx context.Context, key string) ([]byte, error) {
	data, err := s.gen.Generate(ctx, forecast.WeatherType(key))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create icon dir: %w", err)
	}
	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return nil, fmt.Errorf("store icon %s: %w", key, err)
	}
	return data, nil
}
