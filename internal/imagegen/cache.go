package imagegen

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/lox/forecastcards/internal/card"
)

// Cache provides file-based caching for rendered card images, keyed by the
// hash of the scene that produced them.
type Cache struct {
	dir    string
	maxAge time.Duration
}

// NewCache creates a new image cache in the specified directory. A zero
// maxAge keeps entries forever.
func NewCache(dir string, maxAge time.Duration) *Cache {
	if err := os.MkdirAll(dir, 0755); err != nil {
		// Cache is optional; Set will fail and be logged by callers.
		log.Printf("imagegen: could not create cache directory: %v", err)
	}
	return &Cache{
		dir:    dir,
		maxAge: maxAge,
	}
}

// SceneKey returns the cache key of a scene. Identical scenes always map to
// the same key.
func SceneKey(s *card.Scene) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal scene: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("card_%s.png", key))
}

// Get retrieves a cached image if it exists and is not stale.
func (c *Cache) Get(key string) ([]byte, bool) {
	path := c.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}

	if c.maxAge > 0 && time.Since(info.ModTime()) > c.maxAge {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	return data, true
}

// Set stores an image in the cache.
func (c *Cache) Set(key string, data []byte) error {
	return os.WriteFile(c.path(key), data, 0644)
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}

	n := 0
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".png" {
			n++
		}
	}
	return n
}
