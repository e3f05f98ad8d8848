package main

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

type engineCacheSnapshot struct {
	Width   int
	Height  int
	Entries []engineCacheEntry
}

type engineCacheEntry struct {
	Key   BoardKey
	Score int
}

// Snapshot copies the cached values for boards of the given dimensions.
func (e *Engine) Snapshot(width, height int) engineCacheSnapshot {
	snapshot := engineCacheSnapshot{Width: width, Height: height}
	for key, score := range e.cache {
		if key.Width != width || key.Height != height {
			continue
		}
		snapshot.Entries = append(snapshot.Entries, engineCacheEntry{Key: key, Score: score})
	}
	return snapshot
}

// Restore merges snapshot entries into the cache and returns how many were
// accepted. Entries whose key disagrees with the snapshot dimensions or
// whose score is not a game value are dropped.
func (e *Engine) Restore(snapshot engineCacheSnapshot) int {
	restored := 0
	for _, entry := range snapshot.Entries {
		key := entry.Key
		if key.Width != snapshot.Width || key.Height != snapshot.Height || len(key.Cells) != key.Width*key.Height {
			continue
		}
		if entry.Score < scoreOWins || entry.Score > scoreXWins {
			continue
		}
		e.cache[key] = entry.Score
		restored++
	}
	return restored
}

// loadEngineCache restores a snapshot written by saveEngineCache. A missing
// file, or one for other board dimensions, restores nothing.
func loadEngineCache(path string, engine *Engine, width, height int) (int, error) {
	if path == "" {
		return 0, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("engine-cache-not-found")
			return 0, nil
		}
		return 0, fmt.Errorf("open engine cache %s: %w", path, err)
	}
	defer file.Close()

	var snapshot engineCacheSnapshot
	if err := gob.NewDecoder(file).Decode(&snapshot); err != nil {
		if isEOFError(err) {
			log.Warn().Str("path", path).Msg("engine-cache-truncated")
			return 0, nil
		}
		return 0, fmt.Errorf("decode engine cache %s: %w", path, err)
	}
	if snapshot.Width != width || snapshot.Height != height {
		log.Info().
			Str("path", path).
			Int("snapshot_width", snapshot.Width).
			Int("snapshot_height", snapshot.Height).
			Int("width", width).
			Int("height", height).
			Msg("engine-cache-dimension-mismatch")
		return 0, nil
	}
	restored := engine.Restore(snapshot)
	log.Info().Str("path", path).Int("restored", restored).Int("stored", len(snapshot.Entries)).Msg("engine-cache-restored")
	return restored, nil
}

func saveEngineCache(path string, engine *Engine, width, height int) (int, error) {
	if path == "" {
		return 0, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create engine cache directory %s: %w", dir, err)
		}
	}
	snapshot := engine.Snapshot(width, height)
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create engine cache %s: %w", tmp, err)
	}
	if err := gob.NewEncoder(file).Encode(&snapshot); err != nil {
		file.Close()
		os.Remove(tmp)
		return 0, fmt.Errorf("encode engine cache %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("close engine cache %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, fmt.Errorf("replace engine cache %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("entries", len(snapshot.Entries)).Msg("engine-cache-stored")
	return len(snapshot.Entries), nil
}

func isEOFError(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
