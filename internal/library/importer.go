// Package library imports ChordPro files from watched directories into the song store.
package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chordme/songsearch/internal/chordpro"
	"github.com/chordme/songsearch/internal/models"
	"github.com/chordme/songsearch/internal/storage"
)

// syncParallelism bounds concurrent file imports during an initial sync.
const syncParallelism = 4

// Importer parses ChordPro files and upserts them as public songs owned by
// the configured library user, keyed by source path.
type Importer struct {
	storage storage.Storage
	ownerID string
	logger  *zap.Logger
}

// NewImporter creates an Importer. Imported songs belong to ownerID and are
// always public.
func NewImporter(store storage.Storage, ownerID string, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{storage: store, ownerID: ownerID, logger: logger}
}

// ImportFile reads and parses the ChordPro file at path and creates or
// updates the corresponding song.
func (im *Importer) ImportFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read song file: %w", err)
	}
	parsed := chordpro.Parse(data)

	title := parsed.Title
	if title == "" {
		title = titleFromFilename(path)
	}

	existing, err := im.storage.GetSongBySourcePath(ctx, path)
	if err != nil {
		song := &models.Song{
			ID:         uuid.NewString(),
			UserID:     im.ownerID,
			Title:      title,
			Artist:     parsed.Artist,
			Genre:      parsed.Genre,
			Key:        parsed.Key,
			Difficulty: parsed.Difficulty,
			Tempo:      parsed.Tempo,
			Language:   parsed.Language,
			Content:    string(data),
			IsPublic:   true,
			SourcePath: path,
		}
		if err := im.storage.CreateSong(ctx, song); err != nil {
			return fmt.Errorf("failed to create song for %s: %w", path, err)
		}
		im.logger.Debug("library song imported", zap.String("path", path), zap.String("id", song.ID))
		return nil
	}

	existing.Title = title
	existing.Artist = parsed.Artist
	existing.Genre = parsed.Genre
	existing.Key = parsed.Key
	existing.Difficulty = parsed.Difficulty
	existing.Tempo = parsed.Tempo
	existing.Language = parsed.Language
	existing.Content = string(data)
	if err := im.storage.UpdateSong(ctx, existing); err != nil {
		return fmt.Errorf("failed to update song for %s: %w", path, err)
	}
	im.logger.Debug("library song updated", zap.String("path", path), zap.String("id", existing.ID))
	return nil
}

// RemoveFile deletes the song imported from path, if any.
func (im *Importer) RemoveFile(ctx context.Context, path string) error {
	song, err := im.storage.GetSongBySourcePath(ctx, path)
	if err != nil {
		return nil // never imported, nothing to do
	}
	if err := im.storage.DeleteSong(ctx, song.ID); err != nil {
		return fmt.Errorf("failed to delete song for %s: %w", path, err)
	}
	im.logger.Debug("library song removed", zap.String("path", path), zap.String("id", song.ID))
	return nil
}

// SyncAll walks roots and imports every matching file, a bounded number in
// parallel. The first import error cancels the rest.
func (im *Importer) SyncAll(ctx context.Context, roots, extensions []string, recursive bool) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(syncParallelism)

	for _, root := range roots {
		root := root
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if !recursive && path != filepath.Clean(root) {
					return filepath.SkipDir
				}
				return nil
			}
			if !matchExtension(path, extensions) {
				return nil
			}
			g.Go(func() error {
				return im.ImportFile(ctx, path)
			})
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to walk library root %s: %w", root, err)
		}
	}
	return g.Wait()
}

// titleFromFilename derives a display title from a file path: extension
// removed, separators replaced with spaces.
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
