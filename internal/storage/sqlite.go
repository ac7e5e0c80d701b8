// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/chordme/songsearch/internal/models"
	"github.com/chordme/songsearch/internal/query"
)

// SQLite's LOWER() folds ASCII only, but terms arrive lowercased with Go's
// Unicode rules, so "étude" would never match "Étude" in SQL. Matching in SQL
// therefore goes through functions registered on every connection that fold
// the same way the query parser and ranker do.
func init() {
	sql.Register("sqlite3_songsearch", &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc("contains_fold", containsFold, true); err != nil {
				return err
			}
			return conn.RegisterFunc("equals_fold", strings.EqualFold, true)
		},
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3_songsearch", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS songs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		artist TEXT NOT NULL DEFAULT '',
		genre TEXT NOT NULL DEFAULT '',
		song_key TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL DEFAULT '',
		tempo INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		is_public INTEGER NOT NULL DEFAULT 0,
		source_path TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_songs_user_id ON songs(user_id);
	CREATE INDEX IF NOT EXISTS idx_songs_is_public ON songs(is_public);
	CREATE INDEX IF NOT EXISTS idx_songs_genre ON songs(genre);
	CREATE INDEX IF NOT EXISTS idx_songs_source_path ON songs(source_path);
	`
	_, err := db.Exec(schema)
	return err
}

const songColumns = `id, user_id, title, artist, genre, song_key, difficulty,
	tempo, language, content, is_public, source_path, created_at, updated_at`

func scanSong(scan func(dest ...any) error) (*models.Song, error) {
	var song models.Song
	err := scan(&song.ID, &song.UserID, &song.Title, &song.Artist, &song.Genre,
		&song.Key, &song.Difficulty, &song.Tempo, &song.Language, &song.Content,
		&song.IsPublic, &song.SourcePath, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &song, nil
}

// CreateSong inserts a song.
func (s *SQLiteStorage) CreateSong(ctx context.Context, song *models.Song) error {
	now := time.Now()
	song.CreatedAt = now
	song.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO songs (`+songColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		song.ID, song.UserID, song.Title, song.Artist, song.Genre, song.Key,
		song.Difficulty, song.Tempo, song.Language, song.Content, song.IsPublic,
		song.SourcePath, song.CreatedAt, song.UpdatedAt,
	)
	return err
}

// GetSong returns a song by ID.
func (s *SQLiteStorage) GetSong(ctx context.Context, id string) (*models.Song, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	song, err := scanSong(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("song not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}

// GetSongBySourcePath returns the song imported from the given library file.
func (s *SQLiteStorage) GetSongBySourcePath(ctx context.Context, path string) (*models.Song, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE source_path = ?`, path)
	song, err := scanSong(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("song not found for path: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}

// UpdateSong updates an existing song.
func (s *SQLiteStorage) UpdateSong(ctx context.Context, song *models.Song) error {
	song.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE songs SET title = ?, artist = ?, genre = ?, song_key = ?,
		 difficulty = ?, tempo = ?, language = ?, content = ?, is_public = ?,
		 source_path = ?, updated_at = ? WHERE id = ?`,
		song.Title, song.Artist, song.Genre, song.Key, song.Difficulty,
		song.Tempo, song.Language, song.Content, song.IsPublic, song.SourcePath,
		song.UpdatedAt, song.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("song not found: %s", song.ID)
	}
	return nil
}

// DeleteSong removes a song by ID.
func (s *SQLiteStorage) DeleteSong(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	return err
}

// ListSongs returns songs visible to the caller, newest first.
func (s *SQLiteStorage) ListSongs(ctx context.Context, scope models.Scope, offset, limit int) ([]*models.Song, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+songColumns+` FROM songs
		 WHERE (user_id = ? OR is_public = 1)
		 ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`,
		scope.UserID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSongs(rows)
}

func collectSongs(rows *sql.Rows) ([]*models.Song, error) {
	var songs []*models.Song
	for rows.Next() {
		song, err := scanSong(rows.Scan)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// searchableText is the concatenated text the term pre-narrowing probes. It
// spans the same fields the ranker matches against; case folding happens in
// contains_fold.
const searchableText = `(title || ' ' || artist || ' ' || content || ' ' || genre || ' ' || difficulty)`

// SearchCandidates translates filters and scope into SQL predicates and
// pre-narrows by the query's positive terms. Phrases and NOT terms are left to
// the ranker: the narrowing must stay a superset of the final match set, and
// user input is only ever bound as parameters.
func (s *SQLiteStorage) SearchCandidates(ctx context.Context, scope models.Scope, filters *models.SearchFilters, parsed *query.ParsedQuery) ([]*models.Song, error) {
	var (
		where []string
		args  []any
	)

	if filters != nil && filters.UserOnly {
		where = append(where, `user_id = ?`)
		args = append(args, scope.UserID)
	} else {
		where = append(where, `(user_id = ? OR is_public = 1)`)
		args = append(args, scope.UserID)
	}

	if filters != nil {
		if filters.Genre != "" {
			where = append(where, `equals_fold(genre, ?)`)
			args = append(args, filters.Genre)
		}
		if filters.Key != "" {
			where = append(where, `equals_fold(song_key, ?)`)
			args = append(args, filters.Key)
		}
		if filters.Difficulty != "" {
			where = append(where, `equals_fold(difficulty, ?)`)
			args = append(args, filters.Difficulty)
		}
		if filters.Language != "" {
			where = append(where, `equals_fold(language, ?)`)
			args = append(args, filters.Language)
		}
		if filters.MinTempo != 0 {
			where = append(where, `tempo >= ?`)
			args = append(args, filters.MinTempo)
		}
		if filters.MaxTempo != 0 {
			where = append(where, `tempo <= ?`)
			args = append(args, filters.MaxTempo)
		}
	}

	if parsed != nil {
		for _, term := range parsed.AndTerms {
			where = append(where, `contains_fold(`+searchableText+`, ?)`)
			args = append(args, term)
		}
		if len(parsed.OrTerms) > 0 {
			ors := make([]string, len(parsed.OrTerms))
			for i, term := range parsed.OrTerms {
				ors[i] = `contains_fold(` + searchableText + `, ?)`
				args = append(args, term)
			}
			where = append(where, `(`+strings.Join(ors, ` OR `)+`)`)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE `+strings.Join(where, ` AND `)+
			` ORDER BY updated_at DESC, id`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSongs(rows)
}

// suggestionColumns maps suggestion types to their backing column.
var suggestionColumns = map[string]string{
	"title":  "title",
	"artist": "artist",
	"genre":  "genre",
}

// SuggestionValues returns distinct non-empty values of field containing
// needle (case-insensitive) among songs visible to the caller, most frequent
// first. The field name is validated against a fixed column map.
func (s *SQLiteStorage) SuggestionValues(ctx context.Context, scope models.Scope, field, needle string, limit int) ([]*ValueCount, error) {
	col, ok := suggestionColumns[field]
	if !ok {
		return nil, fmt.Errorf("unknown suggestion field: %s", field)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+col+`, COUNT(*) AS cnt FROM songs
		 WHERE (user_id = ? OR is_public = 1) AND `+col+` <> ''
		   AND contains_fold(`+col+`, ?)
		 GROUP BY `+col+`
		 ORDER BY cnt DESC, `+col+` LIMIT ?`,
		scope.UserID, strings.ToLower(needle), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []*ValueCount
	for rows.Next() {
		var vc ValueCount
		if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
			return nil, err
		}
		values = append(values, &vc)
	}
	return values, rows.Err()
}

// CountSongs returns the total number of songs.
func (s *SQLiteStorage) CountSongs(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
