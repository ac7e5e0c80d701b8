package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chordme/songsearch/internal/chordpro"
	"github.com/chordme/songsearch/internal/models"
	"github.com/chordme/songsearch/internal/search"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	scope := scopeFrom(r)

	filters, opts, err := parseSearchParams(params)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw := params.Get("q")
	s.logger.Debug("search request",
		zap.String("query", raw),
		zap.String("user", scope.UserID),
	)

	resp, err := s.engine.Search(r.Context(), scope, raw, filters, opts)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			s.respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.logger.Error("search failed", zap.String("query", raw), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if resp.Results == nil {
		resp.Results = []*models.SearchResult{}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// parseSearchParams translates query-string parameters into filters and
// options, rejecting unparseable values with the offending parameter name.
func parseSearchParams(params url.Values) (*models.SearchFilters, *search.Options, error) {
	filters := &models.SearchFilters{
		Genre:      params.Get("genre"),
		Key:        params.Get("key"),
		Difficulty: params.Get("difficulty"),
		Language:   params.Get("language"),
	}

	var err error
	if filters.MinTempo, err = intParam(params, "min_tempo"); err != nil {
		return nil, nil, err
	}
	if filters.MaxTempo, err = intParam(params, "max_tempo"); err != nil {
		return nil, nil, err
	}
	if v := params.Get("user_only"); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return nil, nil, models.NewValidationError("user_only", "must be a boolean")
		}
		filters.UserOnly = b
	}

	opts := &search.Options{}
	if opts.Limit, err = intParam(params, "limit"); err != nil {
		return nil, nil, err
	}
	if opts.Offset, err = intParam(params, "offset"); err != nil {
		return nil, nil, err
	}
	if v := params.Get("enable_cache"); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return nil, nil, models.NewValidationError("enable_cache", "must be a boolean")
		}
		opts.CacheEnabled = &b
	}
	return filters, opts, nil
}

func intParam(params url.Values, name string) (int, error) {
	v := params.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, models.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	prefix := params.Get("q")
	if !params.Has("q") {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, err := intParam(params, "limit")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestions, err := s.engine.Suggest(r.Context(), scopeFrom(r), prefix, params.Get("type"), limit)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			s.respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.logger.Error("suggestions failed", zap.String("prefix", prefix), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "suggestions failed")
		return
	}
	s.respondJSON(w, http.StatusOK, &models.SuggestionResponse{
		Suggestions: suggestions,
		Query:       prefix,
	})
}

func validateSongInput(input *models.SongInput) error {
	if input.Title == "" {
		return models.NewValidationError("title", "is required")
	}
	if input.Content == "" {
		return models.NewValidationError("content", "is required")
	}
	if input.Difficulty != "" && !models.ValidDifficulty(input.Difficulty) {
		return models.NewValidationError("difficulty",
			fmt.Sprintf("must be one of %s, %s, %s",
				models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced))
	}
	if input.Tempo != 0 && (input.Tempo < models.MinTempoBPM || input.Tempo > models.MaxTempoBPM) {
		return models.NewValidationError("tempo",
			fmt.Sprintf("must be between %d and %d BPM", models.MinTempoBPM, models.MaxTempoBPM))
	}
	return nil
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var input models.SongInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateSongInput(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	scope := scopeFrom(r)
	song := &models.Song{
		ID:         uuid.NewString(),
		UserID:     scope.UserID,
		Title:      input.Title,
		Artist:     input.Artist,
		Genre:      input.Genre,
		Key:        input.Key,
		Difficulty: input.Difficulty,
		Tempo:      input.Tempo,
		Language:   input.Language,
		Content:    input.Content,
		IsPublic:   input.IsPublic,
	}
	if err := s.storage.CreateSong(r.Context(), song); err != nil {
		s.logger.Error("create song failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	s.respondJSON(w, http.StatusCreated, song)
}

// visibleSong loads a song and enforces scope: private songs of other users
// are reported as not found, never leaked.
func (s *Server) visibleSong(r *http.Request, w http.ResponseWriter) (*models.Song, bool) {
	id := chi.URLParam(r, "id")
	song, err := s.storage.GetSong(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "song not found")
		return nil, false
	}
	scope := scopeFrom(r)
	if song.UserID != scope.UserID && !song.IsPublic {
		s.respondError(w, http.StatusNotFound, "song not found")
		return nil, false
	}
	return song, true
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	song, ok := s.visibleSong(r, w)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, song)
}

func (s *Server) handleGetSongLyrics(w http.ResponseWriter, r *http.Request) {
	song, ok := s.visibleSong(r, w)
	if !ok {
		return
	}
	parsed := chordpro.Parse([]byte(song.Content))
	s.respondJSON(w, http.StatusOK, map[string]string{
		"id":     song.ID,
		"title":  song.Title,
		"lyrics": parsed.Lyrics,
	})
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	song, ok := s.visibleSong(r, w)
	if !ok {
		return
	}
	if song.UserID != scopeFrom(r).UserID {
		s.respondError(w, http.StatusForbidden, "not the song owner")
		return
	}

	var input models.SongInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateSongInput(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	song.Title = input.Title
	song.Artist = input.Artist
	song.Genre = input.Genre
	song.Key = input.Key
	song.Difficulty = input.Difficulty
	song.Tempo = input.Tempo
	song.Language = input.Language
	song.Content = input.Content
	song.IsPublic = input.IsPublic
	if err := s.storage.UpdateSong(r.Context(), song); err != nil {
		s.logger.Error("update song failed", zap.String("id", song.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "update failed")
		return
	}
	s.respondJSON(w, http.StatusOK, song)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	song, ok := s.visibleSong(r, w)
	if !ok {
		return
	}
	if song.UserID != scopeFrom(r).UserID {
		s.respondError(w, http.StatusForbidden, "not the song owner")
		return
	}
	if err := s.storage.DeleteSong(r.Context(), song.ID); err != nil {
		s.logger.Error("delete song failed", zap.String("id", song.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	limit, err := intParam(params, "limit")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := intParam(params, "offset")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit <= 0 {
		limit = s.config.Search.DefaultLimit
	}
	if limit > s.config.Search.MaxLimit {
		limit = s.config.Search.MaxLimit
	}

	songs, err := s.storage.ListSongs(r.Context(), scopeFrom(r), offset, limit)
	if err != nil {
		s.logger.Error("list songs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if songs == nil {
		songs = []*models.Song{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"songs": songs,
		"count": len(songs),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.storage.CountSongs(r.Context())
	if err != nil {
		s.logger.Error("status: count songs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "status failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"songs": count,
		"config": map[string]interface{}{
			"default_limit":     s.config.Search.DefaultLimit,
			"max_limit":         s.config.Search.MaxLimit,
			"cache_enabled":     s.config.Search.CacheEnabled,
			"cache_ttl_seconds": s.config.Search.CacheTTLSeconds,
			"database_path":     s.config.Storage.DatabasePath,
		},
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
