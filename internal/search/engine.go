// Package search runs the song search pipeline: validate, cache, parse, narrow, rank.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chordme/songsearch/internal/cache"
	"github.com/chordme/songsearch/internal/config"
	"github.com/chordme/songsearch/internal/models"
	"github.com/chordme/songsearch/internal/query"
	"github.com/chordme/songsearch/internal/ranking"
	"github.com/chordme/songsearch/internal/storage"
)

// Engine runs searches and suggestions over the song store. Each call is
// synchronous and request-scoped; parallelism across requests is the HTTP
// server's concern.
type Engine struct {
	storage storage.Storage
	ranker  *ranking.Ranker
	cache   *cache.ResultCache
	config  *config.SearchConfig
	logger  *zap.Logger
}

// NewEngine creates a search engine. resultCache may be nil to disable
// caching entirely.
func NewEngine(store storage.Storage, resultCache *cache.ResultCache, cfg *config.SearchConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		storage: store,
		ranker:  ranking.NewRanker(),
		cache:   resultCache,
		config:  cfg,
		logger:  logger,
	}
}

// Options carries per-request pagination and cache switches.
type Options struct {
	Limit  int
	Offset int
	// CacheEnabled overrides the configured default when non-nil.
	CacheEnabled *bool
}

// Search runs the full pipeline for raw against the caller's scope. Filter
// validation errors are returned as *models.ValidationError before any
// storage work; storage errors are wrapped and surfaced as-is for the caller
// to map to a generic failure.
func (e *Engine) Search(ctx context.Context, scope models.Scope, raw string, filters *models.SearchFilters, opts *Options) (*models.SearchResponse, error) {
	start := time.Now()

	if filters == nil {
		filters = &models.SearchFilters{}
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	limit, offset := e.normalizePage(opts)
	useCache := e.cache != nil && e.config.CacheEnabled
	if opts != nil && opts.CacheEnabled != nil {
		useCache = e.cache != nil && *opts.CacheEnabled
	}

	key := cache.Key(normalizeQuery(raw), filters, scope, offset, limit)
	if useCache {
		if resp, ok := e.cache.Get(key); ok {
			resp.Cached = true
			resp.SearchTimeMs = time.Since(start).Milliseconds()
			e.logger.Debug("search cache hit", zap.String("query", raw))
			return resp, nil
		}
	}

	parsed := query.Parse(raw)
	candidates, err := e.storage.SearchCandidates(ctx, scope, filters, parsed)
	if err != nil {
		return nil, fmt.Errorf("search candidates failed: %w", err)
	}

	ranked := e.ranker.Rank(parsed, candidates)
	total := len(ranked)
	pageStart := offset
	pageEnd := offset + limit
	if pageStart > total {
		pageStart = total
	}
	if pageEnd > total {
		pageEnd = total
	}

	resp := &models.SearchResponse{
		Results:      ranked[pageStart:pageEnd],
		TotalCount:   total,
		SearchTimeMs: time.Since(start).Milliseconds(),
		QueryInfo:    models.QueryInfo{ParsedQuery: queryInfo(parsed)},
	}

	if useCache {
		// Best effort: a cache write never affects the computed response.
		e.cache.Set(key, resp)
	}
	return resp, nil
}

func (e *Engine) normalizePage(opts *Options) (limit, offset int) {
	limit = e.config.DefaultLimit
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}
	if limit > e.config.MaxLimit {
		limit = e.config.MaxLimit
	}
	if opts != nil && opts.Offset > 0 {
		offset = opts.Offset
	}
	return limit, offset
}

// normalizeQuery canonicalizes the raw query for cache keying only; parsing
// always sees the original string.
func normalizeQuery(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

func queryInfo(parsed *query.ParsedQuery) models.ParsedQueryInfo {
	return models.ParsedQueryInfo{
		Phrases:      parsed.Phrases,
		AndTerms:     parsed.AndTerms,
		OrTerms:      parsed.OrTerms,
		NotTerms:     parsed.NotTerms,
		HasOperators: parsed.HasOperators,
		RawQuery:     parsed.RawQuery,
	}
}

// ClearCache drops all cached results. Used by tests and admin tooling.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}
