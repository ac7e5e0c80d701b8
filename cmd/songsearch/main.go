// Package main is the songsearch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chordme/songsearch/internal/cache"
	"github.com/chordme/songsearch/internal/chordpro"
	"github.com/chordme/songsearch/internal/config"
	"github.com/chordme/songsearch/internal/library"
	"github.com/chordme/songsearch/internal/models"
	"github.com/chordme/songsearch/internal/search"
	"github.com/chordme/songsearch/internal/server"
	"github.com/chordme/songsearch/internal/storage"
	"github.com/chordme/songsearch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/songsearch/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "suggest":
		runSuggest()
	case "add":
		runAdd()
	case "get":
		runGet()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("songsearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: songsearch <command> [flags]

Commands:
  server    Run the search API server
  search    Search songs via a running server
  suggest   Get completions for a prefix via a running server
  add       Import a local ChordPro file via a running server
  get       Show a song by ID
  delete    Delete a song by ID
  status    Show server status
  version   Print version
  help      Show this help`)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	resultCache := cache.New(cfg.Search.CacheSize, time.Duration(cfg.Search.CacheTTLSeconds)*time.Second)
	engine := search.NewEngine(store, resultCache, &cfg.Search, logger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watcher *library.Watcher
	if len(cfg.Library.Directories) > 0 {
		importer := library.NewImporter(store, cfg.Library.OwnerID, logger)
		watcher = library.NewWatcher(
			cfg.Library.Directories,
			cfg.Library.Extensions,
			cfg.Library.RecursiveOrDefault(),
			importer,
			logger,
		)
		if err := watcher.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start library watcher", zap.Error(err))
		}
		go func() {
			if err := watcher.SyncExisting(watchCtx); err != nil {
				logger.Warn("library sync failed", zap.Error(err))
			}
		}()
	}

	srv := server.NewServer(engine, store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watcher != nil {
		watcher.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// clientFlags are the flags shared by the client subcommands.
type clientFlags struct {
	addr  *string
	token *string
}

func addClientFlags(fs *flag.FlagSet) *clientFlags {
	return &clientFlags{
		addr:  fs.String("addr", "http://localhost:8090", "server address"),
		token: fs.String("token", os.Getenv("SONGSEARCH_TOKEN"), "bearer token (defaults to $SONGSEARCH_TOKEN)"),
	}
}

func (c *clientFlags) do(method, path string, params url.Values, body any) ([]byte, error) {
	u := strings.TrimSuffix(*c.addr, "/") + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+*c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			return nil, fmt.Errorf("%s (%d)", errBody.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return data, nil
}

// buildQuery joins all positional args with spaces so multi-word queries work
// the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// reorderArgs moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	client := addClientFlags(fs)
	genre := fs.String("genre", "", "filter by genre")
	key := fs.String("key", "", "filter by musical key")
	difficulty := fs.String("difficulty", "", "filter by difficulty (beginner/intermediate/advanced)")
	minTempo := fs.Int("min-tempo", 0, "minimum tempo in BPM")
	maxTempo := fs.Int("max-tempo", 0, "maximum tempo in BPM")
	language := fs.String("language", "", "filter by language code")
	userOnly := fs.Bool("mine", false, "only my own songs")
	limit := fs.Int("limit", 0, "maximum results")
	offset := fs.Int("offset", 0, "result offset")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	q := buildQuery(fs.Args())
	params := url.Values{"q": {q}}
	setIfNotEmpty(params, "genre", *genre)
	setIfNotEmpty(params, "key", *key)
	setIfNotEmpty(params, "difficulty", *difficulty)
	setIfNotEmpty(params, "language", *language)
	if *minTempo > 0 {
		params.Set("min_tempo", strconv.Itoa(*minTempo))
	}
	if *maxTempo > 0 {
		params.Set("max_tempo", strconv.Itoa(*maxTempo))
	}
	if *userOnly {
		params.Set("user_only", "true")
	}
	if *limit > 0 {
		params.Set("limit", strconv.Itoa(*limit))
	}
	if *offset > 0 {
		params.Set("offset", strconv.Itoa(*offset))
	}

	data, err := client.do(http.MethodGet, "/api/v1/songs/search", params, nil)
	if err != nil {
		fmt.Printf("Search failed: %v\n", err)
		os.Exit(1)
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		fmt.Printf("Invalid response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%d result(s) in %dms\n", resp.TotalCount, resp.SearchTimeMs)
	for _, r := range resp.Results {
		artist := r.Song.Artist
		if artist == "" {
			artist = "unknown artist"
		}
		fmt.Printf("%3d. %-40s %s [%s, %.2f]\n",
			r.Rank,
			utils.Truncate(r.Song.Title, 40),
			utils.Truncate(artist, 30),
			r.MatchType,
			r.RelevanceScore,
		)
	}
}

func runSuggest() {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	client := addClientFlags(fs)
	typ := fs.String("type", "", "suggestion type (title/artist/genre)")
	limit := fs.Int("limit", 0, "maximum suggestions")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	params := url.Values{"q": {buildQuery(fs.Args())}}
	setIfNotEmpty(params, "type", *typ)
	if *limit > 0 {
		params.Set("limit", strconv.Itoa(*limit))
	}

	data, err := client.do(http.MethodGet, "/api/v1/songs/suggestions", params, nil)
	if err != nil {
		fmt.Printf("Suggest failed: %v\n", err)
		os.Exit(1)
	}
	var resp models.SuggestionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		fmt.Printf("Invalid response: %v\n", err)
		os.Exit(1)
	}
	for _, sug := range resp.Suggestions {
		fmt.Printf("%-40s %-8s (%d)\n", utils.Truncate(sug.Text, 40), sug.Type, sug.SourceCount)
	}
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	client := addClientFlags(fs)
	public := fs.Bool("public", false, "make the song public")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Println("Usage: songsearch add [flags] <chordpro-file>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", path, err)
		os.Exit(1)
	}
	parsed := chordpro.Parse(content)
	title := parsed.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	input := &models.SongInput{
		Title:      title,
		Artist:     parsed.Artist,
		Genre:      parsed.Genre,
		Key:        parsed.Key,
		Difficulty: parsed.Difficulty,
		Tempo:      parsed.Tempo,
		Language:   parsed.Language,
		Content:    string(content),
		IsPublic:   *public,
	}
	data, err := client.do(http.MethodPost, "/api/v1/songs", nil, input)
	if err != nil {
		fmt.Printf("Add failed: %v\n", err)
		os.Exit(1)
	}
	var song models.Song
	if err := json.Unmarshal(data, &song); err != nil {
		fmt.Printf("Invalid response: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added %q (%s)\n", song.Title, song.ID)
}

func runGet() {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	client := addClientFlags(fs)
	lyrics := fs.Bool("lyrics", false, "print plain lyrics instead of song JSON")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Println("Usage: songsearch get [flags] <song-id>")
		os.Exit(1)
	}
	id := fs.Arg(0)

	if *lyrics {
		data, err := client.do(http.MethodGet, "/api/v1/songs/"+url.PathEscape(id)+"/lyrics", nil, nil)
		if err != nil {
			fmt.Printf("Get failed: %v\n", err)
			os.Exit(1)
		}
		var body struct {
			Title  string `json:"title"`
			Lyrics string `json:"lyrics"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			fmt.Printf("Invalid response: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\n\n%s\n", body.Title, body.Lyrics)
		return
	}

	data, err := client.do(http.MethodGet, "/api/v1/songs/"+url.PathEscape(id), nil, nil)
	if err != nil {
		fmt.Printf("Get failed: %v\n", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(pretty.String())
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	client := addClientFlags(fs)
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Println("Usage: songsearch delete [flags] <song-id>")
		os.Exit(1)
	}
	id := fs.Arg(0)
	if _, err := client.do(http.MethodDelete, "/api/v1/songs/"+url.PathEscape(id), nil, nil); err != nil {
		fmt.Printf("Delete failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %s\n", id)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	client := addClientFlags(fs)
	_ = fs.Parse(os.Args[2:])

	data, err := client.do(http.MethodGet, "/api/v1/status", nil, nil)
	if err != nil {
		fmt.Printf("Status failed: %v\n", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(pretty.String())
}

func setIfNotEmpty(params url.Values, name, value string) {
	if value != "" {
		params.Set(name, value)
	}
}
