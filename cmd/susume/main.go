// Package main is the Susume CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/discover"
	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/keyword"
	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/recommend"
	"github.com/hyperjump/susume/internal/server"
	"github.com/hyperjump/susume/internal/store"
	"github.com/hyperjump/susume/internal/vector"
	"github.com/hyperjump/susume/internal/videosearch"
	"github.com/hyperjump/susume/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/susume/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "susume server" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
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
	case "index":
		runIndex()
	case "similar":
		runSimilar()
	case "search":
		runSearch()
	case "discover":
		runDiscover()
	case "reindex":
		runReindex()
	case "remove":
		runRemove()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("susume version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
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

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Recommender,
		components.Discovery,
		components.Videos,
		components.KeywordIndex,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	title := fs.String("title", "", "video title (omit to resolve fields from the video store)")
	description := fs.String("description", "", "video description")
	summary := fs.String("summary", "", "video summary")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: susume index [flags] <video-id>")
		os.Exit(1)
	}
	videoID := fs.Arg(0)

	components, logger := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	resp, err := components.Recommender.IndexVideo(context.Background(), &models.IndexVideoRequest{
		VideoID:     videoID,
		Title:       *title,
		Description: *description,
		Summary:     *summary,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing failed: %v\n", err)
		os.Exit(1)
	}
	if resp.Added {
		fmt.Printf("Video indexed: %s (%d total)\n", resp.VideoID, resp.TotalIndexed)
	} else {
		fmt.Printf("Video already indexed: %s (%d total)\n", resp.VideoID, resp.TotalIndexed)
	}
}

func runSimilar() {
	fs := flag.NewFlagSet("similar", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = direct storage when the server is not running)")
	k := fs.Int("k", 0, "number of recommendations (default from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: susume similar [flags] <video-id>")
		os.Exit(1)
	}
	videoID := fs.Arg(0)

	var response *models.RecommendationsResponse
	if *serverURL != "" {
		// Use the HTTP API when the server is running (avoids a Bolt lock conflict).
		url := fmt.Sprintf("%s/api/v1/recommendations/similar/%s", *serverURL, videoID)
		if *k > 0 {
			url += fmt.Sprintf("?k=%d", *k)
		}
		resp, err := getJSON(url, &models.RecommendationsResponse{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		response = resp.(*models.RecommendationsResponse)
	} else {
		components, logger := mustInitialize(*configPath)
		defer components.Close()
		defer logger.Sync()

		var err error
		response, err = components.Recommender.SimilarTo(context.Background(), &models.SimilarQuery{VideoID: videoID, K: *k})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Recommendation failed: %v\n", err)
			os.Exit(1)
		}
	}
	writeRecommendations(response, *outputFormat)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = direct storage when the server is not running)")
	k := fs.Int("k", 0, "number of results (default from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: susume search [flags] <query>")
		os.Exit(1)
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))

	var response *models.RecommendationsResponse
	if *serverURL != "" {
		url := fmt.Sprintf("%s/api/v1/recommendations/search?q=%s", *serverURL, urlQueryEscape(query))
		if *k > 0 {
			url += fmt.Sprintf("&k=%d", *k)
		}
		resp, err := getJSON(url, &models.RecommendationsResponse{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		response = resp.(*models.RecommendationsResponse)
	} else {
		components, logger := mustInitialize(*configPath)
		defer components.Close()
		defer logger.Sync()

		var err error
		response, err = components.Recommender.SearchText(context.Background(), &models.TextSearchQuery{Query: query, K: *k})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}
	writeRecommendations(response, *outputFormat)
}

func runDiscover() {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = direct mode)")
	k := fs.Int("k", 0, "number of suggestions (default from config)")
	script := fs.String("script", "", "raw script text to seed discovery (instead of a video id)")
	_ = fs.Parse(os.Args[2:])

	req := &models.DiscoverRequest{ScriptText: *script, K: *k}
	if fs.NArg() > 0 {
		req.VideoID = fs.Arg(0)
	}
	if req.VideoID == "" && req.ScriptText == "" {
		fmt.Println("Usage: susume discover [flags] <video-id>")
		fmt.Println("       susume discover --script \"video script text\"")
		os.Exit(1)
	}

	var response *models.DiscoverResponse
	if *serverURL != "" {
		body, _ := json.Marshal(req)
		resp, err := http.Post(*serverURL+"/api/v1/recommendations/discover", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Discover failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		response = &models.DiscoverResponse{}
		if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, logger := mustInitialize(*configPath)
		defer components.Close()
		defer logger.Sync()

		if components.Discovery == nil {
			fmt.Fprintln(os.Stderr, "Discovery is not configured (set discovery.api_key or YOUTUBE_API_KEY)")
			os.Exit(1)
		}
		cfg := components.Config
		if err := req.Validate(cfg.Discovery.DefaultK, cfg.Discovery.MaxK); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid request: %v\n", err)
			os.Exit(1)
		}
		sourceText := req.ScriptText
		excludeID := ""
		if req.VideoID != "" {
			video, err := components.Videos.Get(context.Background(), req.VideoID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Video not found: %s\n", req.VideoID)
				os.Exit(1)
			}
			sourceText = components.Recommender.AssembleText(video.Title, video.Description, video.Summary, video.Transcript)
			excludeID = req.VideoID
		}
		var err error
		response, err = components.Discovery.DiscoverSimilar(context.Background(), sourceText, excludeID, req.K)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Discover failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("search query: %q (%d candidates)\n", response.SearchQuery, response.TotalSearched)
	for i, r := range response.Recommendations {
		fmt.Printf("%2d. [%.4f] %s  (%s)\n", i+1, r.SimilarityScore, r.Title, r.VideoID)
		if r.ChannelName != "" {
			fmt.Printf("      %s\n", r.ChannelName)
		}
	}
}

func runReindex() {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	components, logger := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	result, err := components.Recommender.ReindexAll(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reindex failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Reindexed %d video(s), skipped %d (source %d, index %d)\n",
		result.Indexed, result.Skipped, result.TotalInSource, result.TotalInIndex)
}

func runRemove() {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: susume remove [flags] <video-id>")
		os.Exit(1)
	}
	videoID := fs.Arg(0)

	components, logger := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	removed, err := components.Recommender.RemoveVideo(videoID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Removal failed: %v\n", err)
		os.Exit(1)
	}
	if removed {
		fmt.Printf("Video removed: %s\n", videoID)
	} else {
		fmt.Printf("Video was not indexed: %s\n", videoID)
	}
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var stats models.IndexStats
	if *serverURL != "" {
		resp, err := getJSON(*serverURL+"/api/v1/recommendations/stats", &models.IndexStats{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		stats = *resp.(*models.IndexStats)
	} else {
		components, logger := mustInitialize(*configPath)
		defer components.Close()
		defer logger.Sync()
		stats = *components.Recommender.Stats()
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("total_videos:         %d\n", stats.TotalVideos)
		fmt.Printf("index_size_mb:        %.2f\n", stats.IndexSizeMB)
		fmt.Printf("embedding_dimension:  %d\n", stats.EmbeddingDimension)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func writeRecommendations(resp *models.RecommendationsResponse, format string) {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		if len(resp.Recommendations) == 0 {
			fmt.Printf("No recommendations (%d indexed)\n", resp.TotalIndexed)
			return
		}
		for i, r := range resp.Recommendations {
			fmt.Printf("%2d. [%.4f] %s  (%s)\n", i+1, r.SimilarityScore, r.Title, r.VideoID)
			if r.ChannelName != "" {
				fmt.Printf("      %s\n", r.ChannelName)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", format)
		os.Exit(1)
	}
}

func getJSON(url string, out interface{}) (interface{}, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func urlQueryEscape(s string) string {
	return strings.ReplaceAll(s, " ", "+")
}

// mustInitialize loads config, builds a logger, and initializes components,
// exiting the process on failure. Direct-mode commands all start this way.
func mustInitialize(configPath string) (*Components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	return components, logger
}

// Components holds initialized services.
type Components struct {
	Config       *config.Config
	Videos       store.VideoStore
	Embedder     embedding.Embedder
	Archive      *store.BoltArchive
	VideoIndex   *vector.VideoIndex
	KeywordIndex *keyword.BleveIndex
	Recommender  *recommend.Service
	Discovery    *discover.Service
}

func (c *Components) Close() {
	if c.Videos != nil {
		_ = c.Videos.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Archive != nil {
		_ = c.Archive.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	videos, err := store.NewSQLiteVideoStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize video store: %w", err)
	}

	// Model loading is deferred to the first embedding request; a server start
	// never waits on ONNX. A missing model file falls back to the mock
	// embedder; a model that exists but fails to load reports unavailable.
	embedder := embedding.NewLazy(cfg.Embedding.Dimensions, func() (embedding.Embedder, error) {
		if _, statErr := os.Stat(cfg.Embedding.ModelPath); statErr != nil {
			logger.Warn("embedding model not found, using mock embedder",
				zap.String("model_path", cfg.Embedding.ModelPath))
			return embedding.NewMockEmbedder(cfg.Embedding.Dimensions), nil
		}
		return embedding.NewONNXEmbedder(
			cfg.Embedding.ModelPath,
			cfg.Embedding.Dimensions,
			cfg.Embedding.MaxTokens,
			cfg.Embedding.CacheSize,
		)
	})

	archive, err := store.NewBoltArchive(cfg.Storage.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index archive: %w", err)
	}
	videoIndex, err := vector.NewVideoIndex(cfg.Embedding.Dimensions, archive)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	logger.Info("vector index initialized",
		zap.Int("videos", videoIndex.Count()),
		zap.Int("dimensions", videoIndex.Dimensions()))

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	recommender := recommend.NewService(videoIndex, embedder, videos, &cfg.Recommend, logger)

	var discovery *discover.Service
	if cfg.Discovery.APIKey != "" {
		searcher := videosearch.NewYouTubeClient(cfg.Discovery.APIKey, cfg.Discovery.BaseURL)
		discovery = discover.NewService(searcher, embedder, &cfg.Discovery, logger)
	} else {
		logger.Info("discovery disabled (no api key configured)")
	}

	return &Components{
		Config:       cfg,
		Videos:       videos,
		Embedder:     embedder,
		Archive:      archive,
		VideoIndex:   videoIndex,
		KeywordIndex: keywordIndex,
		Recommender:  recommender,
		Discovery:    discovery,
	}, nil
}

func printUsage() {
	fmt.Println(`susume - Content-based video recommendation engine

Usage:
  susume server [flags]             Start the HTTP server
  susume index [flags] <video-id>   Add a video to the recommendation index
  susume similar [flags] <video-id> Recommend videos similar to an indexed one
  susume search [flags] <query>     Semantic search over the index
  susume discover [flags] <video-id> Suggest videos from the wider platform
  susume reindex [flags]            Rebuild the index from the video store
  susume remove [flags] <video-id>  Remove a video from the index
  susume stats [flags]              Show index statistics
  susume version                    Show version
  susume help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/susume/config.yaml)
  --debug            Enable debug logging

Similar/Search Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --k int            Number of results (default from config)
  --output string    Output format: text or json (default: text)

Discover Flags:
  --server string    Server URL (default: http://localhost:8080)
  --script string    Raw script text to seed discovery instead of a video id
  --k int            Number of suggestions (default from config)

Examples:
  susume server
  susume index --title "Intro to Go" vid-123
  susume similar vid-123
  susume search "rust borrow checker"
  susume discover vid-123
  susume discover --script "today we cover sourdough starters"
  susume reindex
  susume stats --output json`)
}
