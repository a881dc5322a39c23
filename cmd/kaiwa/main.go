// Package main is the Kaiwa CLI entry point.
package main

import (
	"bufio"
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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/agent"
	"github.com/hyperjump/kaiwa/internal/career"
	"github.com/hyperjump/kaiwa/internal/cli"
	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/embedding"
	"github.com/hyperjump/kaiwa/internal/extract"
	"github.com/hyperjump/kaiwa/internal/faq"
	"github.com/hyperjump/kaiwa/internal/keyword"
	"github.com/hyperjump/kaiwa/internal/llm"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/retrieval"
	"github.com/hyperjump/kaiwa/internal/server"
	"github.com/hyperjump/kaiwa/internal/session"
	"github.com/hyperjump/kaiwa/internal/storage"
	"github.com/hyperjump/kaiwa/internal/watcher"
	"github.com/hyperjump/kaiwa/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kaiwa/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "kaiwa server" from the project dir uses the project's
// config (including debug).
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
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "chat":
		runChat()
	case "build":
		runBuild()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kaiwa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Kaiwa - conversational assistant over a question/answer corpus

Usage:
  kaiwa server [flags]     Start the HTTP API server
  kaiwa chat [flags]       Chat interactively on the terminal
  kaiwa build [flags]      Build the corpus and embeddings from the source document
  kaiwa status [flags]     Show corpus and archive statistics
  kaiwa version            Show version
  kaiwa help               Show this help

Common flags:
  -config <path>           Config file path (default ` + defaultConfigPath + `)
  -debug                   Enable debug logging`)
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

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Corpus.Watch {
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		w := watcher.New(cfg.Corpus.SourcePath, func() {
			if err := components.Rebuild(context.Background()); err != nil {
				logger.Warn("corpus rebuild failed", zap.Error(err))
			}
		}, watchOpts...)
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(
		components.Router,
		components.Store,
		components.Archive,
		&cfg.Server,
		logger,
		cfg.Embedding.Type,
		cfg.Retrieval.Threshold,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	sessionID := fs.String("session", "", "session id (empty = new session)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	serverURL := fs.String("server", "", "server base URL (empty = run in-process)")
	_ = fs.Parse(os.Args[2:])

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var turn turnFunc
	if *serverURL != "" {
		turn = remoteTurn(*serverURL)
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug || *debug)
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		components, err := initializeComponents(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize components", zap.Error(err))
		}
		defer components.Close()
		turn = localTurn(components)
	}

	// One-shot when a message is given as arguments.
	if fs.NArg() > 0 {
		text := strings.TrimSpace(strings.Join(fs.Args(), " "))
		resp, err := turn(context.Background(), *sessionID, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Turn failed: %v\n", err)
			os.Exit(1)
		}
		_ = cli.WriteTurn(os.Stdout, resp, format)
		return
	}

	fmt.Println("Type a message and press enter. Ctrl-D to exit.")
	id := *sessionID
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if lower := strings.ToLower(text); lower == "bye" || lower == "quit" {
			fmt.Println("Goodbye!")
			break
		}
		resp, err := turn(context.Background(), id, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Turn failed: %v\n", err)
			continue
		}
		id = resp.SessionID
		_ = cli.WriteTurn(os.Stdout, resp, format)
	}
}

type turnFunc func(ctx context.Context, sessionID, text string) (*models.TurnResponse, error)

func localTurn(components *Components) turnFunc {
	return func(ctx context.Context, sessionID, text string) (*models.TurnResponse, error) {
		result, err := components.Router.Turn(ctx, sessionID, text)
		if err != nil {
			return nil, err
		}
		return &models.TurnResponse{
			SessionID:    result.SessionID,
			Reply:        result.Reply,
			Alternatives: result.Alternatives,
		}, nil
	}
}

func remoteTurn(baseURL string) turnFunc {
	client := &http.Client{Timeout: 2 * time.Minute}
	return func(ctx context.Context, sessionID, text string) (*models.TurnResponse, error) {
		body, err := json.Marshal(models.TurnRequest{SessionID: sessionID, Text: text})
		if err != nil {
			return nil, err
		}
		url := strings.TrimRight(baseURL, "/") + "/api/v1/turns"
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			data, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		var out models.TurnResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, err
		}
		return &out, nil
	}
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if err := components.Rebuild(context.Background()); err != nil {
		fmt.Printf("Build failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Corpus built: %d entries\n", components.Store.Len())
	fmt.Printf("  corpus:     %s\n", cfg.Corpus.CorpusPath)
	fmt.Printf("  embeddings: %s\n", cfg.Corpus.EmbeddingsPath)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	fmt.Printf("Config:          %s\n", resolvedConfigPath)
	fmt.Printf("Corpus entries:  %d\n", components.Store.Len())
	fmt.Printf("Embedding type:  %s (%d dimensions)\n", cfg.Embedding.Type, components.Embedder.Dimensions())
	if components.Archive != nil {
		sessions, messages, err := components.Archive.Counts(context.Background())
		if err != nil {
			fmt.Printf("Archive:         unavailable (%v)\n", err)
			return
		}
		fmt.Printf("Archived:        %d sessions, %d messages\n", sessions, messages)
	}
}

// Components holds initialized services.
type Components struct {
	Store        *faq.Store
	Embedder     embedding.Embedder
	KeywordIndex *keyword.Index
	Engine       *retrieval.Engine
	Sessions     *session.Store
	Archive      *storage.TranscriptStore
	Router       *agent.Router
}

func (c *Components) Close() {
	if c.Sessions != nil {
		c.Sessions.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Archive != nil {
		_ = c.Archive.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// Rebuild rebuilds the corpus from the source document and refreshes the
// keyword index to match.
func (c *Components) Rebuild(ctx context.Context) error {
	if err := c.Store.Rebuild(ctx); err != nil {
		return err
	}
	entries, _ := c.Store.Snapshot()
	return c.KeywordIndex.Reindex(ctx, entries)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		// The ONNX runtime is optional at run time; degrade to the mock
		// embedder rather than refusing to start.
		if cfg.Embedding.Type != "onnx" {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		logger.Warn("ONNX embedder unavailable, using mock embedder", zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	}

	store := faq.NewStore(
		cfg.Corpus.SourcePath,
		cfg.Corpus.CorpusPath,
		cfg.Corpus.EmbeddingsPath,
		extract.NewExtractor(),
		embedder,
		faq.WithLogger(logger),
	)
	if err := store.Load(context.Background()); err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	keywordIndex, err := keyword.NewIndex(cfg.Retrieval.KeywordIndexPath)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	entries, _ := store.Snapshot()
	if err := keywordIndex.Reindex(context.Background(), entries); err != nil {
		_ = keywordIndex.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to build keyword index: %w", err)
	}

	engine := retrieval.NewEngine(
		store,
		embedder,
		retrieval.NewPolicy(cfg.Retrieval.Threshold),
		cfg.Retrieval.TopK,
		retrieval.WithLogger(logger),
		retrieval.WithKeywordFallback(keywordIndex, cfg.Retrieval.MinKeywordScore),
	)

	sessions := session.NewStore(
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		session.WithLogger(logger),
	)

	llmTimeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second
	apiKey := os.Getenv(cfg.LLM.APIKeyEnv)
	generator := llm.NewOpenAIGenerator(
		cfg.LLM.BaseURL, apiKey, cfg.LLM.Model,
		cfg.LLM.Temperature, cfg.LLM.MaxTokens, llmTimeout,
	)
	// Classification and extraction want deterministic output.
	classifier := llm.NewOpenAIGenerator(
		cfg.LLM.BaseURL, apiKey, cfg.LLM.Model,
		0, cfg.LLM.MaxTokens, llmTimeout,
	)

	routerOpts := []agent.RouterOption{
		agent.WithLogger(logger),
		agent.WithCallTimeout(llmTimeout),
	}
	if cfg.Career.URL != "" {
		routerOpts = append(routerOpts, agent.WithCareerSource(
			career.NewHTTPSource(cfg.Career.URL, time.Duration(cfg.Career.TimeoutSecs)*time.Second)))
	}

	var archive *storage.TranscriptStore
	if cfg.Session.TranscriptDBPath != "" {
		archive, err = storage.NewTranscriptStore(cfg.Session.TranscriptDBPath)
		if err != nil {
			_ = keywordIndex.Close()
			_ = embedder.Close()
			sessions.Close()
			return nil, fmt.Errorf("failed to initialize transcript archive: %w", err)
		}
		routerOpts = append(routerOpts, agent.WithArchive(archive))
	}

	router := agent.NewRouter(classifier, generator, engine, sessions, routerOpts...)

	return &Components{
		Store:        store,
		Embedder:     embedder,
		KeywordIndex: keywordIndex,
		Engine:       engine,
		Sessions:     sessions,
		Archive:      archive,
		Router:       router,
	}, nil
}
