package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/webdex/webdex"
	"github.com/webdex/webdex/crawl"
	"github.com/webdex/webdex/gemini"
	"github.com/webdex/webdex/github"
	"github.com/webdex/webdex/goquery"
	"github.com/webdex/webdex/htmltomarkdown"
	webhttp "github.com/webdex/webdex/http"
	"github.com/webdex/webdex/index"
	"github.com/webdex/webdex/qdrant"
	"github.com/webdex/webdex/sqlite"
	webslog "github.com/webdex/webdex/slog"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Vector store endpoint. Set before calling Run().
	StoreURL string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	JobService  webdex.JobService
	FileService webdex.FileService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:   defaultDBPath(),
		StoreURL: defaultStoreURL(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webdex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webdex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger
	deps.Reporter = webslog.NewReporter(logger)

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set WEBDEX_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.JobService = sqlite.NewJobService(m.DB)
	m.FileService = sqlite.NewFileService(m.DB)
	deps.Jobs = m.JobService
	deps.Files = m.FileService

	fetcher := webslog.NewLoggingFetcher(webhttp.NewFetcher(webhttp.WithReporter(deps.Reporter)), logger)
	deps.Fetcher = fetcher

	if cmd == "crawl" {
		userAgent := cli.Crawl.UserAgent
		if userAgent == "" {
			userAgent = webdex.DefaultUserAgent
		}
		deps.Crawler = &crawl.Crawler{
			Fetcher:   fetcher,
			Sitemaps:  webslog.NewLoggingSitemapService(webhttp.NewDiscoverer(fetcher, userAgent), logger),
			Extractor: goquery.NewExtractor(),
			Links:     goquery.NewLinkExtractor(),
			Converter: htmltomarkdown.NewConverter(),
		}
	}

	if cmd == "repo" {
		deps.Github = github.NewClient(fetcher,
			github.WithToken(os.Getenv("GITHUB_TOKEN")),
			github.WithConcurrency(cli.Repo.Concurrency),
		)
	}

	// Commands that talk to the embedding service and vector store.
	if cmd == "crawl" || cmd == "repo" || cmd == "search" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		deps.Embedder = gemini.NewEmbedder(client)
		deps.Store = qdrant.NewClient(m.StoreURL, qdrant.WithAPIKey(os.Getenv("QDRANT_API_KEY")))
		deps.Indexer = index.NewIndexer(deps.Embedder, deps.Store)
	}

	return kongCtx.Run(deps)
}

// collectionPrefix namespaces vector store collections created by this tool.
const collectionPrefix = "webdex_"

func defaultDBPath() string {
	if path := os.Getenv("WEBDEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "webdex.db"
	}
	dir := filepath.Join(home, ".webdex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "webdex.db")
}

func defaultStoreURL() string {
	if url := os.Getenv("QDRANT_URL"); url != "" {
		return url
	}
	return "http://localhost:6333"
}
