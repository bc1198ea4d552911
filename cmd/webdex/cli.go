package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/webdex/webdex"
	"github.com/webdex/webdex/crawl"
	"github.com/webdex/webdex/github"
	"github.com/webdex/webdex/index"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Reporter webdex.Reporter

	Jobs  webdex.JobService
	Files webdex.FileService

	Fetcher  webdex.Fetcher
	Crawler  *crawl.Crawler
	Github   *github.Client
	Embedder webdex.Embedder
	Store    webdex.VectorStore
	Indexer  *index.Indexer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Crawl  CrawlCmd  `cmd:"" help:"Crawl a documentation site and index its pages"`
	Repo   RepoCmd   `cmd:"" help:"Ingest and index documentation files from a repository"`
	Search SearchCmd `cmd:"" help:"Search the indexed chunks of a job"`
	Jobs   JobsCmd   `cmd:"" help:"List ingestion jobs"`

	Verbose bool `short:"v" help:"Enable debug logging"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL         string        `arg:"" help:"Seed URL to crawl"`
	Domain      []string      `short:"d" help:"Additional allowed domain (repeatable; seed host is always allowed)"`
	BasePath    string        `help:"Restrict discovered links to paths under this prefix"`
	Depth       int           `default:"3" help:"Link-following depth from the seed"`
	Pages       int           `default:"200" help:"Page budget for the run"`
	Delay       time.Duration `default:"500ms" help:"Minimum spacing between requests to the same host"`
	Concurrency int           `short:"c" default:"4" help:"Concurrent fetch limit"`
	UserAgent   string        `help:"User agent sent with requests and matched against robots groups"`
	NoRobots    bool          `help:"Skip robots.txt checks (use only on sites you control)"`
	Sitemap     bool          `default:"true" negatable:"" help:"Seed the crawl from sitemap discovery"`
	ExportDir   string        `help:"Directory for the JSONL chunk export"`
	Readable    bool          `help:"Also write a readable markdown mirror next to the JSONL export"`
}

// RepoCmd is the "repo" subcommand.
type RepoCmd struct {
	Repo        string   `arg:"" help:"Repository as owner/name"`
	Branch      string   `short:"b" help:"Branch to ingest (defaults to main)"`
	Extension   []string `short:"e" name:"ext" help:"File extension to ingest (repeatable; defaults to documentation files)"`
	MaxFiles    int      `default:"200" help:"File budget for the run"`
	Concurrency int      `short:"c" default:"4" help:"Concurrent fetch limit"`
	ExportDir   string   `help:"Directory for the JSONL chunk export"`
	Readable    bool     `help:"Also write a readable markdown mirror next to the JSONL export"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Job       string  `arg:"" help:"Job ID whose collection to search"`
	Query     string  `arg:"" help:"Query text"`
	Limit     int     `short:"n" default:"5" help:"Maximum number of results"`
	Threshold float32 `help:"Minimum similarity score (0 disables)"`
}

// JobsCmd is the "jobs" subcommand.
type JobsCmd struct{}
