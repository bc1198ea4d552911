// Package github ingests documentation files from a repository tree
// listing. It pulls the recursive tree for a branch, filters files by
// extension, and fetches the raw contents concurrently.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/webdex/webdex"
)

// DefaultBranch is used when the target does not name one.
const DefaultBranch = "main"

// DefaultConcurrency bounds parallel raw-content fetches.
const DefaultConcurrency = 4

// DefaultExtensions is the documentation file set ingested when the target
// does not restrict extensions.
var DefaultExtensions = []string{".md", ".mdx", ".markdown", ".rst", ".txt"}

// Client pulls repository files through the GitHub REST and raw-content
// endpoints. All requests go through a retrying Fetcher.
type Client struct {
	fetcher     webdex.Fetcher
	apiBase     string
	rawBase     string
	token       string
	concurrency int
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets a bearer token for authenticated requests.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithBaseURLs overrides the API and raw-content endpoints, primarily
// for tests and GitHub Enterprise installs.
func WithBaseURLs(apiBase, rawBase string) Option {
	return func(c *Client) {
		c.apiBase = strings.TrimSuffix(apiBase, "/")
		c.rawBase = strings.TrimSuffix(rawBase, "/")
	}
}

// WithConcurrency bounds parallel raw-content fetches.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewClient creates a Client using fetcher for all HTTP traffic.
func NewClient(fetcher webdex.Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher:     fetcher,
		apiBase:     "https://api.github.com",
		rawBase:     "https://raw.githubusercontent.com",
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// treeResponse is the recursive tree listing envelope.
type treeResponse struct {
	SHA       string      `json:"sha"`
	Tree      []treeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

// Ingest lists the repository tree and returns one FileEntry per matching
// file, in tree-listing order. Individual file failures are logged and
// skipped; a failed tree listing aborts the run.
func (c *Client) Ingest(ctx context.Context, target webdex.RepoTarget, reporter webdex.Reporter, sub webdex.SubRange) ([]webdex.FileEntry, error) {
	if reporter == nil {
		reporter = webdex.NopReporter{}
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	branch := target.Branch
	if branch == "" {
		branch = DefaultBranch
	}

	entries, err := c.listTree(ctx, target, branch, reporter)
	if err != nil {
		return nil, err
	}

	paths := filterTree(entries, target.Extensions, target.MaxFiles)
	if len(paths) == 0 {
		return nil, webdex.Errorf(webdex.ENOTFOUND, "no matching files in %s/%s@%s", target.Owner, target.Repo, branch)
	}
	reporter.Log(webdex.LevelInfo, fmt.Sprintf("ingesting %d files from %s/%s@%s", len(paths), target.Owner, target.Repo, branch))

	files := make([]webdex.FileEntry, len(paths))
	fetched := make([]bool, len(paths))

	var mu sync.Mutex
	var done int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			entry, err := c.fetchFile(gctx, target, branch, p)
			if err != nil {
				reporter.Log(webdex.LevelWarn, fmt.Sprintf("skipping %s: %v", p, err))
			} else {
				files[i] = entry
				fetched[i] = true
			}

			mu.Lock()
			done++
			pct := sub.Pct(done, len(paths))
			mu.Unlock()
			reporter.Progress(pct)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Compact in order, dropping the skipped slots.
	out := files[:0]
	for i := range files {
		if fetched[i] {
			out = append(out, files[i])
		}
	}
	if len(out) == 0 {
		return nil, webdex.Errorf(webdex.EUNAVAILABLE, "all %d file fetches failed for %s/%s", len(paths), target.Owner, target.Repo)
	}
	return out, nil
}

// listTree fetches the recursive tree listing for branch.
func (c *Client) listTree(ctx context.Context, target webdex.RepoTarget, branch string, reporter webdex.Reporter) ([]treeEntry, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", c.apiBase, target.Owner, target.Repo, branch)
	resp, err := c.fetcher.Fetch(ctx, &webdex.FetchRequest{URL: url, Header: c.header()})
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, webdex.Errorf(webdex.ENOTFOUND, "repository %s/%s@%s not found", target.Owner, target.Repo, branch)
	case !resp.OK():
		return nil, webdex.Errorf(webdex.EINTERNAL, "tree listing for %s/%s returned HTTP %d", target.Owner, target.Repo, resp.StatusCode)
	}

	var tree treeResponse
	if err := json.Unmarshal(resp.Body, &tree); err != nil {
		return nil, webdex.Errorf(webdex.EINTERNAL, "invalid tree listing: %v", err)
	}
	if tree.Truncated {
		reporter.Log(webdex.LevelWarn, fmt.Sprintf("tree listing for %s/%s is truncated", target.Owner, target.Repo))
	}
	return tree.Tree, nil
}

// fetchFile pulls one raw file and wraps it as a FileEntry.
func (c *Client) fetchFile(ctx context.Context, target webdex.RepoTarget, branch, filePath string) (webdex.FileEntry, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBase, target.Owner, target.Repo, branch, filePath)
	resp, err := c.fetcher.Fetch(ctx, &webdex.FetchRequest{URL: url, Header: c.header()})
	if err != nil {
		return webdex.FileEntry{}, err
	}
	if !resp.OK() {
		return webdex.FileEntry{}, webdex.Errorf(webdex.EUNAVAILABLE, "raw fetch returned HTTP %d", resp.StatusCode)
	}

	viewURL := fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", target.Owner, target.Repo, branch, filePath)
	return webdex.NewFileEntry(filePath, viewURL, webdex.FileTypeRepo, string(resp.Body)), nil
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

// filterTree keeps blob paths whose extension matches, capped at maxFiles.
func filterTree(entries []treeEntry, extensions []string, maxFiles int) []string {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	var paths []string
	for _, entry := range entries {
		if entry.Type != "blob" {
			continue
		}
		ext := strings.ToLower(path.Ext(entry.Path))
		if !extensionAllowed(ext, extensions) {
			continue
		}
		paths = append(paths, entry.Path)
		if maxFiles > 0 && len(paths) >= maxFiles {
			break
		}
	}
	return paths
}

func extensionAllowed(ext string, extensions []string) bool {
	for _, allowed := range extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
