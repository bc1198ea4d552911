package main

import (
	"fmt"
	"net/url"

	"github.com/webdex/webdex"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	seed, err := url.Parse(c.URL)
	if err != nil || seed.Scheme == "" || seed.Host == "" {
		fmt.Fprintf(deps.Stderr, "error: invalid seed URL %q\n", c.URL)
		return webdex.Errorf(webdex.EINVALID, "invalid seed URL %q", c.URL)
	}

	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = webdex.DefaultUserAgent
	}

	target := &webdex.CrawlTarget{
		Seeds:          []string{c.URL},
		AllowedDomains: append([]string{seed.Hostname()}, c.Domain...),
		BasePath:       c.BasePath,
		MaxDepth:       c.Depth,
		MaxPages:       c.Pages,
		Delay:          c.Delay,
		Concurrency:    c.Concurrency,
		UserAgent:      userAgent,
		Politeness:     !c.NoRobots,
		Sitemap:        c.Sitemap,
	}
	if err := target.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webdex.ErrorMessage(err))
		return err
	}

	job := &webdex.Job{Kind: webdex.JobKindCrawl, Source: c.URL}
	if err := deps.Jobs.CreateJob(deps.Ctx, job); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webdex.ErrorMessage(err))
		return err
	}
	_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobRunning, "")

	fmt.Fprintf(deps.Stdout, "Crawling %s (job %s)\n", c.URL, job.ID)

	result, err := deps.Crawler.Run(deps.Ctx, target, deps.Reporter, webdex.SubRange{Lo: 0, Hi: 70})
	if err != nil {
		_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobFailed, webdex.ErrorMessage(err))
		fmt.Fprintf(deps.Stderr, "error crawling: %s\n", webdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "  Processed %d pages: %d files, %d failed, %d skipped, %d disallowed\n",
		result.Processed, len(result.Files), result.Failed, result.Skipped, result.Disallowed)

	if err := deps.Files.CreateFiles(deps.Ctx, job.ID, result.Files); err != nil {
		_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobFailed, webdex.ErrorMessage(err))
		fmt.Fprintf(deps.Stderr, "error: %s\n", webdex.ErrorMessage(err))
		return err
	}

	if result.Status == webdex.JobCancelled {
		_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobCancelled, "")
		fmt.Fprintln(deps.Stdout, "Crawl cancelled")
		return nil
	}
	if len(result.Files) == 0 {
		err := webdex.Errorf(webdex.ENOTFOUND, "no pages with usable content found")
		_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobFailed, webdex.ErrorMessage(err))
		fmt.Fprintf(deps.Stderr, "error: %s\n", webdex.ErrorMessage(err))
		return err
	}

	if err := indexFiles(deps, job.ID, result.Files, c.ExportDir, c.Readable); err != nil {
		_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobFailed, webdex.ErrorMessage(err))
		fmt.Fprintf(deps.Stderr, "error indexing: %s\n", webdex.ErrorMessage(err))
		return err
	}

	_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobCompleted, "")
	deps.Reporter.Progress(100)
	fmt.Fprintf(deps.Stdout, "Done. Search with: webdex search %s \"...\"\n", job.ID)
	return nil
}
