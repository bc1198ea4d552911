package main

import (
	"fmt"
	"strings"

	"github.com/webdex/webdex"
)

// Run executes the repo command.
func (c *RepoCmd) Run(deps *Dependencies) error {
	owner, name, ok := strings.Cut(c.Repo, "/")
	if !ok || owner == "" || name == "" {
		fmt.Fprintf(deps.Stderr, "error: repository must be owner/name, got %q\n", c.Repo)
		return webdex.Errorf(webdex.EINVALID, "repository must be owner/name, got %q", c.Repo)
	}

	target := webdex.RepoTarget{
		Owner:      owner,
		Repo:       name,
		Branch:     c.Branch,
		Extensions: c.Extension,
		MaxFiles:   c.MaxFiles,
	}
	if err := target.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webdex.ErrorMessage(err))
		return err
	}

	job := &webdex.Job{Kind: webdex.JobKindRepo, Source: c.Repo}
	if err := deps.Jobs.CreateJob(deps.Ctx, job); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webdex.ErrorMessage(err))
		return err
	}
	_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobRunning, "")

	fmt.Fprintf(deps.Stdout, "Ingesting %s (job %s)\n", c.Repo, job.ID)

	files, err := deps.Github.Ingest(deps.Ctx, target, deps.Reporter, webdex.SubRange{Lo: 0, Hi: 70})
	if err != nil {
		_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobFailed, webdex.ErrorMessage(err))
		fmt.Fprintf(deps.Stderr, "error ingesting: %s\n", webdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "  Pulled %d files\n", len(files))

	if err := deps.Files.CreateFiles(deps.Ctx, job.ID, files); err != nil {
		_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobFailed, webdex.ErrorMessage(err))
		fmt.Fprintf(deps.Stderr, "error: %s\n", webdex.ErrorMessage(err))
		return err
	}

	if err := indexFiles(deps, job.ID, files, c.ExportDir, c.Readable); err != nil {
		_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobFailed, webdex.ErrorMessage(err))
		fmt.Fprintf(deps.Stderr, "error indexing: %s\n", webdex.ErrorMessage(err))
		return err
	}

	_ = deps.Jobs.UpdateJobStatus(deps.Ctx, job.ID, webdex.JobCompleted, "")
	deps.Reporter.Progress(100)
	fmt.Fprintf(deps.Stdout, "Done. Search with: webdex search %s \"...\"\n", job.ID)
	return nil
}
