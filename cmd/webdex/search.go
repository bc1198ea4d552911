package main

import (
	"fmt"

	"github.com/webdex/webdex"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	job, err := deps.Jobs.FindJobByID(deps.Ctx, c.Job)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webdex.ErrorMessage(err))
		return err
	}
	if job.Status != webdex.JobCompleted {
		fmt.Fprintf(deps.Stderr, "warning: job %s is %s, results may be incomplete\n", job.ID, job.Status)
	}

	collection := webdex.CollectionName(collectionPrefix, job.ID)
	matches, err := deps.Indexer.Search(deps.Ctx, collection, c.Query, c.Limit, c.Threshold)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webdex.ErrorMessage(err))
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintln(deps.Stdout, "No matches found.")
		return nil
	}

	for _, m := range matches {
		fmt.Fprintf(deps.Stdout, "%.3f  %s (%s#%d)\n", m.Score, m.Payload.Name, m.Payload.URL, m.Payload.Ordinal)
		fmt.Fprintf(deps.Stdout, "      %s\n", excerpt(m.Payload.Text, 200))
	}
	return nil
}

// excerpt truncates s to max bytes on a rune boundary.
func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
