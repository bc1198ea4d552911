package main

import (
	"fmt"

	"github.com/webdex/webdex"
)

// Run executes the jobs command.
func (c *JobsCmd) Run(deps *Dependencies) error {
	jobs, err := deps.Jobs.FindJobs(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webdex.ErrorMessage(err))
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(deps.Stdout, "No jobs found. Use 'webdex crawl' or 'webdex repo' to create one.")
		return nil
	}

	for _, j := range jobs {
		line := fmt.Sprintf("%s  %-5s  %-9s  %s", j.ID, j.Kind, j.Status, j.Source)
		if j.Error != "" {
			line += "  (" + j.Error + ")"
		}
		fmt.Fprintln(deps.Stdout, line)
	}
	return nil
}
