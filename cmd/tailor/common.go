package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"resume-tailor/internal/bootstrap"
	"resume-tailor/internal/jobfetch"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/telemetry"
)

// loadPipeline builds the provider chain and profile without any storage.
// Logs go to stderr so stdout stays usable for JSON and markdown output.
func loadPipeline() (*bootstrap.App, error) {
	cfg := config.Load()
	telemetry.Configure(os.Stderr, cfg.LogLevel)
	return bootstrap.BuildPipeline(cfg)
}

// jobFlags is the set of flags every generation command takes to describe
// the target job.
type jobFlags struct {
	descriptionFile string
	url             string
	title           string
	company         string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.descriptionFile, "jd", "", "Path to a job description text file")
	cmd.Flags().StringVar(&f.url, "url", "", "Job posting URL to fetch instead of --jd")
	cmd.Flags().StringVar(&f.title, "title", "", "Target job title (extracted from the description when empty)")
	cmd.Flags().StringVar(&f.company, "company", "", "Company name used in file names and the cover letter")
}

// resolve reads the description from disk or fetches it. Explicit title and
// company flags win over values scraped from the posting.
func (f *jobFlags) resolve(ctx context.Context) (jobfetch.Posting, error) {
	hasFile := strings.TrimSpace(f.descriptionFile) != ""
	hasURL := strings.TrimSpace(f.url) != ""
	if hasFile == hasURL {
		return jobfetch.Posting{}, fmt.Errorf("exactly one of --jd or --url is required")
	}

	var posting jobfetch.Posting
	if hasFile {
		raw, err := os.ReadFile(f.descriptionFile)
		if err != nil {
			return jobfetch.Posting{}, fmt.Errorf("failed to read job description: %w", err)
		}
		posting.Description = strings.TrimSpace(string(raw))
		if posting.Description == "" {
			return jobfetch.Posting{}, fmt.Errorf("job description file %s is empty", f.descriptionFile)
		}
	} else {
		fetched, err := jobfetch.NewUnrestricted(0).Fetch(ctx, f.url)
		if err != nil {
			return jobfetch.Posting{}, err
		}
		posting = fetched
	}
	if t := strings.TrimSpace(f.title); t != "" {
		posting.Title = t
	}
	if c := strings.TrimSpace(f.company); c != "" {
		posting.Company = c
	}
	return posting, nil
}

// writeOutput writes data to path, or to stdout when path is "" or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}

// outputPath joins dir and name unless out names a file explicitly.
func outputPath(out, dir, name string) string {
	if out != "" {
		return out
	}
	return filepath.Join(dir, name)
}
