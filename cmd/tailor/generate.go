package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"resume-tailor/internal/bootstrap"
	"resume-tailor/internal/jobfetch"
	"resume-tailor/internal/llm/failover"
	"resume-tailor/internal/shared/util"
	"resume-tailor/resume/model"
	"resume-tailor/resume/render"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a tailored résumé DOCX",
	Long:  "Rewrite the profile's skills and experience for the job and render the result as a DOCX résumé. --json also writes the generated data.",
	RunE:  runGenerate,
}

var (
	generateJob     jobFlags
	generateOutDir  string
	generateOut     string
	generateJSONOut string
)

func init() {
	generateJob.register(generateCmd)
	generateCmd.Flags().StringVar(&generateOutDir, "out-dir", "./out", "Directory for the rendered DOCX")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Explicit DOCX path (overrides --out-dir)")
	generateCmd.Flags().StringVar(&generateJSONOut, "json", "", "Also write the generated résumé data as JSON (\"-\" for stdout)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	posting, err := generateJob.resolve(ctx)
	if err != nil {
		return err
	}
	app, err := loadPipeline()
	if err != nil {
		return err
	}

	data, title, err := generateResume(ctx, app, posting)
	if err != nil {
		return err
	}
	if generateJSONOut != "" {
		raw, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		if err := writeOutput(generateJSONOut, append(raw, '\n')); err != nil {
			return err
		}
	}

	docx, err := render.RenderResume(app.Facts, data)
	if err != nil {
		return fmt.Errorf("failed to render résumé: %w", err)
	}
	name := util.ArtifactFileName("resume", title, posting.Company)
	return writeOutput(outputPath(generateOut, generateOutDir, name), docx)
}

// generateResume resolves the title and runs the résumé prompt. The error
// branch of the generated data becomes a Go error.
func generateResume(ctx context.Context, app *bootstrap.App, posting jobfetch.Posting) (model.GeneratedResumeData, string, error) {
	title := app.Tailor.ExtractJobTitle(ctx, posting.Title, posting.Description, 0)
	data := app.Tailor.GenerateResumeData(ctx, posting.Description, title, 0)
	if data.Failed() {
		if failover.IsSentinel(data.Error) {
			return data, title, fmt.Errorf("%w: %s", failover.ErrExhausted, data.Error)
		}
		return data, title, fmt.Errorf("résumé generation failed: %s", data.Error)
	}
	return data, title, nil
}
