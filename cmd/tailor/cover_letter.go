package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"resume-tailor/internal/shared/util"
	"resume-tailor/resume/render"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter",
	Short: "Generate a cover letter DOCX",
	Long:  "Generate the tailored résumé data for the job, then write a cover letter grounded on it. --text prints the letter instead of rendering it.",
	RunE:  runCoverLetter,
}

var (
	coverJob    jobFlags
	coverOutDir string
	coverOut    string
	coverText   bool
)

func init() {
	coverJob.register(coverLetterCmd)
	coverLetterCmd.Flags().StringVar(&coverOutDir, "out-dir", "./out", "Directory for the rendered DOCX")
	coverLetterCmd.Flags().StringVarP(&coverOut, "out", "o", "", "Explicit DOCX path (overrides --out-dir)")
	coverLetterCmd.Flags().BoolVar(&coverText, "text", false, "Print the letter text instead of writing a DOCX")
	rootCmd.AddCommand(coverLetterCmd)
}

func runCoverLetter(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	posting, err := coverJob.resolve(ctx)
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
	letter, err := app.Tailor.GenerateCoverLetter(ctx, data, posting.Description, title, posting.Company, 0)
	if err != nil {
		return fmt.Errorf("cover letter generation failed: %w", err)
	}
	if coverText {
		fmt.Println(letter)
		return nil
	}

	docx, err := render.RenderCoverLetter(app.Facts, letter, title, posting.Company, time.Now())
	if err != nil {
		return fmt.Errorf("failed to render cover letter: %w", err)
	}
	name := util.ArtifactFileName("cover_letter", title, posting.Company)
	return writeOutput(outputPath(coverOut, coverOutDir, name), docx)
}
