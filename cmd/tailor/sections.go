package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-tailor/internal/extract"
	"resume-tailor/internal/llm/failover"
	"resume-tailor/internal/shared/util"
	"resume-tailor/resume/render"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Tailor an uploaded CV section by section",
	Long:  "Split a PDF or DOCX CV into sections, rewrite the tailorable ones for the job and render the result. Sections whose rewrite fails keep their original text.",
	RunE:  runSections,
}

var (
	sectionsJob      jobFlags
	sectionsCV       string
	sectionsOutDir   string
	sectionsOut      string
	sectionsMarkdown bool
)

func init() {
	sectionsJob.register(sectionsCmd)
	sectionsCmd.Flags().StringVar(&sectionsCV, "cv", "", "PDF or DOCX résumé to tailor (required)")
	sectionsCmd.Flags().StringVar(&sectionsOutDir, "out-dir", "./out", "Directory for the rendered DOCX")
	sectionsCmd.Flags().StringVarP(&sectionsOut, "out", "o", "", "Explicit DOCX path (overrides --out-dir)")
	sectionsCmd.Flags().BoolVar(&sectionsMarkdown, "markdown", false, "Print the tailored markdown instead of writing a DOCX")
	_ = sectionsCmd.MarkFlagRequired("cv")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	posting, err := sectionsJob.resolve(ctx)
	if err != nil {
		return err
	}
	cvText, err := extract.ExtractFile(ctx, sectionsCV)
	if err != nil {
		return fmt.Errorf("failed to read CV: %w", err)
	}
	app, err := loadPipeline()
	if err != nil {
		return err
	}

	res, err := app.Tailor.TailorSections(ctx, cvText, posting.Description, 0)
	if err != nil {
		if !errors.Is(err, failover.ErrExhausted) {
			return err
		}
		fmt.Fprintf(os.Stderr, "Warning: %s\n", failover.Sentinel)
	}
	fmt.Fprintf(os.Stderr, "tailored %d section(s), ATS score %d\n", len(res.Tailored), res.ATSScore)

	if sectionsMarkdown {
		fmt.Println(res.Markdown)
		return nil
	}
	docx, err := render.RenderSections(res.Sections, res.Order)
	if err != nil {
		return fmt.Errorf("failed to render sections: %w", err)
	}
	name := util.ArtifactFileName("tailored_cv", posting.Title, posting.Company)
	return writeOutput(outputPath(sectionsOut, sectionsOutDir, name), docx)
}
