package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"resume-tailor/internal/extract"
	"resume-tailor/internal/shared/util"
	"resume-tailor/resume/render"
)

var cheatsheetCmd = &cobra.Command{
	Use:   "cheatsheet",
	Short: "Generate an interview cheatsheet",
	Long:  "Write an interview preparation cheatsheet for the job. The résumé text comes from --cv when given, otherwise from a freshly generated tailored résumé.",
	RunE:  runCheatsheet,
}

var (
	cheatJob      jobFlags
	cheatCV       string
	cheatOutDir   string
	cheatOut      string
	cheatMarkdown bool
)

func init() {
	cheatJob.register(cheatsheetCmd)
	cheatsheetCmd.Flags().StringVar(&cheatCV, "cv", "", "PDF or DOCX résumé to prepare from")
	cheatsheetCmd.Flags().StringVar(&cheatOutDir, "out-dir", "./out", "Directory for the rendered DOCX")
	cheatsheetCmd.Flags().StringVarP(&cheatOut, "out", "o", "", "Explicit DOCX path (overrides --out-dir)")
	cheatsheetCmd.Flags().BoolVar(&cheatMarkdown, "markdown", false, "Print the markdown instead of writing a DOCX")
	rootCmd.AddCommand(cheatsheetCmd)
}

func runCheatsheet(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	posting, err := cheatJob.resolve(ctx)
	if err != nil {
		return err
	}
	app, err := loadPipeline()
	if err != nil {
		return err
	}

	var resumeText, title string
	if cheatCV != "" {
		resumeText, err = extract.ExtractFile(ctx, cheatCV)
		if err != nil {
			return fmt.Errorf("failed to read CV: %w", err)
		}
		title = app.Tailor.ExtractJobTitle(ctx, posting.Title, posting.Description, 0)
	} else {
		data, t, err := generateResume(ctx, app, posting)
		if err != nil {
			return err
		}
		resumeText, title = app.Tailor.PlainText(data), t
	}

	md, err := app.Tailor.GenerateCheatsheet(ctx, resumeText, posting.Description, title, 0)
	if err != nil {
		return fmt.Errorf("cheatsheet generation failed: %w", err)
	}
	if cheatMarkdown {
		fmt.Println(md)
		return nil
	}
	docx, err := render.RenderCheatsheet(md)
	if err != nil {
		return fmt.Errorf("failed to render cheatsheet: %w", err)
	}
	name := util.ArtifactFileName("cheatsheet", title, posting.Company)
	return writeOutput(outputPath(cheatOut, cheatOutDir, name), docx)
}
