package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"resume-tailor/internal/extract"
	"resume-tailor/resume/ats"
)

var atsCmd = &cobra.Command{
	Use:   "ats",
	Short: "Score a CV against a job description",
	Long:  "Compare the keywords of a PDF or DOCX CV with a job description. Prints the report as JSON; --xlsx also writes it as a workbook. No model calls are made.",
	RunE:  runATS,
}

var (
	atsJob  jobFlags
	atsCV   string
	atsXLSX string
)

func init() {
	atsJob.register(atsCmd)
	atsCmd.Flags().StringVar(&atsCV, "cv", "", "PDF or DOCX résumé to score (required)")
	atsCmd.Flags().StringVar(&atsXLSX, "xlsx", "", "Write the report workbook to this path")
	_ = atsCmd.MarkFlagRequired("cv")
	rootCmd.AddCommand(atsCmd)
}

func runATS(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	posting, err := atsJob.resolve(ctx)
	if err != nil {
		return err
	}
	cvText, err := extract.ExtractFile(ctx, atsCV)
	if err != nil {
		return fmt.Errorf("failed to read CV: %w", err)
	}
	report, err := ats.Analyze(cvText, posting.Description)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if atsXLSX == "" {
		return nil
	}
	var buf bytes.Buffer
	meta := ats.ReportMeta{JobTitle: posting.Title, Company: posting.Company, GeneratedAt: time.Now()}
	if err := ats.WriteWorkbook(&buf, report, meta); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return writeOutput(atsXLSX, buf.Bytes())
}
