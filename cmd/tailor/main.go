// Package main is the command-line front end for the résumé tailoring
// pipeline. It runs the same generation steps as the HTTP API against local
// files, and can also serve the API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "tailor",
	Short:        "Tailor a résumé to a job posting",
	Long:         "tailor rewrites the candidate profile for one job description and produces DOCX résumés, cover letters, interview cheatsheets and ATS reports.",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
