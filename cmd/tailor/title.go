package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Extract the job title from a job description",
	Long:  "Ask the model chain for the job title a posting is hiring for. A --title flag is returned as-is when it already looks like a title.",
	RunE:  runTitle,
}

var titleJob jobFlags

func init() {
	titleJob.register(titleCmd)
	rootCmd.AddCommand(titleCmd)
}

func runTitle(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	posting, err := titleJob.resolve(ctx)
	if err != nil {
		return err
	}
	app, err := loadPipeline()
	if err != nil {
		return err
	}
	fmt.Println(app.Tailor.ExtractJobTitle(ctx, posting.Title, posting.Description, 0))
	return nil
}
