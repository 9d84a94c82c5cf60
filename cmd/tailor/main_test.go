package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCommandFlagsValidation(t *testing.T) {
	jd := writeTemp(t, "jd.txt", "Data Analyst with SQL and Power BI")

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "sections requires --cv",
			args:        []string{"sections", "--jd", jd},
			errorString: "required flag",
		},
		{
			name:        "ats requires --cv",
			args:        []string{"ats", "--jd", jd},
			errorString: "required flag",
		},
		{
			name:        "migrate rejects unknown action",
			args:        []string{"migrate", "sideways"},
			errorString: "invalid argument",
		},
		{
			name:        "ats reports unreadable CV",
			args:        []string{"ats", "--jd", jd, "--cv", filepath.Join(t.TempDir(), "missing.pdf")},
			errorString: "failed to read CV",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atsCV, sectionsCV = "", ""
			err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestJobFlagsResolve(t *testing.T) {
	ctx := context.Background()

	_, err := (&jobFlags{}).resolve(ctx)
	assert.ErrorContains(t, err, "exactly one of --jd or --url")

	_, err = (&jobFlags{descriptionFile: "a.txt", url: "https://example.com"}).resolve(ctx)
	assert.ErrorContains(t, err, "exactly one of --jd or --url")

	empty := writeTemp(t, "empty.txt", "  \n")
	_, err = (&jobFlags{descriptionFile: empty}).resolve(ctx)
	assert.ErrorContains(t, err, "is empty")

	jd := writeTemp(t, "jd.txt", "  We are hiring a BI Analyst.\n")
	posting, err := (&jobFlags{descriptionFile: jd, title: " BI Analyst ", company: "Acme"}).resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "We are hiring a BI Analyst.", posting.Description)
	assert.Equal(t, "BI Analyst", posting.Title)
	assert.Equal(t, "Acme", posting.Company)
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "resume.docx")
	require.NoError(t, writeOutput(path, []byte("PK")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(got))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "x.docx", outputPath("x.docx", "./out", "resume.docx"))
	assert.Equal(t, filepath.Join("out", "resume.docx"), outputPath("", "out", "resume.docx"))
}
