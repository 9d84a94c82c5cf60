package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-tailor/resume/model"
	"resume-tailor/resume/render"
)

const (
	sampleTitle   = "Senior Data Analyst"
	sampleCompany = "Acme Corp"
)

// renderdemo renders every document type from the built-in profile with
// canned content, so template changes can be checked without model keys.
func main() {
	outDir := flag.String("out", "./out", "output directory for the generated DOCX files")
	profile := flag.String("profile", "", "profile YAML (defaults to the built-in profile)")
	flag.Parse()

	facts, err := model.LoadFacts(*profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load profile failed: %v\n", err)
		os.Exit(1)
	}
	data := sampleResumeData(facts)

	docs := map[string]func() ([]byte, error){
		"sample_resume.docx": func() ([]byte, error) { return render.RenderResume(facts, data) },
		"sample_cover_letter.docx": func() ([]byte, error) {
			return render.RenderCoverLetter(facts, sampleLetter, sampleTitle, sampleCompany, time.Now())
		},
		"sample_cheatsheet.docx": func() ([]byte, error) { return render.RenderCheatsheet(sampleCheatsheet) },
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir failed: %v\n", err)
		os.Exit(1)
	}
	for name, build := range docs {
		path := filepath.Join(*outDir, name)
		docx, err := build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "render %s failed: %v\n", name, err)
			os.Exit(1)
		}
		if err := os.WriteFile(path, docx, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			os.Exit(1)
		}
		if err := validateRenderedDocx(path); err != nil {
			fmt.Fprintf(os.Stderr, "render validation failed for %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("OK: wrote %s\n", path)
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err == nil {
		err = os.WriteFile(filepath.Join(*outDir, "sample_resume_data.json"), payload, 0o644)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "write resume data failed: %v\n", err)
		os.Exit(1)
	}
}

func sampleResumeData(facts model.StaticResumeFacts) model.GeneratedResumeData {
	exp := make(model.TailoredExperience, len(facts.Employers))
	for _, emp := range facts.Employers {
		exp[emp.Name] = model.FallbackRole(emp, sampleTitle)
	}
	return model.GeneratedResumeData{
		Skills: model.TailoredSkills{
			Technical: "SQL, Power BI, Python, Excel, Tableau, ETL",
			Soft:      "Stakeholder communication, Requirements gathering, Problem solving",
		},
		Experience: exp,
	}
}

const sampleLetter = `I am excited to apply for the Senior Data Analyst role at Acme Corp. Over the past five years I have built reporting that teams actually use, from Power BI dashboards tracking operational KPIs to automated SQL pipelines that cut reporting time by 40%.

At Conduent I analyze more than 10,000 document records to find error trends and rebalance workloads. That work depends on the same mix of data modelling and stakeholder partnership your posting describes.

I would welcome the chance to discuss how I can help Acme Corp turn its data into decisions.`

const sampleCheatsheet = `# Interview Cheatsheet: Senior Data Analyst at Acme Corp

## Key talking points
- Power BI dashboards for document processing KPIs
- 40% faster reporting through SQL automation

## Likely questions
1. Walk us through a dashboard you built end to end.
2. How do you validate data quality before reporting?

## Questions to ask
- How does the analytics team partner with operations?`

func validateRenderedDocx(path string) error {
	docxBytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	reader, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		return err
	}

	for _, file := range reader.File {
		if strings.ReplaceAll(file.Name, "\\", "/") != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		text := string(content)
		for _, marker := range []string{"{{", "}}", "**"} {
			if pos := strings.Index(text, marker); pos != -1 {
				return fmt.Errorf("unresolved markup near: %s", snippetAround(text, pos, 200))
			}
		}
		return nil
	}

	return fmt.Errorf("document.xml not found in docx")
}

func snippetAround(text string, pos, maxLen int) string {
	start := pos - maxLen/2
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
