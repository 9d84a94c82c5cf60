package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	docx "github.com/lukasjarosch/go-docx"

	"resume-tailor/resume/model"
)

// coverLetterSkeleton builds the letterhead with one {pN} placeholder per
// body paragraph. Placeholders are filled by go-docx so the letter text is
// never spliced into XML by hand.
func coverLetterSkeleton(paragraphs int) ([]byte, error) {
	d := newDocument(coverLetterPage)
	d.paragraph(paragraphOptions{align: "center"}, run{text: "{name}", style: StyleMap["name"]})
	d.paragraph(paragraphOptions{align: "center", spaceAfter: 240}, run{text: "{details}"})
	d.paragraph(paragraphOptions{spaceAfter: 240}, run{text: "{date}"})
	d.paragraph(paragraphOptions{}, run{text: "Hiring Manager"})
	d.paragraph(paragraphOptions{spaceAfter: 240}, run{text: "{company}"})
	d.paragraph(paragraphOptions{spaceAfter: 240}, run{text: "Re: "}, run{text: "{title}", style: StyleMap["roleLine"]})
	for i := 1; i <= paragraphs; i++ {
		d.paragraph(paragraphOptions{spaceAfter: 200}, run{text: fmt.Sprintf("{p%d}", i)})
	}
	return d.Bytes()
}

// letterParagraphs splits the letter on line breaks, dropping blank lines.
func letterParagraphs(letter string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(letter, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// RenderCoverLetter writes the letter under a letterhead built from facts.
func RenderCoverLetter(facts model.StaticResumeFacts, letter, title, company string, date time.Time) ([]byte, error) {
	paragraphs := letterParagraphs(letter)
	if len(paragraphs) == 0 {
		return nil, ErrNothingToRender
	}

	skeleton, err := coverLetterSkeleton(len(paragraphs))
	if err != nil {
		return nil, err
	}

	doc, err := docx.OpenBytes(skeleton)
	if err != nil {
		return nil, fmt.Errorf("open cover letter skeleton: %w", err)
	}
	defer doc.Close()

	if strings.TrimSpace(company) == "" {
		company = "Hiring Team"
	}
	values := docx.PlaceholderMap{
		"name":    facts.Contact.Name,
		"details": facts.Contact.Details(),
		"date":    date.Format("January 2, 2006"),
		"company": company,
		"title":   title,
	}
	for i, p := range paragraphs {
		values[fmt.Sprintf("p%d", i+1)] = p
	}
	if err := doc.ReplaceAll(values); err != nil {
		return nil, fmt.Errorf("fill cover letter: %w", err)
	}

	var out bytes.Buffer
	if err := doc.Write(&out); err != nil {
		return nil, fmt.Errorf("write cover letter: %w", err)
	}
	return out.Bytes(), nil
}
