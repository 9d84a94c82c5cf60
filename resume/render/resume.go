// Package render turns résumé content into .docx bytes.
package render

import (
	"errors"
	"strings"

	"resume-tailor/resume/model"
	"resume-tailor/resume/sections"
)

// ErrNothingToRender is returned when the input carries no printable content.
var ErrNothingToRender = errors.New("nothing to render")

// RenderResume lays out the static facts with the tailored roles and skills.
// Employers are written in profile order; an employer missing from data is
// left out.
func RenderResume(facts model.StaticResumeFacts, data model.GeneratedResumeData) ([]byte, error) {
	if data.Failed() {
		return nil, errors.New("cannot render failed resume data: " + data.Error)
	}
	if strings.TrimSpace(facts.Contact.Name) == "" {
		return nil, errors.New("full name is required")
	}

	d := newDocument(resumePage)
	writeContactHeader(d, facts.Contact.Name, facts.Contact.Details())

	if len(facts.Education) > 0 {
		sectionHeading(d, "EDUCATION")
		for _, edu := range facts.Education {
			d.paragraph(paragraphOptions{rightTab: true},
				run{text: edu.Institution, style: StyleMap["roleLine"]},
				run{text: tabbed(edu.Location)})
			d.paragraph(paragraphOptions{rightTab: true},
				run{text: edu.Degree, style: StyleMap["degree"]},
				run{text: tabbed(edu.Dates), style: StyleMap["roleLine"]})
			if edu.Courses != "" {
				d.paragraph(paragraphOptions{}, run{text: edu.Courses, style: StyleMap["meta"]})
			}
		}
	}

	sectionHeading(d, "RELEVANT EXPERIENCE")
	for _, emp := range facts.Employers {
		role, ok := data.Experience[emp.Name]
		if !ok {
			continue
		}
		d.paragraph(paragraphOptions{rightTab: true, spaceBefore: 80},
			run{text: emp.Name, style: StyleMap["roleLine"]},
			run{text: tabbed(emp.Location)})
		d.paragraph(paragraphOptions{rightTab: true},
			run{text: role.Role, style: StyleMap["roleLine"]},
			run{text: tabbed(emp.Dates), style: StyleMap["roleLine"]})
		for _, b := range role.Bullets {
			d.bullet(parseInline(b, RunStyle{})...)
		}
	}

	sectionHeading(d, "SKILLS")
	d.paragraph(paragraphOptions{},
		run{text: "Technical Skills: ", style: StyleMap["roleLine"]},
		run{text: data.Skills.Technical})
	d.paragraph(paragraphOptions{spaceBefore: 80},
		run{text: "Soft Skills: ", style: StyleMap["roleLine"]},
		run{text: data.Skills.Soft})

	if facts.Award != "" {
		sectionHeading(d, "AWARD")
		d.paragraph(paragraphOptions{}, run{text: facts.Award})
	}
	if facts.Organization.Role != "" {
		sectionHeading(d, "ORGANIZATIONS")
		d.paragraph(paragraphOptions{rightTab: true},
			run{text: facts.Organization.Role},
			run{text: tabbed(facts.Organization.Dates), style: StyleMap["roleLine"]})
	}

	return d.Bytes()
}

// RenderSections writes segmented (and possibly tailored) sections in order.
// The first contact line is styled as the name; e-mail addresses become
// mailto links.
func RenderSections(m sections.Map, order sections.Order) ([]byte, error) {
	d := newDocument(resumePage)
	wrote := false
	for _, id := range order {
		body := strings.TrimSpace(m[id])
		if body == "" {
			continue
		}
		wrote = true
		if id == sections.ContactInfo {
			lines := strings.Split(body, "\n")
			writeContactHeader(d, strings.TrimSpace(lines[0]), "")
			for _, line := range lines[1:] {
				if line = strings.TrimSpace(line); line != "" {
					d.paragraph(paragraphOptions{align: "center"}, linkEmails(line, RunStyle{})...)
				}
			}
			continue
		}
		sectionHeading(d, strings.ToUpper(sections.Title(id)))
		d.writeMarkdown(body)
	}
	if !wrote {
		return nil, ErrNothingToRender
	}
	return d.Bytes()
}

func writeContactHeader(d *document, name, details string) {
	d.paragraph(paragraphOptions{align: "center"}, linkEmails(name, StyleMap["name"])...)
	if details != "" {
		d.paragraph(paragraphOptions{align: "center", spaceAfter: 80}, linkEmails(details, RunStyle{})...)
	}
	d.paragraph(paragraphOptions{borderBottom: true})
}

func sectionHeading(d *document, text string) {
	d.paragraph(paragraphOptions{borderBottom: true, spaceBefore: 120, spaceAfter: 40},
		run{text: text, style: StyleMap["sectionHeading"]})
}

func tabbed(s string) string {
	if s == "" {
		return ""
	}
	return "\t" + s
}
