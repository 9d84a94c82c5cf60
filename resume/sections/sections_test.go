package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `
John Doe • johndoe@example.com • (123) 456-7890

PROFESSIONAL SUMMARY
Results-driven software engineer with 5+ years of experience.

## Work Experience:
Senior Software Engineer | Tech Company | Jan 2020 - Present
- Developed scalable microservices using Python and Django
- Led a team of 5 engineers

EDUCATION
BSc Computer Science | University | 2015-2019

Skills
Python, Go, SQL
`

func TestSegmentFindsSectionsInOrder(t *testing.T) {
	m, order := Segment(sampleCV)

	assert.Equal(t, Order{ContactInfo, ProfessionalSummary, ProfessionalExperience, Education, CoreSkills}, order)
	assert.Contains(t, m[ContactInfo], "johndoe@example.com")
	assert.Equal(t, "Results-driven software engineer with 5+ years of experience.", m[ProfessionalSummary])
	assert.True(t, strings.HasPrefix(m[ProfessionalExperience], "Senior Software Engineer"))
	assert.Equal(t, "Python, Go, SQL", m[CoreSkills])
}

func TestSegmentEmptyInputKeepsContactInfo(t *testing.T) {
	m, order := Segment("")
	require.Equal(t, Order{ContactInfo}, order)
	_, ok := m[ContactInfo]
	assert.True(t, ok)
}

func TestSegmentRepeatedHeadingAppends(t *testing.T) {
	m, order := Segment("Name\nProjects\nFirst\nEducation\nBSc\nProjects\nSecond")
	assert.Equal(t, Order{ContactInfo, Projects, Education}, order)
	assert.Equal(t, "First\nSecond", m[Projects])
}

func TestMatchHeadingRejectsBodyLines(t *testing.T) {
	_, ok := MatchHeading("Experience leading engineering teams")
	assert.False(t, ok)

	id, ok := MatchHeading("**Core Skills**")
	require.True(t, ok)
	assert.Equal(t, CoreSkills, id)
}

func TestReassembleIdentityRoundTrip(t *testing.T) {
	m, order := Segment(sampleCV)
	out := Reassemble(m, order)

	m2, order2 := Segment(out)
	assert.Equal(t, order, order2)
	for _, id := range order {
		assert.Equal(t, m[id], m2[id], "section %s", id)
	}
}

func TestReassembleOmitsEmptySections(t *testing.T) {
	m := Map{ContactInfo: "Jane", ProfessionalSummary: "  ", Education: "MSc"}
	out := Reassemble(m, Order{ContactInfo, ProfessionalSummary, Education})
	assert.Equal(t, "Jane\n\nEducation\nMSc", out)
}

func TestMarkdownUsesLevelTwoHeadings(t *testing.T) {
	m := Map{ContactInfo: "Jane", CoreSkills: "Go"}
	out := Markdown(m, Order{ContactInfo, CoreSkills})
	assert.Equal(t, "Jane\n\n## Core Skills\nGo", out)

	back, order := ParseMarkdown(out)
	assert.Equal(t, Order{ContactInfo, CoreSkills}, order)
	assert.Equal(t, "Go", back[CoreSkills])
}

func TestTailorableAllowList(t *testing.T) {
	assert.True(t, Tailorable[ProfessionalExperience])
	assert.False(t, Tailorable[Education])
	assert.False(t, Tailorable[ContactInfo])
}

func TestPrioritize(t *testing.T) {
	jd := `We are looking for a Senior Python Developer with:
- 5+ years of Python experience
- Strong Django framework knowledge
- Experience leading engineering teams`

	got := Prioritize(jd)
	require.NotEmpty(t, got)
	assert.Equal(t, ContactInfo, got[0])
	assert.Contains(t, got[:3], ProfessionalExperience)

	empty := Prioritize("")
	assert.Equal(t, ContactInfo, empty[0])
	assert.Contains(t, empty[:3], ProfessionalExperience)
}

func TestPrioritizeForcesExperienceIntoTopThree(t *testing.T) {
	got := Prioritize("skills skills python sql tools project project portfolio design")
	assert.Contains(t, got[:3], ProfessionalExperience)
	assert.Len(t, got, 7)
}
