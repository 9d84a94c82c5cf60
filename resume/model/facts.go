package model

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfile []byte

// DefaultContactName is used when neither the profile nor RESUME_NAME set a name.
const DefaultContactName = "Your Name"

// StaticResumeFacts is the candidate's fixed résumé content. It is loaded
// once at start-up and treated as read-only afterwards.
type StaticResumeFacts struct {
	Contact      Contact      `yaml:"contact" json:"contact" validate:"required"`
	Education    []Education  `yaml:"education" json:"education" validate:"dive"`
	Employers    []Employer   `yaml:"employers" json:"employers" validate:"min=1,dive"`
	Award        string       `yaml:"award" json:"award"`
	Organization Organization `yaml:"organization" json:"organization"`
}

// Contact holds the header lines of the résumé.
type Contact struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	City  string `yaml:"city" json:"city"`
	State string `yaml:"state" json:"state"`
	Zip   string `yaml:"zip" json:"zip"`
	Phone string `yaml:"phone" json:"phone"`
	Email string `yaml:"email" json:"email" validate:"omitempty,email"`
}

type Education struct {
	Institution string `yaml:"institution" json:"institution" validate:"required"`
	Location    string `yaml:"location" json:"location"`
	Degree      string `yaml:"degree" json:"degree" validate:"required"`
	Dates       string `yaml:"dates" json:"dates"`
	Courses     string `yaml:"courses" json:"courses"`
}

type Employer struct {
	Name            string   `yaml:"name" json:"name" validate:"required"`
	Location        string   `yaml:"location" json:"location"`
	Dates           string   `yaml:"dates" json:"dates" validate:"required"`
	OriginalTitle   string   `yaml:"original_title" json:"originalTitle"`
	OriginalBullets []string `yaml:"original_bullets" json:"originalBullets" validate:"min=3,dive,required"`
}

type Organization struct {
	Role  string `yaml:"role" json:"role"`
	Dates string `yaml:"dates" json:"dates"`
}

var validate = validator.New()

// LoadFacts reads a YAML profile from path, or the built-in profile when
// path is empty. ${VAR} references are expanded from the environment and
// RESUME_* variables override the contact block.
func LoadFacts(path string) (StaticResumeFacts, error) {
	raw := defaultProfile
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return StaticResumeFacts{}, fmt.Errorf("read profile: %w", err)
		}
		raw = data
	}
	return ParseFacts(raw)
}

// ParseFacts decodes and validates a YAML profile.
func ParseFacts(raw []byte) (StaticResumeFacts, error) {
	var facts StaticResumeFacts
	if err := yaml.Unmarshal(expandEnv(raw), &facts); err != nil {
		return StaticResumeFacts{}, fmt.Errorf("decode profile: %w", err)
	}
	applyContactEnv(&facts.Contact)
	if strings.TrimSpace(facts.Contact.Name) == "" {
		facts.Contact.Name = DefaultContactName
	}
	if err := facts.Validate(); err != nil {
		return StaticResumeFacts{}, err
	}
	return facts, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} only, so bare dollar amounts in bullets survive.
func expandEnv(raw []byte) []byte {
	return envRef.ReplaceAllFunc(raw, func(m []byte) []byte {
		name := envRef.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func applyContactEnv(c *Contact) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&c.Name, "RESUME_NAME")
	override(&c.City, "RESUME_CITY")
	override(&c.State, "RESUME_STATE")
	override(&c.Zip, "RESUME_ZIP")
	override(&c.Phone, "RESUME_PHONE")
	override(&c.Email, "RESUME_EMAIL")
}

// Validate checks required fields and unique employer names.
func (f StaticResumeFacts) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Employers))
	for _, e := range f.Employers {
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("invalid profile: duplicate employer %q", e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}

// Details renders "City, State Zip • Phone • Email", skipping empty parts.
func (c Contact) Details() string {
	place := strings.TrimSpace(c.City)
	if region := strings.TrimSpace(strings.TrimSpace(c.State) + " " + strings.TrimSpace(c.Zip)); region != "" {
		if place != "" {
			place += ", "
		}
		place += region
	}
	var parts []string
	for _, p := range []string{place, strings.TrimSpace(c.Phone), strings.TrimSpace(c.Email)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " • ")
}

// EmployerNames returns employer names in profile order.
func (f StaticResumeFacts) EmployerNames() []string {
	out := make([]string, 0, len(f.Employers))
	for _, e := range f.Employers {
		out = append(out, e.Name)
	}
	return out
}

// Employer looks up an employer by exact name.
func (f StaticResumeFacts) Employer(name string) (Employer, bool) {
	for _, e := range f.Employers {
		if e.Name == name {
			e.OriginalBullets = append([]string(nil), e.OriginalBullets...)
			return e, true
		}
	}
	return Employer{}, false
}

// FirstBullets returns up to n original bullets.
func (e Employer) FirstBullets(n int) []string {
	if n > len(e.OriginalBullets) {
		n = len(e.OriginalBullets)
	}
	return append([]string(nil), e.OriginalBullets[:n]...)
}

var errNoStartDate = errors.New("no parseable start date")

// StartYear is the earliest year any employer's date range begins.
func (f StaticResumeFacts) StartYear() (int, error) {
	year := 0
	for _, e := range f.Employers {
		start, err := parseStart(e.Dates)
		if err != nil {
			continue
		}
		if year == 0 || start.Year() < year {
			year = start.Year()
		}
	}
	if year == 0 {
		return 0, errNoStartDate
	}
	return year, nil
}

// TenureYears is now's year minus the earliest start year minus one, never negative.
func (f StaticResumeFacts) TenureYears(now time.Time) int {
	start, err := f.StartYear()
	if err != nil {
		return 0
	}
	years := now.Year() - start - 1
	if years < 0 {
		return 0
	}
	return years
}

// ExpectedGraduation returns the text after "Expected:" in the first
// education entry's dates, or the dates unchanged.
func (f StaticResumeFacts) ExpectedGraduation() string {
	if len(f.Education) == 0 {
		return ""
	}
	dates := f.Education[0].Dates
	if i := strings.LastIndex(dates, ": "); i >= 0 {
		return strings.TrimSpace(dates[i+2:])
	}
	return strings.TrimSpace(dates)
}

var startLayouts = []string{"Jan 2006", "January 2006", "01/2006", "2006"}

func parseStart(dates string) (time.Time, error) {
	first := dates
	for _, sep := range []string{"–", "—", " - ", "-"} {
		if i := strings.Index(first, sep); i >= 0 {
			first = first[:i]
			break
		}
	}
	first = strings.TrimSpace(first)
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, first); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse start %q: %w", dates, errNoStartDate)
}
