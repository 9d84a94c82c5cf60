package sessions

import (
	"time"

	"resume-tailor/resume/model"
	"resume-tailor/resume/sections"
)

// ArtifactKind names a downloadable document.
type ArtifactKind string

const (
	ArtifactResume      ArtifactKind = "resume"
	ArtifactTailoredCV  ArtifactKind = "tailored_cv"
	ArtifactCoverLetter ArtifactKind = "cover_letter"
	ArtifactCheatsheet  ArtifactKind = "cheatsheet"
)

// ParseArtifactKind validates a kind taken from a URL.
func ParseArtifactKind(raw string) (ArtifactKind, bool) {
	switch k := ArtifactKind(raw); k {
	case ArtifactResume, ArtifactTailoredCV, ArtifactCoverLetter, ArtifactCheatsheet:
		return k, true
	default:
		return "", false
	}
}

// Session is everything one user has produced so far. Artifacts maps a kind
// to the object store key of its rendered document; entries are dropped
// whenever their inputs change.
type Session struct {
	ID               string                     `json:"id"`
	OriginalCV       string                     `json:"originalCv,omitempty"`
	OriginalFileName string                     `json:"originalFileName,omitempty"`
	UploadKey        string                     `json:"uploadKey,omitempty"`
	JobDescription   string                     `json:"jobDescription,omitempty"`
	JobURL           string                     `json:"jobUrl,omitempty"`
	JobTitle         string                     `json:"jobTitle,omitempty"`
	Company          string                     `json:"company,omitempty"`
	ResumeData       *model.GeneratedResumeData `json:"resumeData,omitempty"`
	Finalized        bool                       `json:"finalized"`
	Sections         sections.Map               `json:"sections,omitempty"`
	SectionOrder     sections.Order             `json:"sectionOrder,omitempty"`
	TailoredSections []sections.ID              `json:"tailoredSections,omitempty"`
	EditedMarkdown   string                     `json:"editedMarkdown,omitempty"`
	SectionATSScore  int                        `json:"sectionAtsScore,omitempty"`
	CoverLetter      string                     `json:"coverLetter,omitempty"`
	Cheatsheet       string                     `json:"cheatsheet,omitempty"`
	Artifacts        map[ArtifactKind]string    `json:"artifacts,omitempty"`
	ProviderIndex    int                        `json:"providerIndex"`
	CreatedAt        time.Time                  `json:"createdAt"`
	UpdatedAt        time.Time                  `json:"updatedAt"`
}

// HasResumeData reports whether a usable (non-error) résumé was generated.
func (s Session) HasResumeData() bool {
	return s.ResumeData != nil && !s.ResumeData.Failed()
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	out := s
	if s.ResumeData != nil {
		data := s.ResumeData.Clone()
		out.ResumeData = &data
	}
	if s.Sections != nil {
		out.Sections = make(sections.Map, len(s.Sections))
		for k, v := range s.Sections {
			out.Sections[k] = v
		}
	}
	if s.SectionOrder != nil {
		out.SectionOrder = append(sections.Order(nil), s.SectionOrder...)
	}
	if s.TailoredSections != nil {
		out.TailoredSections = append([]sections.ID(nil), s.TailoredSections...)
	}
	if s.Artifacts != nil {
		out.Artifacts = make(map[ArtifactKind]string, len(s.Artifacts))
		for k, v := range s.Artifacts {
			out.Artifacts[k] = v
		}
	}
	return out
}

// reset clears every slot except identity and creation time.
func (s *Session) reset(now time.Time) {
	*s = Session{ID: s.ID, CreatedAt: s.CreatedAt, UpdatedAt: now}
}
