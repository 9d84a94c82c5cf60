package model

// BulletsPerRole is the number of bullets every tailored employer entry carries.
const BulletsPerRole = 3

// TailoredSkills holds comma-separated skill lists.
type TailoredSkills struct {
	Technical string `json:"technical"`
	Soft      string `json:"soft"`
}

// TailoredRole is the model-written title and bullets for one employer.
type TailoredRole struct {
	Role    string   `json:"role"`
	Bullets []string `json:"bullets"`
}

// TailoredExperience maps employer name to its tailored role. Keys are
// always employers from StaticResumeFacts.
type TailoredExperience map[string]TailoredRole

// GeneratedResumeData is either a tailored résumé (Skills and Experience) or
// a failure (Error). Never both.
type GeneratedResumeData struct {
	Skills     TailoredSkills     `json:"skills"`
	Experience TailoredExperience `json:"experience,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// NewFailedResumeData returns the error branch.
func NewFailedResumeData(msg string) GeneratedResumeData {
	return GeneratedResumeData{Error: msg}
}

// Failed reports whether this is the error branch.
func (d GeneratedResumeData) Failed() bool { return d.Error != "" }

// Clone returns a deep copy so callers can edit without aliasing session state.
func (d GeneratedResumeData) Clone() GeneratedResumeData {
	out := GeneratedResumeData{Skills: d.Skills, Error: d.Error}
	if d.Experience != nil {
		out.Experience = make(TailoredExperience, len(d.Experience))
		for k, v := range d.Experience {
			out.Experience[k] = TailoredRole{Role: v.Role, Bullets: append([]string(nil), v.Bullets...)}
		}
	}
	return out
}

// FallbackRole is the deterministic default used when a model response
// can't be parsed: the employer's original title (or title when unset) and
// its first BulletsPerRole original bullets.
func FallbackRole(e Employer, title string) TailoredRole {
	role := e.OriginalTitle
	if role == "" {
		role = title
	}
	return TailoredRole{Role: role, Bullets: e.FirstBullets(BulletsPerRole)}
}
