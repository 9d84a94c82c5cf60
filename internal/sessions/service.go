package sessions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/extract"
	"resume-tailor/internal/jobfetch"
	"resume-tailor/internal/llm/failover"
	"resume-tailor/internal/parse"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/util"
	"resume-tailor/internal/tailoring"
	"resume-tailor/resume/ats"
	"resume-tailor/resume/model"
	"resume-tailor/resume/render"
	"resume-tailor/resume/sections"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrProvidersExhausted is returned (wrapped) when a generation step found
// no working provider. The session is still returned so callers can show
// what was kept.
var ErrProvidersExhausted = tailoring.ErrProvidersExhausted

// ErrUnusableOutput means a provider answered but the answer could not be
// turned into résumé data.
var ErrUnusableOutput = errors.New("unusable model output")

// MaxChainsPerRequest is the most failover chains a single request can run:
// GenerateResume may extract a title before generating, and TailorSections
// makes one call per tailorable section.
func MaxChainsPerRequest() int {
	return max(2, len(sections.Tailorable))
}

// JobFetcher loads a posting from a URL.
type JobFetcher interface {
	Fetch(ctx context.Context, rawURL string) (jobfetch.Posting, error)
}

// Service coordinates session state with the tailoring pipeline, the
// renderer and the object store.
type Service struct {
	Repo      Repo
	Tailor    *tailoring.Service
	Store     object.Store
	Jobs      JobFetcher
	Providers int
	Now       func() time.Time

	locks sync.Map // session id -> *sync.Mutex
}

// JobInput is the job posting a session is tailored against. When
// Description is empty, URL is fetched instead.
type JobInput struct {
	Description string `json:"description"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Company     string `json:"company"`
}

// Download is a rendered document ready to stream.
type Download struct {
	FileName    string
	ContentType string
	Body        io.ReadCloser
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// inputsChanged reports that a step's inputs were replaced while its model
// call was in flight. The step's result is discarded.
func inputsChanged(what string) error {
	return fmt.Errorf("%w: %s changed during generation, run it again", ErrInvalidState, what)
}

func (s *Service) lock(id string) *sync.Mutex {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// Create starts an empty session.
func (s *Service) Create(ctx context.Context) (Session, error) {
	now := s.now()
	sess := Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	if err := s.Repo.Create(ctx, sess); err != nil {
		return Session{}, err
	}
	telemetry.Info("session.created", map[string]any{"session_id": sess.ID})
	return sess, nil
}

// Get loads a session. Malformed IDs are reported as ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Session{}, ErrNotFound
	}
	return s.Repo.Get(ctx, id)
}

// Update applies fn to the stored session under a per-session lock and
// saves the result. Stored objects the session no longer references are
// removed after the save.
func (s *Service) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	before := objectKeys(sess)
	if err := fn(&sess); err != nil {
		return Session{}, err
	}
	sess.UpdatedAt = s.now()
	if err := s.Repo.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	after := objectKeys(sess)
	for key := range before {
		if _, ok := after[key]; !ok {
			s.deleteObject(ctx, id, key)
		}
	}
	return sess, nil
}

// Delete removes the session and everything it stored.
func (s *Service) Delete(ctx context.Context, id string) error {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	for key := range objectKeys(sess) {
		s.deleteObject(ctx, id, key)
	}
	s.locks.Delete(id)
	return nil
}

// Reset clears every slot of the session but keeps its ID.
func (s *Service) Reset(ctx context.Context, id string) (Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		sess.reset(s.now())
		return nil
	})
}

// NextProviderIndex returns the session's provider start index and advances
// it modulo the number of providers, so successive generation steps spread
// across the registry.
func (s *Service) NextProviderIndex(ctx context.Context, id string) (int, error) {
	var current int
	_, err := s.Update(ctx, id, func(sess *Session) error {
		current = sess.ProviderIndex
		if s.Providers > 0 {
			sess.ProviderIndex = (current + 1) % s.Providers
		} else {
			sess.ProviderIndex = 0
		}
		return nil
	})
	return current, err
}

// UploadCV extracts text from a .pdf or .docx upload and stores the
// original file. A new CV discards earlier section results.
func (s *Service) UploadCV(ctx context.Context, id, fileName, contentType string, data []byte) (Session, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return Session{}, err
	}
	if len(data) > extract.MaxUploadBytes {
		return Session{}, extract.ErrTooLarge
	}
	text, err := extract.ExtractTextFromBytes(ctx, data, contentType, fileName)
	if err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Session{}, fmt.Errorf("%w: no text found in %s", ErrInvalidInput, fileName)
	}

	var key string
	if s.Store != nil {
		key, _, err = s.Store.Put(ctx, id, fileName, contentType, bytes.NewReader(data))
		if err != nil {
			return Session{}, fmt.Errorf("store upload: %w", err)
		}
	}

	return s.Update(ctx, id, func(sess *Session) error {
		sess.OriginalCV = text
		sess.OriginalFileName = fileName
		sess.UploadKey = key
		clearSectionResults(sess)
		return nil
	})
}

// SetJob records the target posting. Changing the description discards
// everything generated from the previous one.
func (s *Service) SetJob(ctx context.Context, id string, in JobInput) (Session, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return Session{}, err
	}
	in.Description = strings.TrimSpace(in.Description)
	in.URL = strings.TrimSpace(in.URL)
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)

	if in.Description == "" && in.URL != "" {
		if s.Jobs == nil {
			return Session{}, fmt.Errorf("%w: fetching postings is disabled", ErrInvalidInput)
		}
		posting, err := s.Jobs.Fetch(ctx, in.URL)
		if err != nil {
			return Session{}, err
		}
		in.Description = posting.Description
		if in.Title == "" {
			in.Title = posting.Title
		}
		if in.Company == "" {
			in.Company = posting.Company
		}
	}
	if in.Description == "" {
		return Session{}, fmt.Errorf("%w: description or url is required", ErrInvalidInput)
	}

	return s.Update(ctx, id, func(sess *Session) error {
		if sess.JobDescription != in.Description {
			sess.ResumeData = nil
			sess.Finalized = false
			sess.CoverLetter = ""
			sess.Cheatsheet = ""
			clearSectionResults(sess)
		}
		sess.JobDescription = in.Description
		sess.JobURL = in.URL
		sess.JobTitle = in.Title
		sess.Company = in.Company
		sess.Artifacts = nil
		return nil
	})
}

// ExtractTitle standardizes the job title from the description. The current
// title is kept when no provider answers.
func (s *Service) ExtractTitle(ctx context.Context, id string) (Session, error) {
	sess, err := s.requireJob(ctx, id)
	if err != nil {
		return Session{}, err
	}
	start, err := s.NextProviderIndex(ctx, id)
	if err != nil {
		return Session{}, err
	}
	jd := sess.JobDescription
	title := s.Tailor.ExtractJobTitle(ctx, sess.JobTitle, jd, start)
	return s.Update(ctx, id, func(sess *Session) error {
		if sess.JobDescription != jd {
			return inputsChanged("job description")
		}
		if sess.JobTitle != title {
			dropArtifacts(sess, ArtifactCoverLetter)
		}
		sess.JobTitle = title
		return nil
	})
}

// GenerateResume writes tailored skills and experience for the profile.
// The result is stored even when it is the error branch; the returned error
// is ErrProvidersExhausted or ErrUnusableOutput in that case.
func (s *Service) GenerateResume(ctx context.Context, id string) (Session, error) {
	sess, err := s.requireJob(ctx, id)
	if err != nil {
		return Session{}, err
	}
	start, err := s.NextProviderIndex(ctx, id)
	if err != nil {
		return Session{}, err
	}
	jd := sess.JobDescription
	title := sess.JobTitle
	if title == "" {
		title = s.Tailor.ExtractJobTitle(ctx, "", jd, start)
	}
	data := s.Tailor.GenerateResumeData(ctx, jd, title, start)

	updated, err := s.Update(ctx, id, func(sess *Session) error {
		if sess.JobDescription != jd {
			return inputsChanged("job description")
		}
		if sess.JobTitle == "" {
			sess.JobTitle = title
		}
		sess.ResumeData = &data
		sess.Finalized = false
		dropArtifacts(sess, ArtifactResume)
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	switch {
	case data.Error == failover.Sentinel:
		return updated, fmt.Errorf("generate resume: %w", ErrProvidersExhausted)
	case data.Failed():
		return updated, fmt.Errorf("generate resume: %w: %s", ErrUnusableOutput, data.Error)
	}
	return updated, nil
}

// EditResume replaces the generated data with a user-edited version and
// reopens the session for finalization.
func (s *Service) EditResume(ctx context.Context, id string, data model.GeneratedResumeData) (Session, error) {
	if data.Failed() {
		return Session{}, fmt.Errorf("%w: edited data cannot carry an error", ErrInvalidInput)
	}
	facts := s.Tailor.Facts()
	cleaned := model.GeneratedResumeData{
		Skills: model.TailoredSkills{
			Technical: strings.TrimSpace(data.Skills.Technical),
			Soft:      strings.TrimSpace(data.Skills.Soft),
		},
		Experience: make(model.TailoredExperience, len(data.Experience)),
	}
	for name, role := range data.Experience {
		if _, ok := facts.Employer(name); !ok {
			return Session{}, fmt.Errorf("%w: unknown employer %q", ErrInvalidInput, name)
		}
		cleaned.Experience[name] = model.TailoredRole{
			Role:    strings.TrimSpace(role.Role),
			Bullets: parseBullets(role.Bullets),
		}
	}
	return s.Update(ctx, id, func(sess *Session) error {
		sess.ResumeData = &cleaned
		sess.Finalized = false
		dropArtifacts(sess, ArtifactResume)
		return nil
	})
}

// Finalize locks in the current résumé data for download and cover letters.
func (s *Service) Finalize(ctx context.Context, id string) (Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		if !sess.HasResumeData() {
			return fmt.Errorf("%w: generate a resume before finalizing", ErrInvalidState)
		}
		sess.Finalized = true
		return nil
	})
}

// TailorSections runs the section variant over the uploaded CV, or over the
// edited markdown when fromEdited is set. Sections whose call failed keep
// their text; the error is ErrProvidersExhausted in that case.
func (s *Service) TailorSections(ctx context.Context, id string, fromEdited bool) (Session, error) {
	sess, err := s.requireJob(ctx, id)
	if err != nil {
		return Session{}, err
	}
	text := sess.OriginalCV
	if fromEdited {
		text = sess.EditedMarkdown
	}
	if strings.TrimSpace(text) == "" {
		return Session{}, fmt.Errorf("%w: upload a CV first", ErrInvalidState)
	}
	start, err := s.NextProviderIndex(ctx, id)
	if err != nil {
		return Session{}, err
	}
	jd := sess.JobDescription
	res, tailorErr := s.Tailor.TailorSections(ctx, text, jd, start)

	updated, err := s.Update(ctx, id, func(sess *Session) error {
		if sess.JobDescription != jd {
			return inputsChanged("job description")
		}
		source := sess.OriginalCV
		if fromEdited {
			source = sess.EditedMarkdown
		}
		if source != text {
			return inputsChanged("CV")
		}
		sess.Sections = res.Sections
		sess.SectionOrder = res.Order
		sess.TailoredSections = res.Tailored
		sess.EditedMarkdown = res.Markdown
		sess.SectionATSScore = res.ATSScore
		dropArtifacts(sess, ArtifactTailoredCV)
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return updated, tailorErr
}

// EditSections replaces the tailored CV with user-edited markdown.
func (s *Service) EditSections(ctx context.Context, id, markdown string) (Session, error) {
	if strings.TrimSpace(markdown) == "" {
		return Session{}, fmt.Errorf("%w: markdown is required", ErrInvalidInput)
	}
	m, order := sections.ParseMarkdown(markdown)
	return s.Update(ctx, id, func(sess *Session) error {
		sess.Sections = m
		sess.SectionOrder = order
		sess.EditedMarkdown = markdown
		sess.SectionATSScore = 0
		if sess.JobDescription != "" {
			sess.SectionATSScore = ats.Score(markdown, sess.JobDescription)
		}
		dropArtifacts(sess, ArtifactTailoredCV)
		return nil
	})
}

// GenerateCoverLetter writes a letter from the finalized résumé.
func (s *Service) GenerateCoverLetter(ctx context.Context, id string) (Session, error) {
	sess, err := s.requireJob(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if !sess.HasResumeData() || !sess.Finalized {
		return Session{}, fmt.Errorf("%w: finalize the resume first", ErrInvalidState)
	}
	start, err := s.NextProviderIndex(ctx, id)
	if err != nil {
		return Session{}, err
	}
	jd, title, company := sess.JobDescription, sess.JobTitle, sess.Company
	letter, err := s.Tailor.GenerateCoverLetter(ctx, *sess.ResumeData, jd, title, company, start)
	if err != nil {
		return sess, fmt.Errorf("generate cover letter: %w", err)
	}
	return s.Update(ctx, id, func(sess *Session) error {
		if sess.JobDescription != jd || sess.JobTitle != title || sess.Company != company {
			return inputsChanged("job")
		}
		if !sess.HasResumeData() || !sess.Finalized {
			return inputsChanged("resume")
		}
		sess.CoverLetter = letter
		dropArtifacts(sess, ArtifactCoverLetter)
		return nil
	})
}

// GenerateCheatsheet writes the interview guide from the best résumé text
// the session has.
func (s *Service) GenerateCheatsheet(ctx context.Context, id string) (Session, error) {
	sess, err := s.requireJob(ctx, id)
	if err != nil {
		return Session{}, err
	}
	text := s.resumeText(sess)
	if text == "" {
		return Session{}, fmt.Errorf("%w: generate a resume or upload a CV first", ErrInvalidState)
	}
	start, err := s.NextProviderIndex(ctx, id)
	if err != nil {
		return Session{}, err
	}
	jd := sess.JobDescription
	sheet, err := s.Tailor.GenerateCheatsheet(ctx, text, jd, sess.JobTitle, start)
	if err != nil {
		return sess, fmt.Errorf("generate cheatsheet: %w", err)
	}
	return s.Update(ctx, id, func(sess *Session) error {
		if sess.JobDescription != jd {
			return inputsChanged("job description")
		}
		if s.resumeText(*sess) != text {
			return inputsChanged("resume")
		}
		sess.Cheatsheet = sheet
		dropArtifacts(sess, ArtifactCheatsheet)
		return nil
	})
}

// Artifact returns the rendered document of the given kind, rendering and
// storing it on first request.
func (s *Service) Artifact(ctx context.Context, id string, kind ArtifactKind) (Download, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return Download{}, err
	}
	dl := Download{
		FileName:    util.ArtifactFileName(string(kind), sess.JobTitle, sess.Company),
		ContentType: docxContentType,
	}

	if key := sess.Artifacts[kind]; key != "" && s.Store != nil {
		body, err := s.Store.Open(ctx, key)
		if err == nil {
			dl.Body = body
			return dl, nil
		}
		if !errors.Is(err, object.ErrNotFound) {
			return Download{}, err
		}
		telemetry.Warn("session.artifact.missing", map[string]any{"session_id": id, "kind": kind, "key": key})
	}

	var payload []byte
	_, err = s.Update(ctx, id, func(sess *Session) error {
		var err error
		payload, err = s.render(*sess, kind)
		if err != nil {
			return err
		}
		if s.Store == nil {
			return nil
		}
		key, _, err := s.Store.Put(ctx, id, dl.FileName, docxContentType, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("store artifact: %w", err)
		}
		if sess.Artifacts == nil {
			sess.Artifacts = make(map[ArtifactKind]string)
		}
		sess.Artifacts[kind] = key
		return nil
	})
	if err != nil {
		return Download{}, err
	}
	dl.Body = io.NopCloser(bytes.NewReader(payload))
	return dl, nil
}

func (s *Service) render(sess Session, kind ArtifactKind) ([]byte, error) {
	facts := s.Tailor.Facts()
	switch kind {
	case ArtifactResume:
		if !sess.HasResumeData() || !sess.Finalized {
			return nil, fmt.Errorf("%w: finalize the resume first", ErrInvalidState)
		}
		return render.RenderResume(facts, *sess.ResumeData)
	case ArtifactTailoredCV:
		if len(sess.Sections) == 0 {
			return nil, fmt.Errorf("%w: tailor the uploaded CV first", ErrInvalidState)
		}
		return render.RenderSections(sess.Sections, sess.SectionOrder)
	case ArtifactCoverLetter:
		if sess.CoverLetter == "" || failover.IsSentinel(sess.CoverLetter) {
			return nil, fmt.Errorf("%w: generate a cover letter first", ErrInvalidState)
		}
		return render.RenderCoverLetter(facts, sess.CoverLetter, sess.JobTitle, sess.Company, s.now())
	case ArtifactCheatsheet:
		if sess.Cheatsheet == "" || failover.IsSentinel(sess.Cheatsheet) {
			return nil, fmt.Errorf("%w: generate a cheatsheet first", ErrInvalidState)
		}
		return render.RenderCheatsheet(sess.Cheatsheet)
	default:
		return nil, fmt.Errorf("%w: unknown artifact %q", ErrInvalidInput, kind)
	}
}

// ATS scores the session's résumé against the job description. With
// original set the uploaded CV is scored instead of the tailored text.
func (s *Service) ATS(ctx context.Context, id string, original bool) (ats.Report, error) {
	sess, err := s.requireJob(ctx, id)
	if err != nil {
		return ats.Report{}, err
	}
	text := s.resumeText(sess)
	if original {
		text = strings.TrimSpace(sess.OriginalCV)
	}
	if text == "" {
		return ats.Report{}, fmt.Errorf("%w: nothing to score yet", ErrInvalidState)
	}
	report, err := s.Tailor.ATSScore(text, sess.JobDescription)
	if errors.Is(err, ats.ErrInputTooLong) {
		return ats.Report{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return report, err
}

// ATSWorkbook writes the keyword coverage report as an .xlsx workbook and
// returns the download file name.
func (s *Service) ATSWorkbook(ctx context.Context, id string, original bool, w io.Writer) (string, error) {
	report, err := s.ATS(ctx, id, original)
	if err != nil {
		return "", err
	}
	sess, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	meta := ats.ReportMeta{JobTitle: sess.JobTitle, Company: sess.Company, GeneratedAt: s.now()}
	if err := ats.WriteWorkbook(w, report, meta); err != nil {
		return "", err
	}
	return util.Slugify("ats_report", sess.JobTitle, sess.Company) + ".xlsx", nil
}

func (s *Service) requireJob(ctx context.Context, id string) (Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(sess.JobDescription) == "" {
		return Session{}, fmt.Errorf("%w: set a job description first", ErrInvalidState)
	}
	return sess, nil
}

// resumeText picks the tailored profile résumé, then the tailored CV, then
// the uploaded CV.
func (s *Service) resumeText(sess Session) string {
	switch {
	case sess.HasResumeData():
		return s.Tailor.PlainText(*sess.ResumeData)
	case strings.TrimSpace(sess.EditedMarkdown) != "":
		return sess.EditedMarkdown
	default:
		return strings.TrimSpace(sess.OriginalCV)
	}
}

func (s *Service) deleteObject(ctx context.Context, id, key string) {
	if s.Store == nil || key == "" {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("session.object.delete_failed", map[string]any{"session_id": id, "key": key, "err": err})
	}
}

func objectKeys(sess Session) map[string]struct{} {
	keys := make(map[string]struct{}, len(sess.Artifacts)+1)
	for _, key := range sess.Artifacts {
		keys[key] = struct{}{}
	}
	if sess.UploadKey != "" {
		keys[sess.UploadKey] = struct{}{}
	}
	return keys
}

func dropArtifacts(sess *Session, kinds ...ArtifactKind) {
	for _, k := range kinds {
		delete(sess.Artifacts, k)
	}
}

func clearSectionResults(sess *Session) {
	sess.Sections = nil
	sess.SectionOrder = nil
	sess.TailoredSections = nil
	sess.EditedMarkdown = ""
	sess.SectionATSScore = 0
	dropArtifacts(sess, ArtifactTailoredCV)
}

// parseBullets strips bullet glyphs from edited bullets and drops empty ones.
func parseBullets(in []string) []string {
	out := make([]string, 0, len(in))
	for _, b := range in {
		if b = parse.StripBulletGlyph(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
