package sessions

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/extract"
	"resume-tailor/internal/jobfetch"
	"resume-tailor/internal/llm/failover"
	"resume-tailor/internal/shared/server/respond"
	"resume-tailor/resume/model"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.create)
	rg.GET("/sessions/:id", h.get)
	rg.DELETE("/sessions/:id", h.delete)
	rg.POST("/sessions/:id/reset", h.reset)

	rg.POST("/sessions/:id/cv", h.uploadCV)
	rg.PUT("/sessions/:id/job", h.setJob)

	rg.POST("/sessions/:id/title", h.extractTitle)
	rg.POST("/sessions/:id/resume", h.generateResume)
	rg.PUT("/sessions/:id/resume", h.editResume)
	rg.POST("/sessions/:id/finalize", h.finalize)
	rg.POST("/sessions/:id/sections", h.tailorSections)
	rg.PUT("/sessions/:id/sections/markdown", h.editSections)
	rg.POST("/sessions/:id/cover-letter", h.generateCoverLetter)
	rg.POST("/sessions/:id/cheatsheet", h.generateCheatsheet)

	rg.GET("/sessions/:id/artifacts/:kind", h.artifact)
	rg.GET("/sessions/:id/ats", h.ats)
	rg.GET("/sessions/:id/ats/report.xlsx", h.atsWorkbook)
}

// GenerationRoute reports whether a request hits a route that calls the
// model providers. The router gives those their own rate limit group.
func GenerationRoute(method, fullPath string) bool {
	if method != http.MethodPost {
		return false
	}
	switch fullPath {
	case "/api/v1/sessions/:id/title",
		"/api/v1/sessions/:id/resume",
		"/api/v1/sessions/:id/sections",
		"/api/v1/sessions/:id/cover-letter",
		"/api/v1/sessions/:id/cheatsheet":
		return true
	default:
		return false
	}
}

func (h *Handler) create(c *gin.Context) {
	sess, err := h.Svc.Create(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create session", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, sess)
}

func (h *Handler) get(c *gin.Context) {
	sess, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch session")
		return
	}
	respond.OK(c, sess)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete session")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) reset(c *gin.Context) {
	sess, err := h.Svc.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to reset session")
		return
	}
	respond.OK(c, sess)
}

func (h *Handler) uploadCV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, extract.MaxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > extract.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", extract.ErrTooLarge.Error(), nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	sess, err := h.Svc.UploadCV(c.Request.Context(), c.Param("id"), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		var formatErr *extract.InputFormatError
		switch {
		case errors.As(err, &formatErr):
			respond.Error(c, http.StatusBadRequest, "invalid_file", formatErr.Error(), nil)
		case errors.Is(err, extract.ErrUnsupportedType):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "only .pdf and .docx files are supported", nil)
		case errors.Is(err, extract.ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
		default:
			writeError(c, err, "failed to process upload")
		}
		return
	}
	respond.OK(c, sess)
}

func (h *Handler) setJob(c *gin.Context) {
	var req JobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	sess, err := h.Svc.SetJob(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		var fetchErr *jobfetch.Error
		if errors.As(err, &fetchErr) {
			respond.Error(c, http.StatusUnprocessableEntity, "job_fetch_failed", fetchErr.Error(), gin.H{"url": fetchErr.URL})
			return
		}
		writeError(c, err, "failed to save job")
		return
	}
	respond.OK(c, sess)
}

func (h *Handler) extractTitle(c *gin.Context) {
	sess, err := h.Svc.ExtractTitle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to extract title")
		return
	}
	respond.OK(c, gin.H{"title": sess.JobTitle})
}

func (h *Handler) generateResume(c *gin.Context) {
	sess, err := h.Svc.GenerateResume(c.Request.Context(), c.Param("id"))
	if err != nil {
		var partial any
		if sess.ResumeData != nil {
			partial = sess.ResumeData
		}
		writeGenerationError(c, err, partial, "failed to generate resume")
		return
	}
	respond.OK(c, sess.ResumeData)
}

func (h *Handler) editResume(c *gin.Context) {
	var req model.GeneratedResumeData
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	sess, err := h.Svc.EditResume(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err, "failed to save resume")
		return
	}
	respond.OK(c, sess.ResumeData)
}

func (h *Handler) finalize(c *gin.Context) {
	sess, err := h.Svc.Finalize(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to finalize resume")
		return
	}
	respond.OK(c, sess)
}

func (h *Handler) tailorSections(c *gin.Context) {
	fromEdited := strings.EqualFold(c.Query("source"), "edited")
	sess, err := h.Svc.TailorSections(c.Request.Context(), c.Param("id"), fromEdited)
	if err != nil {
		var partial any
		if sess.ID != "" {
			partial = sectionsView(sess)
		}
		writeGenerationError(c, err, partial, "failed to tailor sections")
		return
	}
	respond.OK(c, sectionsView(sess))
}

type editSectionsRequest struct {
	Markdown string `json:"markdown"`
}

func (h *Handler) editSections(c *gin.Context) {
	var req editSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	sess, err := h.Svc.EditSections(c.Request.Context(), c.Param("id"), req.Markdown)
	if err != nil {
		writeError(c, err, "failed to save sections")
		return
	}
	respond.OK(c, sectionsView(sess))
}

func (h *Handler) generateCoverLetter(c *gin.Context) {
	sess, err := h.Svc.GenerateCoverLetter(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeGenerationError(c, err, nil, "failed to generate cover letter")
		return
	}
	respond.OK(c, gin.H{"coverLetter": sess.CoverLetter})
}

func (h *Handler) generateCheatsheet(c *gin.Context) {
	sess, err := h.Svc.GenerateCheatsheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeGenerationError(c, err, nil, "failed to generate cheatsheet")
		return
	}
	respond.OK(c, gin.H{"cheatsheet": sess.Cheatsheet})
}

func (h *Handler) artifact(c *gin.Context) {
	kind, ok := ParseArtifactKind(c.Param("kind"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "unknown artifact", gin.H{"kind": c.Param("kind")})
		return
	}
	dl, err := h.Svc.Artifact(c.Request.Context(), c.Param("id"), kind)
	if err != nil {
		writeError(c, err, "failed to render document")
		return
	}
	defer dl.Body.Close()
	respond.Attachment(c, dl.ContentType, dl.FileName, dl.Body)
}

func (h *Handler) ats(c *gin.Context) {
	report, err := h.Svc.ATS(c.Request.Context(), c.Param("id"), c.Query("source") == "original")
	if err != nil {
		writeError(c, err, "failed to score resume")
		return
	}
	respond.OK(c, report)
}

func (h *Handler) atsWorkbook(c *gin.Context) {
	var buf bytes.Buffer
	name, err := h.Svc.ATSWorkbook(c.Request.Context(), c.Param("id"), c.Query("source") == "original", &buf)
	if err != nil {
		writeError(c, err, "failed to build report")
		return
	}
	respond.Attachment(c, xlsxContentType, name, &buf)
}

type sectionsResponse struct {
	Sections any    `json:"sections"`
	Order    any    `json:"order"`
	Tailored any    `json:"tailored"`
	Markdown string `json:"markdown"`
	ATSScore int    `json:"atsScore"`
}

func sectionsView(sess Session) sectionsResponse {
	return sectionsResponse{
		Sections: sess.Sections,
		Order:    sess.SectionOrder,
		Tailored: sess.TailoredSections,
		Markdown: sess.EditedMarkdown,
		ATSScore: sess.SectionATSScore,
	}
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrInvalidState):
		respond.Error(c, http.StatusConflict, "invalid_state", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

// writeGenerationError reports provider exhaustion with the user-facing
// sentinel so clients only need one check.
func writeGenerationError(c *gin.Context, err error, partial any, fallback string) {
	switch {
	case errors.Is(err, ErrProvidersExhausted):
		respond.Error(c, http.StatusBadGateway, "providers_exhausted", failover.Sentinel, partial)
	case errors.Is(err, ErrUnusableOutput):
		respond.Error(c, http.StatusBadGateway, "invalid_model_output", err.Error(), partial)
	default:
		writeError(c, err, fallback)
	}
}
