package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/app"
	"resume-screener/internal/model"
	"resume-screener/internal/transport/http/response"
)

type ScreeningHandler struct {
	screenService  *app.ScreenService
	maxUploadBytes int64
}

func NewScreeningHandler(screenService *app.ScreenService, maxUploadBytes int64) *ScreeningHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ScreeningHandler{
		screenService:  screenService,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateSession starts a fresh screening session, replacing any prior one.
func (h *ScreeningHandler) CreateSession(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessionID, err := h.screenService.CreateSession(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeStorageFailure, "create session failed")
		return
	}

	response.OK(c, gin.H{"session_id": sessionID})
}

// Screen accepts a multipart form: job_description, skills (comma separated)
// and one or more files, and returns the newly scored resumes.
func (h *ScreeningHandler) Screen(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	sessionID := c.Param("id")

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}

	jobDescription := strings.TrimSpace(c.PostForm("job_description"))
	requiredSkills := splitSkills(c.PostForm("skills"))

	fileHeaders := form.File["files"]
	files := make([]app.UploadFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		if header.Size > h.maxUploadBytes {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large: "+header.Filename)
			return
		}
		f, err := header.Open()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read upload failed")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read upload failed")
			return
		}
		files = append(files, app.UploadFile{Filename: header.Filename, Data: data})
	}

	result, err := h.screenService.Screen(c.Request.Context(), app.ScreenInput{
		UserID:         userID,
		SessionID:      sessionID,
		JobDescription: jobDescription,
		RequiredSkills: requiredSkills,
		Files:          files,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "job description, skills and at least one pdf/docx/txt file are required")
		case errors.Is(err, app.ErrNoActiveSession):
			response.Error(c, http.StatusForbidden, response.CodeNoActiveSession, err.Error())
		case errors.Is(err, app.ErrSessionMismatch):
			response.Error(c, http.StatusForbidden, response.CodeSessionMismatch, err.Error())
		case errors.Is(err, app.ErrBatchAborted):
			response.ErrorWithData(c, http.StatusInternalServerError, response.CodeStorageFailure, err.Error(), resumesPayload(result))
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "screening failed")
		}
		return
	}

	response.OK(c, resumesPayload(result))
}

// Dashboard returns every resume in the session, in submission order.
func (h *ScreeningHandler) Dashboard(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	sessionID := c.Param("id")

	resumes, err := h.screenService.GetResumes(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.writeSessionError(c, err, "fetch dashboard failed")
		return
	}

	items := make([]gin.H, 0, len(resumes))
	for i := range resumes {
		items = append(items, resumeJSON(&resumes[i]))
	}
	response.OK(c, items)
}

// DownloadAll streams a zip of all stored resume files.
func (h *ScreeningHandler) DownloadAll(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	sessionID := c.Param("id")

	var buf bytes.Buffer
	if err := h.screenService.ExportBundle(c.Request.Context(), userID, sessionID, &buf); err != nil {
		h.writeSessionError(c, err, "export bundle failed")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="resumes.zip"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// ClearSession destroys the session; clearing twice is harmless.
func (h *ScreeningHandler) ClearSession(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if err := h.screenService.ClearSession(c.Request.Context(), userID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeStorageFailure, "clear session failed")
		return
	}
	response.OK(c, gin.H{"message": "session cleared"})
}

func (h *ScreeningHandler) writeSessionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrNoActiveSession):
		response.Error(c, http.StatusForbidden, response.CodeNoActiveSession, err.Error())
	case errors.Is(err, app.ErrSessionMismatch):
		response.Error(c, http.StatusForbidden, response.CodeSessionMismatch, err.Error())
	case errors.Is(err, app.ErrSessionStateMissing):
		response.Error(c, http.StatusConflict, response.CodeSessionStateLost, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func resumesPayload(result *app.ScreenResult) gin.H {
	if result == nil {
		return gin.H{}
	}
	items := make([]gin.H, 0, len(result.Resumes))
	for i := range result.Resumes {
		items = append(items, resumeJSON(&result.Resumes[i]))
	}
	payload := gin.H{"results": items}
	if len(result.Failed) > 0 {
		payload["failed"] = result.Failed
	}
	return payload
}

func resumeJSON(r *model.Resume) gin.H {
	return gin.H{
		"id":             r.ID,
		"filename":       r.Filename,
		"match_score":    r.MatchScore,
		"matched_skills": r.MatchedSkillList(),
		"raw_text":       r.RawText,
	}
}

func splitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
