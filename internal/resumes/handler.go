package resumes

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/interviews"
	"interview-backend/internal/shared/server/respond"
)

// Handler exposes resume upload over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a resume handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload handles POST /resume as multipart form data.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "file is required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "could not read uploaded file", nil)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxResumeBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "could not read uploaded file", nil)
		return
	}

	result, err := h.svc.Upload(c.Request.Context(), UploadInput{
		CandidateName:   c.PostForm("candidate_name"),
		Role:            c.PostForm("role"),
		ExperienceLevel: c.PostForm("experience_level"),
		FileName:        fileHeader.Filename,
		MimeType:        fileHeader.Header.Get("Content-Type"),
		Data:            data,
	})
	if err != nil {
		h.mapError(c, err)
		return
	}

	c.Set("interviewId", result.InterviewID)
	respond.JSON(c, http.StatusCreated, result)
}

func (h *Handler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interviews.ErrValidation):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, interviews.ErrUpstream):
		respond.Error(c, http.StatusBadGateway, respond.CodeUpstream, "skill extraction is temporarily unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "internal error", nil)
	}
}
