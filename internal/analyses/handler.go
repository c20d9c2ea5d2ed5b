package analyses

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/interviews"
	"interview-backend/internal/shared/server/respond"
)

// Handler exposes performance analysis over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates an analysis handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type generateRequest struct {
	InterviewID string `json:"interview_id"`
}

// Generate handles POST /analysis/generate.
func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.InterviewID) == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "interview_id is required", nil)
		return
	}
	c.Set("interviewId", req.InterviewID)

	assessment, err := h.svc.Generate(c.Request.Context(), req.InterviewID)
	if err != nil {
		h.mapError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"interview_id": req.InterviewID,
		"assessment":   assessment,
	})
}

// Get handles GET /analysis/:id.
func (h *Handler) Get(c *gin.Context) {
	interviewID := c.Param("id")
	c.Set("interviewId", interviewID)

	assessment, err := h.svc.Get(c.Request.Context(), interviewID)
	if err != nil {
		h.mapError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"interview_id": interviewID,
		"assessment":   assessment,
	})
}

func (h *Handler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interviews.ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "interview not found", nil)
	case errors.Is(err, ErrNotAnalyzed):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "analysis not generated for this interview", nil)
	case errors.Is(err, interviews.ErrConflict):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, err.Error(), nil)
	case errors.Is(err, interviews.ErrUpstream):
		respond.Error(c, http.StatusBadGateway, respond.CodeUpstream, "analysis generation is temporarily unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "internal error", nil)
	}
}
