package interviews

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/respond"
)

// Handler exposes the interview conversation over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates an interview handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type rateSkillsRequest struct {
	InterviewID string         `json:"interview_id"`
	Skills      map[string]int `json:"skills"`
}

// RateSkills handles POST /skills.
func (h *Handler) RateSkills(c *gin.Context) {
	var req rateSkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.InterviewID) == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "interview_id is required", nil)
		return
	}
	c.Set("interviewId", req.InterviewID)

	iv, err := h.svc.RateSkills(c.Request.Context(), req.InterviewID, req.Skills)
	if err != nil {
		h.mapError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"interview_id": iv.InterviewID,
		"status":       iv.Status,
		"skills":       iv.Skills,
	})
}

type startRequest struct {
	InterviewID     string `json:"interview_id"`
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
}

// Start handles POST /interview/start.
func (h *Handler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.InterviewID) == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "interview_id is required", nil)
		return
	}
	c.Set("interviewId", req.InterviewID)

	result, err := h.svc.Start(c.Request.Context(), req.InterviewID, req.Role, req.ExperienceLevel)
	if err != nil {
		h.mapError(c, err)
		return
	}
	respond.OK(c, result)
}

type continueRequest struct {
	InterviewID string `json:"interview_id"`
	Answer      string `json:"answer"`
}

// Continue handles POST /interview/continue.
func (h *Handler) Continue(c *gin.Context) {
	var req continueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.InterviewID) == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "interview_id is required", nil)
		return
	}
	c.Set("interviewId", req.InterviewID)

	result, err := h.svc.Continue(c.Request.Context(), req.InterviewID, req.Answer)
	if err != nil {
		h.mapError(c, err)
		return
	}
	respond.OK(c, result)
}

// Status handles GET /interview/:id/status.
func (h *Handler) Status(c *gin.Context) {
	interviewID := c.Param("id")
	c.Set("interviewId", interviewID)

	result, err := h.svc.Status(c.Request.Context(), interviewID)
	if err != nil {
		h.mapError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "interview not found", nil)
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, err.Error(), nil)
	case errors.Is(err, ErrUpstream):
		respond.Error(c, http.StatusBadGateway, respond.CodeUpstream, "question generation is temporarily unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "internal error", nil)
	}
}
