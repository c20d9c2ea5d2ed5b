package reports

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/interviews"
	"interview-backend/internal/shared/server/respond"
)

// Handler exposes report generation and download over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a report handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Generate handles POST /report/generate/:id.
func (h *Handler) Generate(c *gin.Context) {
	interviewID := c.Param("id")
	c.Set("interviewId", interviewID)

	key, err := h.svc.Generate(c.Request.Context(), interviewID)
	if err != nil {
		h.mapError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"interview_id": interviewID,
		"report_key":   key,
	})
}

// Download handles GET /report/:id.
func (h *Handler) Download(c *gin.Context) {
	interviewID := c.Param("id")
	c.Set("interviewId", interviewID)

	rc, err := h.svc.Open(c.Request.Context(), interviewID)
	if err != nil {
		h.mapError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="interview_report_`+interviewID+`.pdf"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Headers are already sent; nothing left to do but log via abort.
		_ = c.Error(err)
	}
}

func (h *Handler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interviews.ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "interview not found", nil)
	case errors.Is(err, ErrNoReport):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "report not generated for this interview", nil)
	case errors.Is(err, interviews.ErrConflict):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "internal error", nil)
	}
}
