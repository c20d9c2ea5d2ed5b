package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/bootstrap"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/server/middleware"
)

// NewRouter builds the HTTP router with the full middleware chain.
func NewRouter(app *bootstrap.App) *gin.Engine {
	if app.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.CORS(app.Config.CORSAllowOrigin))

	r.GET("/health", healthHandler(app))
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/api/v1")
	{
		v1.POST("/resume", app.ResumeHandler.Upload)
		v1.POST("/skills", app.InterviewHandler.RateSkills)

		v1.POST("/interview/start", app.InterviewHandler.Start)
		v1.POST("/interview/continue", app.InterviewHandler.Continue)
		v1.GET("/interview/:id/status", app.InterviewHandler.Status)

		v1.POST("/analysis/generate", app.AnalysisHandler.Generate)
		v1.GET("/analysis/:id", app.AnalysisHandler.Get)

		v1.POST("/report/generate/:id", app.ReportHandler.Generate)
		v1.GET("/report/:id", app.ReportHandler.Download)
	}

	return r
}

func healthHandler(app *bootstrap.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		storage := "memory"
		dbStatus := "skipped"
		if app.DB != nil {
			storage = "postgres"
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := app.DB.PingContext(pingCtx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "degraded",
					"storage": storage,
					"db":      err.Error(),
				})
				return
			}
			dbStatus = "ok"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"storage": storage,
			"db":      dbStatus,
		})
	}
}
