package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"interview-backend/internal/analyses"
	"interview-backend/internal/interviews"
	"interview-backend/internal/llm"
	"interview-backend/internal/llm/groq"
	"interview-backend/internal/reports"
	"interview-backend/internal/resumes"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/storage/db"
	"interview-backend/internal/shared/storage/object"
	"interview-backend/internal/shared/storage/object/local"
	"interview-backend/internal/shared/telemetry"
)

// App wires every dependency explicitly so main stays trivial and tests
// can build the whole stack with substitutes.
type App struct {
	Config config.Config
	DB     *sql.DB
	Repo   interviews.Repo
	Store  object.ObjectStore
	LLM    llm.Client

	ResumeHandler    *resumes.Handler
	InterviewHandler *interviews.Handler
	AnalysisHandler  *analyses.Handler
	ReportHandler    *reports.Handler
}

// Build constructs the application from configuration.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg}

	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		app.DB = sqlDB
		app.Repo = interviews.NewPGRepo(sqlDB)
	} else {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		telemetry.Warn("bootstrap.memory_repo", map[string]any{
			"env": cfg.Env,
		})
		app.Repo = interviews.NewMemoryRepo()
	}

	app.Store = local.New(cfg.LocalStoreDir)
	app.LLM = buildLLM(cfg)

	interviewSvc := interviews.NewService(app.Repo, app.LLM, cfg.MaxQuestions)
	resumeSvc := resumes.NewService(app.Repo, app.Store, app.LLM)
	analysisSvc := analyses.NewService(app.Repo, app.LLM)
	reportSvc := reports.NewService(app.Repo, app.Store)

	app.InterviewHandler = interviews.NewHandler(interviewSvc)
	app.ResumeHandler = resumes.NewHandler(resumeSvc)
	app.AnalysisHandler = analyses.NewHandler(analysisSvc)
	app.ReportHandler = reports.NewHandler(reportSvc)

	return app, nil
}

func buildLLM(cfg config.Config) llm.Client {
	if cfg.LLMProvider == "groq" && cfg.GroqAPIKey != "" {
		client, err := groq.NewClient(
			cfg.GroqAPIKey,
			cfg.LLMModel,
			cfg.LLMTimeout,
			groq.WithRetry(cfg.LLMMaxRetries, cfg.LLMRetryDelay),
		)
		if err == nil {
			return client
		}
		telemetry.Error("bootstrap.llm", map[string]any{"error": err.Error()})
	}
	telemetry.Warn("bootstrap.llm_placeholder", map[string]any{
		"provider": cfg.LLMProvider,
	})
	return llm.PlaceholderClient{}
}

// Close releases held resources.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
