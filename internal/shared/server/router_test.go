package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/analyses"
	"interview-backend/internal/bootstrap"
	"interview-backend/internal/interviews"
	"interview-backend/internal/llm"
	"interview-backend/internal/reports"
	"interview-backend/internal/resumes"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/storage/object/local"
)

type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("script exhausted")
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func buildTestApp(t *testing.T, client llm.Client) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &bootstrap.App{
		Config: config.Config{Env: "dev", CORSAllowOrigin: []string{"http://localhost:5173"}},
		Repo:   interviews.NewMemoryRepo(),
		Store:  local.New(t.TempDir()),
		LLM:    client,
	}
	app.InterviewHandler = interviews.NewHandler(interviews.NewService(app.Repo, app.LLM, 0))
	app.ResumeHandler = resumes.NewHandler(resumes.NewService(app.Repo, app.Store, app.LLM))
	app.AnalysisHandler = analyses.NewHandler(analyses.NewService(app.Repo, app.LLM))
	app.ReportHandler = reports.NewHandler(reports.NewService(app.Repo, app.Store))
	return app
}

func buildDOCX(t *testing.T) []byte {
	t.Helper()
	const doc = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body><w:p><w:r><w:t>Sam Rivera. Go, PostgreSQL, Docker.</w:t></w:r></w:p></w:body>
</w:document>`
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func questionJSON(question, skill string) string {
	return fmt.Sprintf(`{
		"question": %q,
		"current_skill": %q,
		"difficulty": "intermediate",
		"thought_process": {
			"response_analysis": "ok",
			"knowledge_assessment": "ok",
			"topic_decision": "stay",
			"approach": "probe"
		},
		"follow_ups": ["why?"]
	}`, question, skill)
}

const assessmentJSON = `{
	"skill_categories": {
		"Backend": {
			"rating": 8,
			"subcategories": {
				"Go": {"rating": 8, "evidence": "good"},
				"PostgreSQL": {"rating": 7, "evidence": "fine"},
				"Docker": {"rating": 9, "evidence": "strong"}
			}
		}
	},
	"overall_rating": 8,
	"overall_performance": "Strong candidate.",
	"evidence": ["good depth"]
}`

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFullInterviewLifecycle(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"technical_skills": ["Go", "PostgreSQL", "Docker"]}`,
		questionJSON("Welcome Sam! Tell me about Go.", "Go"),
		questionJSON("How does MVCC work in PostgreSQL?", "PostgreSQL"),
		assessmentJSON,
	}}
	app := buildTestApp(t, client)
	router := NewRouter(app)

	// Upload the resume.
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, err := mw.CreateFormFile("file", "resume.docx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(buildDOCX(t)); err != nil {
		t.Fatal(err)
	}
	_ = mw.WriteField("candidate_name", "Sam Rivera")
	_ = mw.WriteField("role", "Backend Engineer")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resume", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("resume upload: %d %s", w.Code, w.Body.String())
	}
	var upload resumes.UploadResult
	if err := json.Unmarshal(w.Body.Bytes(), &upload); err != nil {
		t.Fatal(err)
	}
	id := upload.InterviewID
	if id == "" || len(upload.TechnicalSkills) != 3 {
		t.Fatalf("upload payload: %s", w.Body.String())
	}

	// Rate skills.
	w = postJSON(t, router, "/api/v1/skills", map[string]any{
		"interview_id": id,
		"skills":       map[string]int{"Go": 9, "PostgreSQL": 7, "Docker": 8},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("skills: %d %s", w.Code, w.Body.String())
	}

	// Start and answer one question.
	w = postJSON(t, router, "/api/v1/interview/start", map[string]any{"interview_id": id})
	if w.Code != http.StatusOK {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}
	w = postJSON(t, router, "/api/v1/interview/continue", map[string]any{
		"interview_id": id,
		"answer":       "Goroutines are scheduled by the runtime.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("continue: %d %s", w.Code, w.Body.String())
	}

	// Status reflects progress.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/interview/"+id+"/status", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "awaiting_answer") {
		t.Fatalf("status: %d %s", w.Code, w.Body.String())
	}

	// Analyze.
	w = postJSON(t, router, "/api/v1/analysis/generate", map[string]any{"interview_id": id})
	if w.Code != http.StatusOK {
		t.Fatalf("analysis: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"result":"Pass"`) {
		t.Errorf("analysis payload: %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/analysis/"+id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get analysis: %d", w.Code)
	}

	// Report.
	w = postJSON(t, router, "/api/v1/report/generate/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("report generate: %d %s", w.Code, w.Body.String())
	}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/report/"+id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("report download: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("download is not a PDF")
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	app := buildTestApp(t, &scriptedLLM{})
	router := NewRouter(app)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "memory") {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "interview_started_total") {
		t.Fatalf("metrics: %d", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	app := buildTestApp(t, &scriptedLLM{})
	router := NewRouter(app)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("response should carry a request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Header().Get("X-Request-Id") != "fixed-id" {
		t.Error("caller-provided request id should be echoed")
	}
}
