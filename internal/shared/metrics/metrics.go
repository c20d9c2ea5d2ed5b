package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	interviewStartedTotal   atomic.Uint64
	questionGeneratedTotal  atomic.Uint64
	responseRepairedTotal   atomic.Uint64
	analysisGeneratedTotal  atomic.Uint64
	reportGeneratedTotal    atomic.Uint64
	llmRequestFailedTotal   atomic.Uint64

	llmDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncInterviewStarted increments the started counter.
func IncInterviewStarted() {
	interviewStartedTotal.Add(1)
}

// IncQuestionGenerated increments the generated-question counter.
func IncQuestionGenerated() {
	questionGeneratedTotal.Add(1)
}

// IncResponseRepaired counts model responses replaced by the fallback.
func IncResponseRepaired() {
	responseRepairedTotal.Add(1)
}

// IncAnalysisGenerated increments the analysis counter.
func IncAnalysisGenerated() {
	analysisGeneratedTotal.Add(1)
}

// IncReportGenerated increments the report counter.
func IncReportGenerated() {
	reportGeneratedTotal.Add(1)
}

// IncLLMRequestFailed counts LLM calls that failed after retry exhaustion.
func IncLLMRequestFailed() {
	llmRequestFailedTotal.Add(1)
}

// ObserveLLMDurationMs records an LLM round-trip duration in milliseconds.
func ObserveLLMDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	llmDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "interview_started_total", "Total interviews started", interviewStartedTotal.Load())
	writeCounter(&buf, "interview_question_generated_total", "Total interview questions generated", questionGeneratedTotal.Load())
	writeCounter(&buf, "interview_response_repaired_total", "Total model responses replaced by the fallback", responseRepairedTotal.Load())
	writeCounter(&buf, "interview_analysis_generated_total", "Total performance analyses generated", analysisGeneratedTotal.Load())
	writeCounter(&buf, "interview_report_generated_total", "Total PDF reports generated", reportGeneratedTotal.Load())
	writeCounter(&buf, "llm_request_failed_total", "Total LLM requests failed after retries", llmRequestFailedTotal.Load())
	writeHistogram(&buf, "llm_request_duration_ms", "LLM request duration in milliseconds", llmDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	// counts are kept cumulative, matching the exposition format.
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	for i, bound := range snap.buckets {
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), snap.counts[i])
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
