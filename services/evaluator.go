package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"regulatory-chatbot-backend/internal/config"
	"regulatory-chatbot-backend/internal/logger"
	"regulatory-chatbot-backend/models"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Evaluator drives a full evaluation pass: gold dataset → /chat queries →
// scoring → aggregation → persisted JSON run plus Markdown summary. Request
// failures become zero-scored results; the pass always completes.
type Evaluator struct {
	apiBaseURL string
	goldPath   string
	resultsDir string
	httpClient *http.Client
	scorer     *Scorer

	// politeness throttle between chat requests, not a correctness mechanism
	limiter *rate.Limiter
}

func NewEvaluator(cfg *config.Config) *Evaluator {
	delay := cfg.EvalDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Evaluator{
		apiBaseURL: strings.TrimRight(cfg.EvalAPIBaseURL, "/"),
		goldPath:   cfg.GoldDatasetPath,
		resultsDir: cfg.ResultsDir,
		httpClient: &http.Client{Timeout: cfg.EvalTimeout},
		scorer:     NewScorer(),
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
	}
}

// LoadGoldDataset reads and parses the gold question set.
func (e *Evaluator) LoadGoldDataset() (*models.GoldDataset, error) {
	data, err := os.ReadFile(e.goldPath)
	if err != nil {
		return nil, fmt.Errorf("gold dataset not found: %s", e.goldPath)
	}
	var dataset models.GoldDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("gold dataset is not valid JSON: %v", err)
	}
	return &dataset, nil
}

// Run evaluates every gold question against every requested model.
func (e *Evaluator) Run(ctx context.Context, modelIDs []string) (*models.EvaluationRun, error) {
	if len(modelIDs) == 0 {
		modelIDs = []string{"gemini", "llama3"}
	}

	dataset, err := e.LoadGoldDataset()
	if err != nil {
		return nil, err
	}
	logger.Info("Gold dataset loaded", "questions", len(dataset.Questions))

	if err := e.checkAPI(ctx); err != nil {
		return nil, fmt.Errorf("chatbot API unreachable at %s: %w", e.apiBaseURL, err)
	}

	start := time.Now()
	var results []models.EvaluationResult

	for _, model := range modelIDs {
		logger.Info("Evaluating model", "model", model)
		for i, question := range dataset.Questions {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			logger.Info("Evaluating question",
				"index", i+1,
				"total", len(dataset.Questions),
				"question_id", question.ID,
				"model", model)
			results = append(results, e.evaluateQuestion(ctx, question, model))
		}
	}

	run := &models.EvaluationRun{
		Metadata: models.EvaluationRunMetadata{
			RunID:           uuid.NewString(),
			ExecutionDate:   start.Format(time.RFC3339),
			TotalQuestions:  len(results),
			DurationSeconds: round2(time.Since(start).Seconds()),
			APIBaseURL:      e.apiBaseURL,
		},
		Results: results,
		Summary: Summarize(results),
	}
	return run, nil
}

func (e *Evaluator) checkAPI(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, e.apiBaseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("health check returned %s", resp.Status)
	}
	return nil
}

func (e *Evaluator) evaluateQuestion(ctx context.Context, question models.GoldQuestion, model string) models.EvaluationResult {
	result := models.EvaluationResult{
		QuestionID:        question.ID,
		Question:          question.Question,
		Category:          question.Category,
		Difficulty:        question.Difficulty,
		Model:             model,
		ExpectedKeywords:  question.ExpectedKeywords,
		ExpectedDocuments: question.SourceDocuments,
	}

	start := time.Now()
	response, err := e.queryChatbot(ctx, question.Question, model)
	result.ResponseTime = round2(time.Since(start).Seconds())

	if err != nil {
		logger.Error("Chat request failed", "question_id", question.ID, "model", model, "error", err)
		result.Error = err.Error()
		return result
	}

	result.Answer = response.Answer
	result.Sources = response.Sources
	result.Scores = e.scorer.Score(question, response.Answer, response.Sources)
	return result
}

func (e *Evaluator) queryChatbot(ctx context.Context, question, model string) (*models.ChatResponse, error) {
	body, err := json.Marshal(models.ChatRequest{
		Question: question,
		Model:    model,
		TopK:     defaultTopK,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiBaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chat request returned %s", resp.Status)
	}

	var chatResp models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %v", err)
	}
	return &chatResp, nil
}

// SaveRun persists the run as JSON plus a Markdown comparison summary,
// returning both paths.
func (e *Evaluator) SaveRun(run *models.EvaluationRun) (string, string, error) {
	if err := os.MkdirAll(e.resultsDir, 0o755); err != nil {
		return "", "", err
	}

	executed, err := time.Parse(time.RFC3339, run.Metadata.ExecutionDate)
	if err != nil {
		executed = time.Now()
	}

	jsonPath := filepath.Join(e.resultsDir, fmt.Sprintf("run_%s.json", executed.Format("2006_01_02_15_04")))
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", "", err
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", err
	}

	mdPath := filepath.Join(e.resultsDir, fmt.Sprintf("summary_%s.md", executed.Format("2006_01_02")))
	if err := os.WriteFile(mdPath, []byte(renderSummaryMarkdown(run, executed)), 0o644); err != nil {
		return "", "", err
	}

	logger.Info("Evaluation run saved", "json", jsonPath, "markdown", mdPath)
	return jsonPath, mdPath, nil
}

func renderSummaryMarkdown(run *models.EvaluationRun, executed time.Time) string {
	summary := run.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "# Resumen de Evaluación Comparativa - %s\n\n", executed.Format("02/01/2006 15:04"))

	b.WriteString("## Métricas Generales\n\n")
	fmt.Fprintf(&b, "- **Total preguntas:** %d\n", summary.TotalQuestions)
	fmt.Fprintf(&b, "- **Exitosas:** %d\n", summary.Successful)
	fmt.Fprintf(&b, "- **Errores:** %d\n", summary.Errors)
	fmt.Fprintf(&b, "- **Promedio general:** %.2f/100\n\n", summary.OverallAverage)

	modelNames := make([]string, 0, len(summary.ByModel))
	for name := range summary.ByModel {
		modelNames = append(modelNames, name)
	}
	sort.Strings(modelNames)

	b.WriteString("## Comparación de Modelos\n\n")
	b.WriteString("### Scores Promedio por Modelo\n\n")
	b.WriteString("| Métrica | " + strings.Join(modelNames, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(modelNames)+1) + "\n")

	metricRows := []struct {
		label string
		value func(models.AverageScores) float64
	}{
		{"Exactitud", func(a models.AverageScores) float64 { return a.Accuracy }},
		{"Cobertura", func(a models.AverageScores) float64 { return a.Coverage }},
		{"Claridad", func(a models.AverageScores) float64 { return a.Clarity }},
		{"Citas", func(a models.AverageScores) float64 { return a.Citations }},
		{"Alucinación", func(a models.AverageScores) float64 { return a.Hallucination }},
		{"Seguridad", func(a models.AverageScores) float64 { return a.Safety }},
		{"**TOTAL**", func(a models.AverageScores) float64 { return a.Total }},
	}
	for _, row := range metricRows {
		fmt.Fprintf(&b, "| %s |", row.label)
		for _, name := range modelNames {
			fmt.Fprintf(&b, " %.2f |", row.value(summary.ByModel[name].AverageScores))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n### Tiempo de Respuesta Promedio\n\n")
	b.WriteString("| Modelo | Tiempo (s) |\n|---|---|\n")
	for _, name := range modelNames {
		fmt.Fprintf(&b, "| %s | %.2f |\n", name, summary.ByModel[name].AvgResponseTime)
	}

	for _, name := range modelNames {
		stats := summary.ByModel[name]
		fmt.Fprintf(&b, "\n## Detalles: %s\n\n", strings.ToUpper(name))

		b.WriteString("### Por Categoría\n\n| Categoría | Score |\n|---|---|\n")
		for _, cat := range sortedKeys(stats.ByCategory) {
			fmt.Fprintf(&b, "| %s | %.2f |\n", cat, stats.ByCategory[cat])
		}

		b.WriteString("\n### Por Dificultad\n\n| Dificultad | Score |\n|---|---|\n")
		for _, diff := range sortedKeys(stats.ByDifficulty) {
			fmt.Fprintf(&b, "| %s | %.2f |\n", diff, stats.ByDifficulty[diff])
		}
	}

	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
