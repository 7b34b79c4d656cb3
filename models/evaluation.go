package models

// GoldDataset is the curated question set used for automated evaluation.
type GoldDataset struct {
	Metadata  GoldDatasetMetadata `json:"metadata"`
	Questions []GoldQuestion      `json:"questions"`
}

type GoldDatasetMetadata struct {
	TotalQuestions int `json:"total_questions"`
}

// GoldQuestion pairs a question with the signals a good answer must show.
type GoldQuestion struct {
	ID               int      `json:"id"`
	Question         string   `json:"question"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	ExpectedKeywords []string `json:"expected_keywords"`
	SourceDocuments  []string `json:"source_documents"`
}

// Scores holds the six evaluation sub-scores plus their truncated mean.
// Every value is clamped to [0,100].
type Scores struct {
	Accuracy      int `json:"accuracy"`
	Coverage      int `json:"coverage"`
	Clarity       int `json:"clarity"`
	Citations     int `json:"citations"`
	Hallucination int `json:"hallucination"`
	Safety        int `json:"safety"`
	Total         int `json:"total"`
}

// EvaluationResult is one scored (question, model) pair. Immutable once
// produced; request failures carry Error and zeroed scores.
type EvaluationResult struct {
	QuestionID        int      `json:"question_id"`
	Question          string   `json:"question"`
	Category          string   `json:"category"`
	Difficulty        string   `json:"difficulty"`
	Model             string   `json:"model"`
	Answer            string   `json:"answer,omitempty"`
	Sources           []Source `json:"sources,omitempty"`
	ExpectedKeywords  []string `json:"expected_keywords,omitempty"`
	ExpectedDocuments []string `json:"expected_documents,omitempty"`
	Error             string   `json:"error,omitempty"`
	ResponseTime      float64  `json:"response_time"`
	Scores            Scores   `json:"scores"`
}

// AverageScores mirrors Scores with float averages, rounded to 2 decimals.
type AverageScores struct {
	Accuracy      float64 `json:"accuracy"`
	Coverage      float64 `json:"coverage"`
	Clarity       float64 `json:"clarity"`
	Citations     float64 `json:"citations"`
	Hallucination float64 `json:"hallucination"`
	Safety        float64 `json:"safety"`
	Total         float64 `json:"total"`
}

// ModelStats aggregates all results for one model.
type ModelStats struct {
	TotalQuestions  int                `json:"total_questions"`
	AverageScores   AverageScores      `json:"average_scores"`
	ByCategory      map[string]float64 `json:"by_category"`
	ByDifficulty    map[string]float64 `json:"by_difficulty"`
	AvgResponseTime float64            `json:"avg_response_time"`
}

// EvaluationSummary is the run-level aggregate across every model.
type EvaluationSummary struct {
	TotalQuestions int                   `json:"total_questions"`
	Successful     int                   `json:"successful"`
	Errors         int                   `json:"errors"`
	OverallAverage float64               `json:"overall_average"`
	ByModel        map[string]ModelStats `json:"by_model"`
}

// EvaluationRun is the persisted record of one full evaluation pass.
type EvaluationRun struct {
	Metadata EvaluationRunMetadata `json:"metadata"`
	Results  []EvaluationResult    `json:"results"`
	Summary  EvaluationSummary     `json:"summary"`
}

type EvaluationRunMetadata struct {
	RunID           string  `json:"run_id"`
	ExecutionDate   string  `json:"execution_date"`
	TotalQuestions  int     `json:"total_questions"`
	DurationSeconds float64 `json:"duration_seconds"`
	APIBaseURL      string  `json:"api_base_url"`
}
