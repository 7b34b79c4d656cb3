package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"regulatory-chatbot-backend/internal/config"
	"regulatory-chatbot-backend/internal/logger"
	"regulatory-chatbot-backend/services"
)

// Evaluation runner: replays the gold question set against the running chat
// API for each model and writes the scored run plus a Markdown comparison.
func main() {
	modelsFlag := flag.String("models", "gemini,llama3", "comma-separated model ids to evaluate")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	var modelIDs []string
	for _, id := range strings.Split(*modelsFlag, ",") {
		if id = strings.TrimSpace(id); id != "" {
			modelIDs = append(modelIDs, id)
		}
	}

	evaluator := services.NewEvaluator(cfg)
	run, err := evaluator.Run(context.Background(), modelIDs)
	if err != nil {
		log.Fatal("Evaluation failed:", err)
	}

	jsonPath, mdPath, err := evaluator.SaveRun(run)
	if err != nil {
		log.Fatal("Failed to save evaluation run:", err)
	}

	fmt.Printf("\nEvaluation %s finished in %.1fs\n", run.Metadata.RunID, run.Metadata.DurationSeconds)
	fmt.Printf("  questions: %d  ok: %d  errors: %d  overall: %.2f/100\n",
		run.Summary.TotalQuestions, run.Summary.Successful, run.Summary.Errors, run.Summary.OverallAverage)
	for model, stats := range run.Summary.ByModel {
		fmt.Printf("  %-8s total=%.2f latency=%.2fs\n", model, stats.AverageScores.Total, stats.AvgResponseTime)
	}
	fmt.Printf("\n  results: %s\n  summary: %s\n", jsonPath, mdPath)
}
