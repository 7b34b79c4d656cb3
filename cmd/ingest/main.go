package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"regulatory-chatbot-backend/internal/ai"
	"regulatory-chatbot-backend/internal/config"
	"regulatory-chatbot-backend/internal/logger"
	"regulatory-chatbot-backend/internal/vectorstore/chroma"
	"regulatory-chatbot-backend/services"
)

// Standalone ingestion runner: loads the manifest, pushes the whole corpus
// into ChromaDB, and prints the per-document report. Exits non-zero if any
// document failed so CI and scripts can tell.
func main() {
	manifestFlag := flag.String("manifest", "", "path to the corpus manifest (defaults to CORPUS_ROOT/MANIFEST_FILE)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	ctx := context.Background()

	embedder, err := ai.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingsModel)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}
	defer embedder.Close()

	store, err := chroma.Connect(ctx, chroma.Config{
		Host:     cfg.ChromaHost,
		Port:     cfg.ChromaPort,
		Name:     cfg.CollectionName,
		Embedder: embedder,
	})
	if err != nil {
		log.Fatal("Failed to connect to ChromaDB:", err)
	}

	ingestion, err := services.NewIngestionService(cfg, store)
	if err != nil {
		log.Fatal("Failed to initialize ingestion service:", err)
	}

	manifestPath := *manifestFlag
	if manifestPath == "" {
		manifestPath = cfg.ManifestPath()
	}

	summary := ingestion.IngestAll(ctx, manifestPath)

	fmt.Printf("\nIngestion summary (collection %s)\n", summary.Collection)
	fmt.Printf("  documents: %d  ok: %d  failed: %d\n\n", summary.TotalDocuments, summary.Successful, summary.Failed)
	for _, result := range summary.Results {
		status := "OK"
		if !result.Success {
			status = "FAIL"
		}
		fmt.Printf("  [%s] %-20s chunks=%-4d %s\n", status, result.DocumentID, result.ChunksCount, result.Message)
	}

	if !summary.Success || summary.Failed > 0 {
		os.Exit(1)
	}
}
