package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Mode string
	Port string

	// ChromaDB connection
	ChromaHost     string
	ChromaPort     int
	CollectionName string

	// Model provider credentials
	GeminiAPIKey    string
	GroqAPIKey      string
	GeminiTier      string
	EmbeddingsModel string

	// HTTP surface
	CORSOrigins []string

	// Ingestion
	CorpusRoot       string
	ManifestFile     string
	ChunkSize        int
	ChunkOverlap     int
	MinContentLength int

	// Evaluation
	GoldDatasetPath string
	ResultsDir      string
	EvalAPIBaseURL  string
	EvalTimeout     time.Duration
	EvalDelay       time.Duration
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Mode: getEnv("MODE", "development"),
		Port: getEnv("APP_PORT", "9000"),

		ChromaHost:     getEnv("CHROMA_HOST", "localhost"),
		ChromaPort:     getEnvInt("CHROMA_PORT", 8000),
		CollectionName: getEnv("COLLECTION_NAME", "documentos_regulacion_ia"),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),
		EmbeddingsModel: getEnv("EMBEDDINGS_MODEL", "text-embedding-004"),

		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:9000"), ","),

		CorpusRoot:       getEnv("CORPUS_ROOT", "./data/corpus"),
		ManifestFile:     getEnv("MANIFEST_FILE", "corpus_metadata.json"),
		ChunkSize:        getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 200),
		MinContentLength: getEnvInt("MIN_CONTENT_LENGTH", 50),

		GoldDatasetPath: getEnv("GOLD_DATASET_PATH", "./data/evaluation/questions_gold.json"),
		ResultsDir:      getEnv("RESULTS_DIR", "./data/evaluation/results"),
		EvalAPIBaseURL:  getEnv("EVAL_API_BASE_URL", "http://localhost:9000"),
		EvalTimeout:     getEnvDuration("EVAL_TIMEOUT", 60*time.Second),
		EvalDelay:       getEnvDuration("EVAL_DELAY", 500*time.Millisecond),
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	return cfg, nil
}

// ManifestPath is the resolved location of the corpus manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.CorpusRoot, c.ManifestFile)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
