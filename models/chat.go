package models

import "time"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Question string `json:"question" binding:"required,min=1,max=2000"`
	Model    string `json:"model,omitempty"`
	TopK     int    `json:"top_k,omitempty"`
}

// Source describes one retrieved chunk's parent document, surfaced with the
// answer so callers can verify provenance.
type Source struct {
	Title    string `json:"title"`
	Source   string `json:"source"`
	Category string `json:"category"`
	Year     int    `json:"year,omitempty"`
	FilePath string `json:"file_path,omitempty"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Answer    string    `json:"answer"`
	Model     string    `json:"model"`
	Sources   []Source  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}

// ModelInfo describes one entry of the provider registry for GET /models.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
}
