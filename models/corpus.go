package models

import "encoding/json"

// Manifest is the corpus manifest file: one entry per curated document.
type Manifest struct {
	Documents []CorpusDocument `json:"documents"`
}

// CorpusDocument is one manifest entry. The manifest is curated offline and
// carries arbitrary extra fields (lists, nested objects) beyond the known
// ones, so the full raw record is kept alongside the typed accessors.
type CorpusDocument struct {
	ID           string
	Title        string
	Organization string
	Year         int
	Category     string
	FilePath     string

	// Raw holds the complete manifest entry, including fields not modeled
	// above. It is normalized into chunk metadata at ingestion time.
	Raw map[string]any
}

// Sentinel values for optional manifest fields.
const (
	UnknownID    = "unknown"
	UntitledDoc  = "Sin título"
	UnknownValue = "desconocido"
)

func (d *CorpusDocument) UnmarshalJSON(data []byte) error {
	raw := make(map[string]any)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Raw = raw
	d.ID = stringField(raw, "id", UnknownID)
	d.Title = stringField(raw, "titulo", UntitledDoc)
	d.Organization = stringField(raw, "organismo", UnknownValue)
	d.Category = stringField(raw, "categoria", "")
	d.FilePath = stringField(raw, "ruta_archivo", "")
	if v, ok := raw["anio"].(float64); ok {
		d.Year = int(v)
	}
	return nil
}

func stringField(raw map[string]any, key, fallback string) string {
	if v, ok := raw[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// ExtractionResult is the outcome of loading one corpus file. Failures are
// reported in-band (Success=false plus Error) rather than as Go errors.
type ExtractionResult struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
}

// DocumentResult is the per-document outcome of an ingestion run.
type DocumentResult struct {
	Success     bool   `json:"success"`
	DocumentID  string `json:"document_id"`
	ChunksCount int    `json:"chunks_count,omitempty"`
	Message     string `json:"message"`
}

// IngestionSummary aggregates an entire ingestion run.
type IngestionSummary struct {
	Success        bool             `json:"success"`
	TotalDocuments int              `json:"total_documents"`
	Successful     int              `json:"successful"`
	Failed         int              `json:"failed"`
	Results        []DocumentResult `json:"results"`
	Collection     string           `json:"collection"`
	Message        string           `json:"message,omitempty"`
}
