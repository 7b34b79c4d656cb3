package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"regulatory-chatbot-backend/internal/logger"
	"regulatory-chatbot-backend/models"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

// FileExtractor loads corpus files and extracts their plain text. All
// failures are soft: the caller always gets an ExtractionResult, never a
// panic or an error to unwrap.
type FileExtractor struct{}

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".docx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract loads one file and returns its text plus basic file metadata.
func (e *FileExtractor) Extract(path string) *models.ExtractionResult {
	info, err := os.Stat(path)
	if err != nil {
		logger.Error("File not found", "path", path)
		return &models.ExtractionResult{
			Metadata: map[string]any{},
			Success:  false,
			Error:    "file not found",
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		logger.Warn("Unsupported extension", "path", path, "extension", ext)
		return &models.ExtractionResult{
			Metadata: map[string]any{"filename": filepath.Base(path), "extension": ext},
			Success:  false,
			Error:    fmt.Sprintf("unsupported extension: %s", ext),
		}
	}

	absPath, _ := filepath.Abs(path)
	metadata := map[string]any{
		"filename":   filepath.Base(path),
		"extension":  ext,
		"size_bytes": info.Size(),
		"path":       absPath,
	}

	var text string
	switch ext {
	case ".pdf":
		text, err = e.extractPDF(path)
	case ".txt", ".md":
		text, err = e.extractText(path)
	case ".docx":
		text, err = e.extractDocx(path)
	case ".png", ".jpg", ".jpeg":
		// No OCR configured: images are a supported extension but only
		// yield a placeholder.
		logger.Warn("Image file accepted without OCR", "path", path)
		text = fmt.Sprintf("[Archivo de imagen: %s]", filepath.Base(path))
	}

	if err != nil {
		logger.Error("Extraction failed", "path", path, "error", err)
		return &models.ExtractionResult{
			Metadata: metadata,
			Success:  false,
			Error:    err.Error(),
		}
	}

	if strings.TrimSpace(text) == "" {
		logger.Warn("No text extracted", "path", path)
		return &models.ExtractionResult{
			Metadata: metadata,
			Success:  false,
			Error:    "no text could be extracted",
		}
	}

	logger.Info("File loaded", "file", filepath.Base(path), "chars", len(text))
	return &models.ExtractionResult{
		Text:     text,
		Metadata: metadata,
		Success:  true,
	}
}

// ExtractDirectory loads every supported file under root.
func (e *FileExtractor) ExtractDirectory(root string) []*models.ExtractionResult {
	var results []*models.ExtractionResult
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			results = append(results, e.Extract(path))
		}
		return nil
	})
	return results
}

// extractText reads plain text, trying UTF-8 first and falling back to the
// legacy single-byte encodings the corpus has shown up in.
func (e *FileExtractor) extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		decoded, err := cm.NewDecoder().Bytes(data)
		if err == nil {
			return string(decoded), nil
		}
	}

	return "", fmt.Errorf("could not decode %s with any supported encoding", filepath.Base(path))
}

// extractPDF extracts per-page text, joining pages with blank lines. The
// library extractor is tried first; pdftotext is the fallback when it fails
// or yields nothing usable.
func (e *FileExtractor) extractPDF(path string) (string, error) {
	text, primaryErr := e.extractPDFLibrary(path)
	if primaryErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if primaryErr != nil {
		logger.Warn("Primary PDF extraction failed, trying pdftotext", "path", path, "error", primaryErr)
	}

	text, fallbackErr := e.extractPDFPoppler(path)
	if fallbackErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	if primaryErr != nil {
		return "", fmt.Errorf("pdf extraction failed: %v", primaryErr)
	}
	return "", fmt.Errorf("pdf extraction produced no text")
}

func (e *FileExtractor) extractPDFLibrary(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Failed to extract PDF page", "path", path, "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}

func (e *FileExtractor) extractPDFPoppler(path string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not available")
	}

	cmd := exec.Command("pdftotext", "-layout", path, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %v, stderr: %s", err, stderr.String())
	}

	return stdout.String(), nil
}

// extractDocx pulls the non-empty paragraph texts out of the document XML
// and joins them with blank lines.
func (e *FileExtractor) extractDocx(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer archive.Close()

	var docXML io.ReadCloser
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			docXML, err = file.Open()
			if err != nil {
				return "", fmt.Errorf("failed to read document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}
	defer docXML.Close()

	var paragraphs []string
	var current strings.Builder
	decoder := xml.NewDecoder(docXML)
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if para := strings.TrimSpace(current.String()); para != "" {
					paragraphs = append(paragraphs, para)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}
