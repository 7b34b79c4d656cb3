package services

import (
	"fmt"
	"strings"
)

// Chunker splits long texts into overlapping windows, preferring to cut at
// paragraph, line, or word boundaries. Sizes are in characters (runes), not
// bytes, so accented text never gets split mid-character.
type Chunker struct {
	size    int
	overlap int
}

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// NewChunker builds a chunker. overlap must be strictly smaller than size,
// otherwise the sliding window would never advance.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split divides text into chunks. Texts no longer than the window are
// returned verbatim as a single chunk.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(runes) {
		end := start + c.size

		// Everything left fits in one window: emit the tail and stop, so the
		// overlap never re-enters already covered text.
		if end >= len(runes) {
			if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		window := runes[start:end]

		// Pull the cut back to the best natural break inside the window,
		// unless that would leave a degenerately short chunk or stall the
		// advance (cut must clear the overlap for start to move forward).
		cut := lastIndexRunes(window, []rune("\n\n"))
		if cut == -1 {
			cut = lastIndexRunes(window, []rune("\n"))
		}
		if cut == -1 {
			cut = lastIndexRunes(window, []rune(" "))
		}
		if cut > c.size/2 && cut > c.overlap {
			window = window[:cut]
			end = start + cut
		}

		if chunk := strings.TrimSpace(string(window)); chunk != "" {
			chunks = append(chunks, chunk)
		}

		start = end - c.overlap
	}

	return chunks
}

// lastIndexRunes is strings.LastIndex over rune slices.
func lastIndexRunes(s, sub []rune) int {
outer:
	for i := len(s) - len(sub); i >= 0; i-- {
		for j := range sub {
			if s[i+j] != sub[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
