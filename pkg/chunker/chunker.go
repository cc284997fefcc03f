package chunker

import (
	"strings"

	"scoutgpt-be/internal/apperrors"
)

// DefaultTargetSize and DefaultOverlap are character counts tuned for
// embedding context limits, matching the ingestion pipeline defaults.
const (
	DefaultTargetSize = 1000
	DefaultOverlap    = 200
)

// Chunk is a bounded contiguous slice of a document's text, the unit of
// retrieval. Start/End are rune offsets into the source text covering the
// raw (untrimmed) window; Text is trimmed of surrounding whitespace.
type Chunk struct {
	Index     int
	Text      string
	Start     int
	End       int
	Page      int // 1-based page number, 0 when unknown
	CharCount int
	WordCount int
}

// sentence terminators searched backward inside the window. A cut lands
// immediately after the terminator sequence.
var terminators = []string{". ", "! ", "? ", "\n\n"}

// Split divides text into overlapping, boundary-aware chunks of roughly
// targetSize characters. The cursor advances by end-overlap, clamped so it
// is strictly increasing. Empty input yields an empty (nil) slice.
func Split(text string, targetSize, overlap int) ([]Chunk, error) {
	if targetSize <= 0 {
		return nil, apperrors.NewConfigurationError("chunk_target_size", "must be positive")
	}
	if overlap < 0 {
		return nil, apperrors.NewConfigurationError("chunk_overlap", "must not be negative")
	}
	if overlap >= targetSize {
		return nil, apperrors.NewConfigurationError("chunk_overlap", "must be smaller than target size")
	}

	runes := []rune(text)
	total := len(runes)
	if total == 0 {
		return nil, nil
	}

	var chunks []Chunk
	cursor := 0
	for cursor < total {
		end := cursor + targetSize
		if end >= total {
			end = total
		} else {
			// A raw cut mid-sentence is avoided when a terminator exists
			// inside the window; otherwise we cut at targetSize.
			if b := boundaryBefore(runes, cursor, end); b > cursor {
				end = b
			}
		}

		trimmed := strings.TrimSpace(string(runes[cursor:end]))
		if trimmed != "" {
			chunks = append(chunks, Chunk{
				Index:     len(chunks),
				Text:      trimmed,
				Start:     cursor,
				End:       end,
				CharCount: len([]rune(trimmed)),
				WordCount: len(strings.Fields(trimmed)),
			})
		}

		if end >= total {
			break
		}

		next := end - overlap
		// Guards against overlap >= emitted window length looping forever.
		if next <= cursor {
			next = cursor + 1
		}
		cursor = next
	}

	return chunks, nil
}

// boundaryBefore returns the largest cut position in (start, end] that sits
// immediately after a sentence terminator, or -1 when the window has none.
func boundaryBefore(runes []rune, start, end int) int {
	window := string(runes[start:end])
	best := -1
	for _, term := range terminators {
		if idx := strings.LastIndex(window, term); idx >= 0 {
			// idx is a byte offset into the window; convert back to runes.
			cut := start + len([]rune(window[:idx])) + len([]rune(term))
			if cut > best {
				best = cut
			}
		}
	}
	if best <= start || best > end {
		return -1
	}
	return best
}

// AssignPages stamps each chunk with the 1-based page containing its start
// offset. Page one starts at offset zero; pageOffsets[i] is the rune offset
// at which page i+2 begins. An empty slice leaves pages unknown.
func AssignPages(chunks []Chunk, pageOffsets []int) {
	if len(pageOffsets) == 0 {
		return
	}
	for i := range chunks {
		page := 1
		for p, off := range pageOffsets {
			if chunks[i].Start >= off {
				page = p + 2
			}
		}
		chunks[i].Page = page
	}
}
