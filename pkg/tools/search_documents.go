package tools

import (
	"context"
	"fmt"

	"scoutgpt-be/pkg/rag"
)

// SearchDocumentsTool lets the model search the ingested document corpus
// by semantic similarity.
type SearchDocumentsTool struct {
	searcher   rag.Searcher
	maxResults int
}

func NewSearchDocumentsTool(searcher rag.Searcher, maxResults int) *SearchDocumentsTool {
	if maxResults <= 0 {
		maxResults = rag.DefaultTopK
	}
	return &SearchDocumentsTool{searcher: searcher, maxResults: maxResults}
}

func (t *SearchDocumentsTool) Name() string {
	return "search_documents"
}

func (t *SearchDocumentsTool) Description() string {
	return "Search the uploaded real estate documents (deeds, leases, zoning reports, appraisals) for passages relevant to a question. Returns the most similar text chunks with their source document and page."
}

func (t *SearchDocumentsTool) Schema() Schema {
	return Schema{
		Properties: map[string]Property{
			"query": {
				Type:        "string",
				Description: "What to look for, phrased as a natural language question or topic",
			},
			"max_results": {
				Type:        "integer",
				Description: "Maximum number of chunks to return",
				Default:     float64(t.maxResults),
			},
		},
		Required: []string{"query"},
	}
}

func (t *SearchDocumentsTool) Execute(ctx context.Context, input map[string]interface{}) (*Result, error) {
	query, _ := input["query"].(string)
	maxResults := intArg(input, "max_results", t.maxResults)

	hits, err := t.searcher.Search(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("document search failed: %w", err)
	}

	results := make([]map[string]interface{}, 0, len(hits))
	var sources []string
	for _, h := range hits {
		entry := map[string]interface{}{
			"document_name": h.DocumentName,
			"text":          h.Text,
			"score":         h.Score,
			"chunk_index":   h.ChunkIndex,
		}
		source := h.DocumentName
		if h.Page > 0 {
			entry["page"] = h.Page
			source = fmt.Sprintf("%s (page %d)", h.DocumentName, h.Page)
		}
		results = append(results, entry)
		sources = append(sources, source)
	}

	return &Result{
		Payload: map[string]interface{}{
			"results":     results,
			"total_found": len(results),
		},
		Sources: sources,
	}, nil
}

// intArg reads an integer argument that may arrive as int (after schema
// coercion) or float64 (raw JSON).
func intArg(input map[string]interface{}, key string, fallback int) int {
	switch v := input[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
