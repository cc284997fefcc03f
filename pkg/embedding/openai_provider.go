package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"scoutgpt-be/internal/apperrors"
)

// OpenAIProvider implements Provider against the OpenAI embeddings endpoint
// (or any API speaking the same wire format).
type OpenAIProvider struct {
	apiKey    string
	baseURL   string
	model     string
	dimension int
	client    *http.Client
}

type openaiEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openaiEmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIProvider(apiKey, model string, dimension int, timeout time.Duration) *OpenAIProvider {
	if model == "" {
		model = "text-embedding-3-small"
	}
	if dimension <= 0 {
		dimension = 1536 // text-embedding-3-small
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIProvider{
		apiKey:    apiKey,
		baseURL:   "https://api.openai.com/v1/embeddings",
		model:     model,
		dimension: dimension,
		client:    &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the endpoint, mainly for tests and self-hosted
// OpenAI-compatible gateways.
func (p *OpenAIProvider) WithBaseURL(url string) *OpenAIProvider {
	p.baseURL = url
	return p
}

func (p *OpenAIProvider) Dimension() int {
	return p.dimension
}

func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := openaiEmbeddingRequest{
		Model: p.model,
		Input: texts,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.NewEmbeddingUnavailable("openai", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewEmbeddingUnavailable("openai",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes)))
	}

	var apiResp openaiEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, apperrors.NewEmbeddingUnavailable("openai", fmt.Errorf("malformed response: %w", err))
	}
	if apiResp.Error != nil {
		return nil, apperrors.NewEmbeddingUnavailable("openai", fmt.Errorf("api error: %s", apiResp.Error.Message))
	}
	if len(apiResp.Data) != len(texts) {
		return nil, apperrors.NewEmbeddingUnavailable("openai",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(apiResp.Data)))
	}

	// The API echoes input indices; order by them rather than trusting
	// response ordering.
	sort.Slice(apiResp.Data, func(i, j int) bool {
		return apiResp.Data[i].Index < apiResp.Data[j].Index
	})

	vectors := make([][]float32, len(apiResp.Data))
	for i, item := range apiResp.Data {
		if len(item.Embedding) != p.dimension {
			return nil, apperrors.NewDimensionMismatch(p.dimension, len(item.Embedding))
		}
		vectors[i] = Normalize(item.Embedding)
	}

	return vectors, nil
}
