package embedding

import "context"

// Provider generates fixed-dimension embeddings for batches of text.
// Implementations are order-preserving: result[i] embeds texts[i].
// Failures surface as apperrors.EmbeddingUnavailableError; a provider never
// substitutes placeholder vectors.
type Provider interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the fixed vector width this provider produces.
	Dimension() int
}
