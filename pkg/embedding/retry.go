package embedding

import (
	"context"
	"time"

	"scoutgpt-be/internal/apperrors"
)

// RetryingProvider wraps a Provider with bounded exponential backoff.
// Only provider-unavailable failures are retried; dimension mismatches and
// context cancellation propagate immediately.
type RetryingProvider struct {
	inner       Provider
	maxAttempts int
	baseDelay   time.Duration
}

func NewRetryingProvider(inner Provider, maxAttempts int, baseDelay time.Duration) *RetryingProvider {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &RetryingProvider{
		inner:       inner,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

func (p *RetryingProvider) Dimension() int {
	return p.inner.Dimension()
}

func (p *RetryingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	delay := p.baseDelay

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, apperrors.NewEmbeddingUnavailable("retry", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		vectors, err := p.inner.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if !apperrors.IsEmbeddingUnavailable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}
