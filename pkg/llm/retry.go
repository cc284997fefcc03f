package llm

import (
	"context"
	"fmt"
	"time"

	"scoutgpt-be/internal/apperrors"
)

// RetryingProvider retries transient completion failures with doubling
// backoff. Exhausted attempts surface as ErrAssistantUnavailable so the
// caller can fail the conversational turn cleanly.
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
		baseDelay = 1 * time.Second
	}
	return &RetryingProvider{inner: inner, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

func (p *RetryingProvider) Name() string {
	return p.inner.Name()
}

func (p *RetryingProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	var lastErr error
	delay := p.baseDelay
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		completion, err := p.inner.Complete(ctx, req)
		if err == nil {
			return completion, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if attempt < p.maxAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", apperrors.ErrAssistantUnavailable, ctx.Err())
			}
			delay *= 2
		}
	}
	return nil, fmt.Errorf("%w: %d attempts failed, last: %v", apperrors.ErrAssistantUnavailable, p.maxAttempts, lastErr)
}
