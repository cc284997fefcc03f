package apperrors

import (
	"errors"
	"fmt"
)

// ConfigurationError signals invalid startup configuration (bad chunking
// parameters, missing layer URLs). Fatal: reject at boot, never at request time.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// EmbeddingUnavailableError wraps a provider failure (timeout, quota,
// malformed response). The caller decides whether to degrade; we never
// substitute placeholder vectors into a persisted index.
type EmbeddingUnavailableError struct {
	Provider string
	Err      error
}

func (e *EmbeddingUnavailableError) Error() string {
	return fmt.Sprintf("embedding provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *EmbeddingUnavailableError) Unwrap() error {
	return e.Err
}

func NewEmbeddingUnavailable(provider string, err error) *EmbeddingUnavailableError {
	return &EmbeddingUnavailableError{Provider: provider, Err: err}
}

// DimensionMismatchError signals a vector whose dimension differs from the
// index's fixed dimension. Ingestion is rejected rather than corrupting
// future similarity rankings.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: index expects %d, got %d", e.Want, e.Got)
}

func NewDimensionMismatch(want, got int) *DimensionMismatchError {
	return &DimensionMismatchError{Want: want, Got: got}
}

// ToolInputInvalidError describes arguments from the model that fail the
// tool's declared schema. It is reported back into the conversation as a
// failed tool result so the model can self-correct, never raised to the user.
type ToolInputInvalidError struct {
	Tool   string
	Reason string
}

func (e *ToolInputInvalidError) Error() string {
	return fmt.Sprintf("invalid input for tool %s: %s", e.Tool, e.Reason)
}

func NewToolInputInvalid(tool, reason string) *ToolInputInvalidError {
	return &ToolInputInvalidError{Tool: tool, Reason: reason}
}

// ErrLoopBoundExceeded marks an orchestrator run that hit the tool round-trip
// cap and terminated with a best-effort reply.
var ErrLoopBoundExceeded = errors.New("tool round-trip limit exceeded")

// ErrAssistantUnavailable is surfaced when LLM retries are exhausted.
// The caller gets this error, never a partial reply.
var ErrAssistantUnavailable = errors.New("assistant temporarily unavailable")

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsEmbeddingUnavailable reports whether err wraps an EmbeddingUnavailableError.
func IsEmbeddingUnavailable(err error) bool {
	var ee *EmbeddingUnavailableError
	return errors.As(err, &ee)
}

// IsDimensionMismatch reports whether err wraps a DimensionMismatchError.
func IsDimensionMismatch(err error) bool {
	var de *DimensionMismatchError
	return errors.As(err, &de)
}
