package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutgpt-be/internal/apperrors"
)

type flakyProvider struct {
	failures int32
}

func (p *flakyProvider) Name() string { return "flaky" }

func (p *flakyProvider) Complete(_ context.Context, _ CompletionRequest) (*Completion, error) {
	if atomic.AddInt32(&p.failures, -1) >= 0 {
		return nil, errors.New("upstream overloaded")
	}
	return &Completion{Text: "ok", StopReason: StopEndTurn}, nil
}

func TestRetryingProviderRecovers(t *testing.T) {
	inner := &flakyProvider{failures: 2}
	p := NewRetryingProvider(inner, 3, time.Millisecond)

	completion, err := p.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", completion.Text)
}

func TestRetryingProviderGivesUp(t *testing.T) {
	inner := &flakyProvider{failures: 10}
	p := NewRetryingProvider(inner, 3, time.Millisecond)

	_, err := p.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAssistantUnavailable))
}

func TestConvertTurnsRejectsUnknownRole(t *testing.T) {
	_, err := convertTurns([]Turn{{Role: "system", Text: "nope"}})
	require.Error(t, err)
}

func TestConvertTurnsShapesHistory(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Text: "what is this parcel zoned?"},
		{Role: RoleAssistant, Text: "checking", ToolUses: []ToolUse{{ID: "tu_1", Name: "query_arcgis", Input: map[string]interface{}{"layer": "zoning"}}}},
		{Role: RoleUser, ToolResults: []ToolResult{{ToolUseID: "tu_1", Content: `{"zone":"R-1"}`}}},
	}

	params, err := convertTurns(turns)
	require.NoError(t, err)
	require.Len(t, params, 3)
	assert.Equal(t, "user", string(params[0].Role))
	assert.Equal(t, "assistant", string(params[1].Role))
	assert.Equal(t, "user", string(params[2].Role))
}
