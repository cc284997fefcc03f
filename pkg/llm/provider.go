package llm

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
)

// ToolSpec describes a tool the model may call. Properties and Required
// follow JSON Schema object conventions.
type ToolSpec struct {
	Name        string
	Description string
	Properties  map[string]interface{}
	Required    []string
}

// ToolUse is one tool invocation requested by the model.
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// ToolResult carries the outcome of one tool invocation back to the model.
type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// Turn is one entry of conversation history in provider-neutral form.
// An assistant turn may carry tool uses alongside its text; a user turn
// carrying ToolResults answers the preceding assistant tool uses.
type Turn struct {
	Role        Role
	Text        string
	ToolUses    []ToolUse
	ToolResults []ToolResult
}

type CompletionRequest struct {
	System      string
	Messages    []Turn
	Tools       []ToolSpec
	MaxTokens   int
	Temperature float64
}

type Completion struct {
	Text       string
	ToolUses   []ToolUse
	StopReason StopReason
}

// Provider generates one assistant completion for a conversation.
// Implementations must preserve tool use ordering as returned by the model.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Name() string
}
