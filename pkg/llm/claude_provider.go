package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultClaudeModel     = "claude-sonnet-4-20250514"
	DefaultClaudeMaxTokens = 4096
	DefaultClaudeTimeout   = 120 * time.Second
)

// ClaudeProvider implements Provider using the Anthropic Messages API.
type ClaudeProvider struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

func NewClaudeProvider(apiKey, model string, timeout time.Duration) (*ClaudeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	if timeout <= 0 {
		timeout = DefaultClaudeTimeout
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &ClaudeProvider{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

func (p *ClaudeProvider) Name() string {
	return "claude"
}

// convertTurns maps provider-neutral history onto Claude message params,
// keeping chronological order. Assistant tool uses and the user tool
// results answering them are rebuilt as their native block types.
func convertTurns(turns []Turn) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(turns))
	for i, t := range turns {
		switch t.Role {
		case RoleUser:
			if len(t.ToolResults) > 0 {
				blocks := make([]anthropic.ContentBlockParamUnion, 0, len(t.ToolResults)+1)
				for _, tr := range t.ToolResults {
					blocks = append(blocks, anthropic.NewToolResultBlock(tr.ToolUseID, tr.Content, tr.IsError))
				}
				if t.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(t.Text))
				}
				out = append(out, anthropic.NewUserMessage(blocks...))
				continue
			}
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		case RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(t.ToolUses)+1)
			if t.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(t.Text))
			}
			for _, tu := range t.ToolUses {
				blocks = append(blocks, anthropic.NewToolUseBlock(tu.ID, tu.Input, tu.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			return nil, fmt.Errorf("unsupported message role at index %d: %q", i, t.Role)
		}
	}
	return out, nil
}

func convertTools(tools []ToolSpec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		tp := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: t.Properties,
				Required:   t.Required,
			},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tp})
	}
	return out
}

func (p *ClaudeProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	messages, err := convertTurns(req.Messages)
	if err != nil {
		return nil, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultClaudeMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}

	resp, err := p.client.Messages.New(callCtx, params)
	if err != nil {
		return nil, fmt.Errorf("claude api call failed: %w", err)
	}

	var text strings.Builder
	var toolUses []ToolUse
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			var input map[string]interface{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &input); err != nil {
					return nil, fmt.Errorf("failed to decode tool input for %s: %w", block.Name, err)
				}
			}
			if input == nil {
				input = map[string]interface{}{}
			}
			toolUses = append(toolUses, ToolUse{
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		}
	}

	return &Completion{
		Text:       text.String(),
		ToolUses:   toolUses,
		StopReason: StopReason(resp.StopReason),
	}, nil
}
