package orchestrator

import (
	"context"
	"sync"

	"scoutgpt-be/internal/pkg/logger"
	"scoutgpt-be/pkg/geo"
	"scoutgpt-be/pkg/llm"
	"scoutgpt-be/pkg/tools"
)

const (
	DefaultMaxToolRounds = 10
	DefaultMaxTokens     = 4096
	DefaultTemperature   = 0.7
)

// Options tune a single orchestrator instance. Zero values fall back to
// the defaults above.
type Options struct {
	SystemPrompt  string
	MaxToolRounds int
	MaxTokens     int
	Temperature   float64
}

// Reply is the assistant's answer for one user message, with the source
// citations and map geometry gathered along the way.
type Reply struct {
	Text        string
	Sources     []string
	Geometry    *geo.FeatureCollection
	ToolCalls   int
	ToolsUsed   []string
	StopReason  llm.StopReason
	LoopBounded bool
}

// Orchestrator drives the model's tool-calling loop for one message:
// completion, tool dispatch, tool results, repeat, until the model stops
// asking for tools or the round cap forces a wrap-up.
type Orchestrator struct {
	provider llm.Provider
	registry *tools.Registry
	opts     Options
	log      logger.ILogger
}

func New(provider llm.Provider, registry *tools.Registry, opts Options, log logger.ILogger) *Orchestrator {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = DefaultMaxToolRounds
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	return &Orchestrator{
		provider: provider,
		registry: registry,
		opts:     opts,
		log:      log,
	}
}

// Run answers one user message against prior conversation history. The
// history carries plain text turns only; intermediate tool traffic from
// earlier messages is not replayed.
func (o *Orchestrator) Run(ctx context.Context, history []llm.Turn, userMessage string) (*Reply, error) {
	messages := make([]llm.Turn, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Turn{Role: llm.RoleUser, Text: userMessage})

	reply := &Reply{}
	seenSources := make(map[string]struct{})
	specs := o.registry.Specs()

	completion, err := o.complete(ctx, messages, specs)
	if err != nil {
		return nil, err
	}

	rounds := 0
	for completion.StopReason == llm.StopToolUse && len(completion.ToolUses) > 0 {
		if rounds >= o.opts.MaxToolRounds {
			if o.log != nil {
				o.log.Warn("orchestrator", "tool round cap reached, forcing wrap-up", map[string]interface{}{
					"rounds":     rounds,
					"tool_calls": reply.ToolCalls,
				})
			}
			reply.LoopBounded = true
			completion, err = o.wrapUp(ctx, messages, completion)
			if err != nil {
				return nil, err
			}
			break
		}
		rounds++

		outcomes := o.dispatchAll(ctx, completion.ToolUses)

		results := make([]llm.ToolResult, 0, len(outcomes))
		for _, out := range outcomes {
			reply.ToolCalls++
			reply.ToolsUsed = append(reply.ToolsUsed, out.Name)
			for _, src := range out.Sources {
				if _, seen := seenSources[src]; !seen {
					seenSources[src] = struct{}{}
					reply.Sources = append(reply.Sources, src)
				}
			}
			if out.Geometry != nil {
				if reply.Geometry == nil {
					fc := geo.NewFeatureCollection(nil)
					reply.Geometry = &fc
				}
				reply.Geometry.Merge(out.Geometry.Features)
			}
			results = append(results, llm.ToolResult{
				ToolUseID: out.ToolUseID,
				Content:   out.Content,
				IsError:   out.IsError,
			})
		}

		messages = append(messages, llm.Turn{
			Role:     llm.RoleAssistant,
			Text:     completion.Text,
			ToolUses: completion.ToolUses,
		})
		messages = append(messages, llm.Turn{
			Role:        llm.RoleUser,
			ToolResults: results,
		})

		completion, err = o.complete(ctx, messages, specs)
		if err != nil {
			return nil, err
		}
	}

	reply.Text = completion.Text
	reply.StopReason = completion.StopReason
	return reply, nil
}

func (o *Orchestrator) complete(ctx context.Context, messages []llm.Turn, specs []llm.ToolSpec) (*llm.Completion, error) {
	return o.provider.Complete(ctx, llm.CompletionRequest{
		System:      o.opts.SystemPrompt,
		Messages:    messages,
		Tools:       specs,
		MaxTokens:   o.opts.MaxTokens,
		Temperature: o.opts.Temperature,
	})
}

// wrapUp answers the pending tool uses with refusals and asks for a final
// text answer with no tools offered, so the model cannot extend the loop.
func (o *Orchestrator) wrapUp(ctx context.Context, messages []llm.Turn, last *llm.Completion) (*llm.Completion, error) {
	results := make([]llm.ToolResult, 0, len(last.ToolUses))
	for _, tu := range last.ToolUses {
		results = append(results, llm.ToolResult{
			ToolUseID: tu.ID,
			Content:   `{"success":false,"error":"tool call limit reached for this turn"}`,
			IsError:   true,
		})
	}

	messages = append(messages, llm.Turn{
		Role:     llm.RoleAssistant,
		Text:     last.Text,
		ToolUses: last.ToolUses,
	})
	messages = append(messages, llm.Turn{
		Role:        llm.RoleUser,
		Text:        wrapUpInstruction,
		ToolResults: results,
	})

	return o.provider.Complete(ctx, llm.CompletionRequest{
		System:      o.opts.SystemPrompt,
		Messages:    messages,
		MaxTokens:   o.opts.MaxTokens,
		Temperature: o.opts.Temperature,
	})
}

// dispatchAll runs one round's tool uses concurrently and reassembles the
// outcomes in request order, which the API requires when matching
// tool_result blocks to tool_use ids.
func (o *Orchestrator) dispatchAll(ctx context.Context, uses []llm.ToolUse) []tools.Outcome {
	outcomes := make([]tools.Outcome, len(uses))
	var wg sync.WaitGroup
	for i, use := range uses {
		wg.Add(1)
		go func(i int, use llm.ToolUse) {
			defer wg.Done()
			outcomes[i] = o.registry.Dispatch(ctx, use)
		}(i, use)
	}
	wg.Wait()
	return outcomes
}
