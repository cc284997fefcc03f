package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"scoutgpt-be/internal/apperrors"
	"scoutgpt-be/internal/pkg/logger"
	"scoutgpt-be/pkg/geo"
	"scoutgpt-be/pkg/llm"
)

// Tool is one capability the assistant can invoke mid-conversation.
type Tool interface {
	Name() string
	Description() string
	Schema() Schema
	Execute(ctx context.Context, input map[string]interface{}) (*Result, error)
}

// Result is a successful tool execution. Payload is serialized for the
// model; Geometry and Sources are side channels the orchestrator
// aggregates for the final reply.
type Result struct {
	Payload  map[string]interface{}
	Geometry *geo.FeatureCollection
	Sources  []string
}

// Outcome is what goes back to the model for one tool use. Failures are
// encoded in Content with IsError set, never surfaced as Go errors, so a
// broken tool can't take down the conversation.
type Outcome struct {
	ToolUseID string
	Name      string
	Content   string
	IsError   bool
	Geometry  *geo.FeatureCollection
	Sources   []string
}

// Registry is the closed set of tools exposed to the model. Tools are
// registered at startup; unknown names at dispatch time are an error
// outcome, not a lookup of anything dynamic.
type Registry struct {
	tools map[string]Tool
	order []string
	log   logger.ILogger
}

func NewRegistry(log logger.ILogger, tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools: make(map[string]Tool, len(tools)),
		log:   log,
	}
	for _, t := range tools {
		name := t.Name()
		if name == "" {
			return nil, apperrors.NewConfigurationError("tools", "tool with empty name")
		}
		if _, exists := r.tools[name]; exists {
			return nil, apperrors.NewConfigurationError("tools."+name, "duplicate tool name")
		}
		if err := t.Schema().Check(name); err != nil {
			return nil, err
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	sort.Strings(r.order)
	return r, nil
}

// Specs exposes the registered tools in the provider-neutral form the LLM
// layer sends with each completion.
func (r *Registry) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		schema := t.Schema()
		props := make(map[string]interface{}, len(schema.Properties))
		for pname, prop := range schema.Properties {
			props[pname] = prop
		}
		specs = append(specs, llm.ToolSpec{
			Name:        name,
			Description: t.Description(),
			Properties:  props,
			Required:    schema.Required,
		})
	}
	return specs
}

// Dispatch validates and runs one tool use. It never returns a Go error:
// validation failures, execution failures, and executor panics all come
// back as error outcomes for the model to react to.
func (r *Registry) Dispatch(ctx context.Context, call llm.ToolUse) Outcome {
	tool, ok := r.tools[call.Name]
	if !ok {
		return errorOutcome(call, fmt.Sprintf("unknown tool %q", call.Name))
	}

	input, err := tool.Schema().Validate(call.Name, call.Input)
	if err != nil {
		if r.log != nil {
			r.log.Warn("tools", "tool input rejected", map[string]interface{}{
				"tool":  call.Name,
				"error": err.Error(),
			})
		}
		return errorOutcome(call, err.Error())
	}

	result, err := r.execute(ctx, tool, input)
	if err != nil {
		if r.log != nil {
			r.log.Error("tools", "tool execution failed", map[string]interface{}{
				"tool":  call.Name,
				"error": err.Error(),
			})
		}
		return errorOutcome(call, err.Error())
	}

	payload := map[string]interface{}{"success": true}
	for k, v := range result.Payload {
		payload[k] = v
	}
	content, err := json.Marshal(payload)
	if err != nil {
		return errorOutcome(call, fmt.Sprintf("failed to serialize tool result: %v", err))
	}

	return Outcome{
		ToolUseID: call.ID,
		Name:      call.Name,
		Content:   string(content),
		Geometry:  result.Geometry,
		Sources:   result.Sources,
	}
}

// execute isolates executor panics so one misbehaving tool is reported as
// a failed call instead of crashing the request.
func (r *Registry) execute(ctx context.Context, tool Tool, input map[string]interface{}) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("tool %s panicked: %v", tool.Name(), rec)
		}
	}()
	result, err = tool.Execute(ctx, input)
	if err == nil && result == nil {
		err = fmt.Errorf("tool %s returned no result", tool.Name())
	}
	return result, err
}

func errorOutcome(call llm.ToolUse, message string) Outcome {
	content, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   message,
	})
	return Outcome{
		ToolUseID: call.ID,
		Name:      call.Name,
		Content:   string(content),
		IsError:   true,
	}
}
