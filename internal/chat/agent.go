package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// FallbackResponseMessage is returned when the model produces an empty
// response with no tool activity.
const FallbackResponseMessage = "I apologize, but I couldn't generate a response. Please try rephrasing your question."

// StreamCallback is called for each chunk of streaming response text.
// Return an error to abort the stream.
type StreamCallback func(ctx context.Context, text string) error

// Config contains all required parameters for the Agent.
type Config struct {
	Genkit   *genkit.Genkit
	Search   Searcher
	Notifier Notifier
	Logger   *slog.Logger

	// Model is the provider-qualified model name, e.g. "googleai/gemini-2.5-pro".
	Model string

	// MaxTurns bounds the agentic tool loop within a single turn.
	MaxTurns int
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Search == nil {
		return errors.New("searcher is required")
	}
	if cfg.Notifier == nil {
		return errors.New("notifier is required")
	}
	if cfg.Model == "" {
		return errors.New("model name is required")
	}
	if cfg.MaxTurns < 1 {
		return errors.New("max turns must be at least 1")
	}
	return nil
}

// Agent is the site's conversational assistant. It answers from the
// knowledge base via the getInformation tool and escalates to the admin via
// the sendNotification tool.
//
// Agent is stateless; history is passed per call. All configuration is
// captured immutably at construction time, so it is safe for concurrent use.
type Agent struct {
	g        *genkit.Genkit
	toolRefs []ai.ToolRef
	model    string
	maxTurns int
	logger   *slog.Logger
}

// NewAgent constructs the agent and registers its tools on the Genkit
// instance.
func NewAgent(cfg Config) (*Agent, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}

	tools, err := RegisterTools(cfg.Genkit, cfg.Search, cfg.Notifier)
	if err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	toolRefs := make([]ai.ToolRef, len(tools))
	for i, t := range tools {
		toolRefs[i] = t
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Agent{
		g:        cfg.Genkit,
		toolRefs: toolRefs,
		model:    cfg.Model,
		maxTurns: cfg.MaxTurns,
		logger:   logger,
	}, nil
}

// Respond runs one assistant turn over the given history (whose last
// message is the visitor's new message) and returns the assistant message,
// with tool parts in invocation order followed by the final text.
//
// If callback is non-nil, response text is streamed through it as it is
// generated. Tool events stream through the Recorder already in ctx, if
// any; otherwise Respond records internally.
func (a *Agent) Respond(ctx context.Context, history []UIMessage, callback StreamCallback) (*UIMessage, error) {
	recorder := RecorderFromContext(ctx)
	if recorder == nil {
		recorder = &Recorder{}
		ctx = ContextWithRecorder(ctx, recorder)
	}

	opts := []ai.GenerateOption{
		ai.WithModelName(a.model),
		ai.WithSystem(systemPrompt),
		ai.WithMessages(toModelMessages(history)...),
		ai.WithTools(a.toolRefs...),
		ai.WithMaxTurns(a.maxTurns),
	}
	if callback != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			text := chunk.Text()
			if text == "" {
				return nil
			}
			return callback(ctx, text)
		}))
	}

	resp, err := genkit.Generate(ctx, a.g, opts...)
	if err != nil {
		return nil, fmt.Errorf("generating response: %w", err)
	}

	calls := recorder.Calls()
	text := resp.Text()
	if strings.TrimSpace(text) == "" && len(calls) == 0 {
		a.logger.Warn("model returned empty response with no tool calls")
		text = FallbackResponseMessage
	}

	parts := make([]Part, 0, len(calls)+1)
	for _, call := range calls {
		parts = append(parts, Part{
			Type:   PartTypeToolPrefix + call.Name,
			State:  StateOutputAvailable,
			Input:  call.Input,
			Output: call.Output,
		})
	}
	if strings.TrimSpace(text) != "" {
		parts = append(parts, TextPart(text))
	}

	id, err := NewMessageID()
	if err != nil {
		return nil, err
	}

	a.logger.Debug("assistant turn completed",
		"tool_calls", len(calls), "text_len", len(text))

	return &UIMessage{ID: id, Role: RoleAssistant, Parts: parts}, nil
}

// toModelMessages converts UI history to model messages. Recorded tool
// parts of past assistant turns are threaded back as request/response
// pairs so the model keeps its tool context across turns. Fresh message
// values are built per call because message content is modified in place
// during rendering, and shared values would race.
func toModelMessages(history []UIMessage) []*ai.Message {
	msgs := make([]*ai.Message, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case RoleUser:
			if text := m.Text(); text != "" {
				msgs = append(msgs, ai.NewUserMessage(ai.NewTextPart(text)))
			}
		case RoleAssistant:
			var modelParts, toolParts []*ai.Part
			for _, p := range m.Parts {
				switch {
				case p.Type == PartTypeText:
					if p.Text != "" {
						modelParts = append(modelParts, ai.NewTextPart(p.Text))
					}
				case strings.HasPrefix(p.Type, PartTypeToolPrefix):
					name := strings.TrimPrefix(p.Type, PartTypeToolPrefix)
					modelParts = append(modelParts, ai.NewToolRequestPart(&ai.ToolRequest{
						Name:  name,
						Input: rawToAny(p.Input),
					}))
					toolParts = append(toolParts, ai.NewToolResponsePart(&ai.ToolResponse{
						Name:   name,
						Output: rawToAny(p.Output),
					}))
				}
			}
			if len(modelParts) > 0 {
				msgs = append(msgs, ai.NewModelMessage(modelParts...))
			}
			if len(toolParts) > 0 {
				msgs = append(msgs, &ai.Message{Role: ai.RoleTool, Content: toolParts})
			}
		}
	}
	return msgs
}

// rawToAny decodes recorded tool JSON for re-sending to the model.
// Undecodable payloads fall back to their raw string form.
func rawToAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
