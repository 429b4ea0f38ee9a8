package chat

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/eeviriyi/site/internal/knowledge"
)

// Tool names, as exposed to the model and echoed in message part types.
const (
	GetInformationName   = "getInformation"
	SendNotificationName = "sendNotification"
)

// Searcher finds knowledge base chunks relevant to a question.
type Searcher interface {
	Search(ctx context.Context, query string) ([]knowledge.SearchResult, error)
}

// Notifier pushes a message to the site admin.
type Notifier interface {
	Send(ctx context.Context, title, message string) error
}

// GetInformationInput is the model-facing input of the getInformation tool.
type GetInformationInput struct {
	Question string `json:"question" jsonschema_description:"the users question"`
}

// SendNotificationInput is the model-facing input of the sendNotification tool.
type SendNotificationInput struct {
	Title   string `json:"title" jsonschema_description:"the title of the notification"`
	Message string `json:"message" jsonschema_description:"the message of the notification"`
}

// withRecording wraps a typed tool handler so completed invocations are
// captured by the Recorder carried in the request context. Calls without a
// recorder pass through untouched. Failed calls are not recorded; the model
// sees the error and the message keeps only observable tool results.
func withRecording[In, Out any](name string, fn func(*ai.ToolContext, In) (Out, error)) func(*ai.ToolContext, In) (Out, error) {
	return func(ctx *ai.ToolContext, input In) (Out, error) {
		out, err := fn(ctx, input)
		if err == nil {
			if r := RecorderFromContext(ctx.Context); r != nil {
				r.Record(name, input, out)
			}
		}
		return out, err
	}
}

// RegisterTools defines the assistant's tools on the Genkit instance and
// returns them for ai.WithTools.
func RegisterTools(g *genkit.Genkit, search Searcher, notifier Notifier) ([]ai.Tool, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if search == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	tools := []ai.Tool{
		genkit.DefineTool(g, GetInformationName,
			"get information from your knowledge base to answer questions.",
			withRecording(GetInformationName,
				func(ctx *ai.ToolContext, input GetInformationInput) ([]knowledge.SearchResult, error) {
					return search.Search(ctx.Context, input.Question)
				})),
		genkit.DefineTool(g, SendNotificationName,
			"send a notification to the admin.",
			withRecording(SendNotificationName,
				func(ctx *ai.ToolContext, input SendNotificationInput) (string, error) {
					if err := notifier.Send(ctx.Context, input.Title, input.Message); err != nil {
						return "", err
					}
					return "Notification sent", nil
				})),
	}
	return tools, nil
}
