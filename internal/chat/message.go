// Package chat implements the site assistant: the UI message model, chat
// history persistence, and the Genkit-backed agent with its tools.
package chat

import (
	"encoding/json"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Part types and states. Tool parts use the "tool-" prefix followed by the
// tool name, matching the message format the frontend renders.
const (
	PartTypeText       = "text"
	PartTypeToolPrefix = "tool-"

	StateDone            = "done"
	StateOutputAvailable = "output-available"
)

// messageIDPrefix and messageIDSize control generated assistant message IDs,
// e.g. "msgV1StGXR8_Z5jdHi6B".
const (
	messageIDPrefix = "msg"
	messageIDSize   = 16
)

// Part is one segment of a UI message: either rendered text or a recorded
// tool invocation with its input and output.
type Part struct {
	Type   string          `json:"type"`
	State  string          `json:"state,omitempty"`
	Text   string          `json:"text,omitempty"`
	Input  json.RawMessage `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`
}

// UIMessage is the message format shared with the frontend and persisted
// as-is in chat history.
type UIMessage struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// TextPart builds a completed text part.
func TextPart(text string) Part {
	return Part{Type: PartTypeText, State: StateDone, Text: text}
}

// Text concatenates the message's text parts.
func (m UIMessage) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			out += p.Text
		}
	}
	return out
}

// NewMessageID generates an assistant message ID.
func NewMessageID() (string, error) {
	suffix, err := gonanoid.New(messageIDSize)
	if err != nil {
		return "", fmt.Errorf("generating message id: %w", err)
	}
	return messageIDPrefix + suffix, nil
}

// NewChatID generates a chat history ID. The chat_histories primary key is
// varchar(16).
func NewChatID() (string, error) {
	id, err := gonanoid.New(16)
	if err != nil {
		return "", fmt.Errorf("generating chat id: %w", err)
	}
	return id, nil
}

// ValidateMessages checks that messages are well formed before they reach
// the model or the database. Message IDs must be unique across the list.
func ValidateMessages(messages []UIMessage) error {
	seen := make(map[string]struct{}, len(messages))
	for i, m := range messages {
		if m.ID == "" {
			return fmt.Errorf("message %d: missing id", i)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("message %d: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = struct{}{}
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("message %d: invalid role %q", i, m.Role)
		}
		if len(m.Parts) == 0 {
			return fmt.Errorf("message %d: no parts", i)
		}
		for j, p := range m.Parts {
			if p.Type == "" {
				return fmt.Errorf("message %d part %d: missing type", i, j)
			}
			if p.Type == PartTypeText && p.Text == "" {
				return fmt.Errorf("message %d part %d: empty text", i, j)
			}
		}
	}
	return nil
}
