package chat

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageID(t *testing.T) {
	id, err := NewMessageID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "msg"))
	assert.Len(t, id, len("msg")+16)

	other, err := NewMessageID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestNewChatID(t *testing.T) {
	id, err := NewChatID()
	require.NoError(t, err)
	assert.Len(t, id, 16)
}

func TestValidateMessages(t *testing.T) {
	valid := []UIMessage{
		{ID: "a", Role: RoleUser, Parts: []Part{TextPart("hi")}},
		{ID: "b", Role: RoleAssistant, Parts: []Part{TextPart("hello")}},
	}
	assert.NoError(t, ValidateMessages(valid))

	tests := []struct {
		name     string
		messages []UIMessage
		wantErr  string
	}{
		{
			name:     "missing id",
			messages: []UIMessage{{Role: RoleUser, Parts: []Part{TextPart("hi")}}},
			wantErr:  "missing id",
		},
		{
			name:     "bad role",
			messages: []UIMessage{{ID: "a", Role: "system", Parts: []Part{TextPart("hi")}}},
			wantErr:  "invalid role",
		},
		{
			name:     "no parts",
			messages: []UIMessage{{ID: "a", Role: RoleUser}},
			wantErr:  "no parts",
		},
		{
			name:     "empty text part",
			messages: []UIMessage{{ID: "a", Role: RoleUser, Parts: []Part{{Type: PartTypeText}}}},
			wantErr:  "empty text",
		},
		{
			name: "duplicate id",
			messages: []UIMessage{
				{ID: "a", Role: RoleUser, Parts: []Part{TextPart("hi")}},
				{ID: "a", Role: RoleAssistant, Parts: []Part{TextPart("hello")}},
			},
			wantErr: "duplicate id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, ValidateMessages(tt.messages), tt.wantErr)
		})
	}
}

func TestUIMessageText(t *testing.T) {
	msg := UIMessage{
		ID:   "a",
		Role: RoleAssistant,
		Parts: []Part{
			{Type: PartTypeToolPrefix + GetInformationName, State: StateOutputAvailable},
			TextPart("first "),
			TextPart("second"),
		},
	}
	assert.Equal(t, "first second", msg.Text())
}

func TestUIMessageJSONShape(t *testing.T) {
	msg := UIMessage{
		ID:   "msgabc",
		Role: RoleAssistant,
		Parts: []Part{
			{
				Type:   PartTypeToolPrefix + GetInformationName,
				State:  StateOutputAvailable,
				Input:  json.RawMessage(`{"question":"q"}`),
				Output: json.RawMessage(`[{"name":"fact","similarity":0.9}]`),
			},
			TextPart("answer"),
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	parts := decoded["parts"].([]any)
	require.Len(t, parts, 2)

	tool := parts[0].(map[string]any)
	assert.Equal(t, "tool-getInformation", tool["type"])
	assert.Equal(t, "output-available", tool["state"])
	assert.NotContains(t, tool, "text")

	text := parts[1].(map[string]any)
	assert.Equal(t, "text", text["type"])
	assert.Equal(t, "done", text["state"])
	assert.NotContains(t, text, "input")
}

func TestGreeting(t *testing.T) {
	en := Greeting("en")
	require.Len(t, en, 2)
	assert.Equal(t, "0123456789101112", en[0].ID)
	assert.Equal(t, "0123456789101113", en[1].ID)
	assert.Equal(t, RoleAssistant, en[0].Role)
	assert.Contains(t, en[0].Parts[0].Text, "assistant created by Eeviriyi")

	zh := Greeting("zh")
	require.Len(t, zh, 2)
	assert.Contains(t, zh[0].Parts[0].Text, "小助手")

	// Unknown locale falls back to English.
	assert.Equal(t, en[0].Parts[0].Text, Greeting("de")[0].Parts[0].Text)
}
