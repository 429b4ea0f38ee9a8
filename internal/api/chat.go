package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/eeviriyi/site/internal/chat"
	"github.com/eeviriyi/site/internal/log"
)

// Responder runs one assistant turn.
type Responder interface {
	Respond(ctx context.Context, history []chat.UIMessage, callback chat.StreamCallback) (*chat.UIMessage, error)
}

// ChatStore is the history persistence the chat endpoint needs.
type ChatStore interface {
	Load(ctx context.Context, id, locale string) ([]chat.UIMessage, error)
	Save(ctx context.Context, id string, messages []chat.UIMessage) error
	SaveFirstMessage(ctx context.Context, id, firstMessage string) error
}

// ChatHandler handles the assistant endpoint.
//
// POST /api/chat streams the assistant's turn as Server-Sent Events and
// persists the updated history when the turn completes.
type ChatHandler struct {
	agent  Responder
	store  ChatStore
	logger log.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(agent Responder, store ChatStore, logger log.Logger) *ChatHandler {
	return &ChatHandler{agent: agent, store: store, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
}

// ChatRequest is the assistant endpoint's request body.
type ChatRequest struct {
	ID      string         `json:"id"`
	Message chat.UIMessage `json:"message"`
}

// SSEChunkData is the data for "chunk" events.
type SSEChunkData struct {
	Text string `json:"text"`
}

// SSEToolData is the data for "tool" events: the tool part as it will
// appear in the persisted assistant message.
type SSEToolData struct {
	Type   string          `json:"type"`
	State  string          `json:"state"`
	Input  json.RawMessage `json:"input"`
	Output json.RawMessage `json:"output"`
}

// SSEDoneData is the data for "done" events.
type SSEDoneData struct {
	MessageID string `json:"messageId"`
}

// SSEErrorData is the data for "error" events.
type SSEErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleChat runs one assistant turn over SSE.
//
// Request body: {"id": "...", "message": {...}}
// Event types:
//   - chunk: partial response text {"text": "..."}
//   - tool:  completed tool call as a message part
//   - done:  turn completed {"messageId": "..."}
//   - error: turn failed {"code": "...", "message": "..."}
func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeSSEError(w, flusher, "INVALID_REQUEST", fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.ID == "" {
		h.writeSSEError(w, flusher, "MISSING_CHAT_ID", "id is required")
		return
	}
	if req.Message.Role != chat.RoleUser {
		h.writeSSEError(w, flusher, "INVALID_MESSAGE", "message role must be user")
		return
	}
	if err := chat.ValidateMessages([]chat.UIMessage{req.Message}); err != nil {
		h.writeSSEError(w, flusher, "INVALID_MESSAGE", err.Error())
		return
	}

	ctx := r.Context()
	locale := localeFromRequest(r)

	history, err := h.store.Load(ctx, req.ID, locale)
	if err != nil {
		h.logger.Error("failed to load chat", "chat_id", req.ID, "error", err)
		h.writeSSEError(w, flusher, "LOAD_FAILED", "failed to load chat history")
		return
	}

	firstTurn := true
	for _, m := range history {
		if m.Role == chat.RoleUser {
			firstTurn = false
			break
		}
	}

	// Validate the merged list before any model call; malformed persisted
	// history fails the turn here, not mid-generation.
	messages := append(history, req.Message)
	if err := chat.ValidateMessages(messages); err != nil {
		h.logger.Error("invalid chat history", "chat_id", req.ID, "error", err)
		h.writeSSEError(w, flusher, "INVALID_MESSAGE", err.Error())
		return
	}

	recorder := &chat.Recorder{OnCall: func(call chat.ToolCall) {
		h.writeSSETool(w, flusher, call)
	}}

	assistant, err := h.agent.Respond(
		chat.ContextWithRecorder(ctx, recorder),
		messages,
		func(_ context.Context, text string) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			h.writeSSEChunk(w, flusher, text)
			return nil
		})
	if err != nil {
		h.logger.Error("assistant turn failed", "chat_id", req.ID, "error", err)
		h.writeSSEError(w, flusher, "GENERATION_FAILED", err.Error())
		return
	}

	// Persist even when the client has gone away; the turn happened.
	saveCtx := context.WithoutCancel(ctx)
	if err := h.store.Save(saveCtx, req.ID, append(messages, *assistant)); err != nil {
		h.logger.Error("failed to save chat", "chat_id", req.ID, "error", err)
		h.writeSSEError(w, flusher, "SAVE_FAILED", "failed to save chat history")
		return
	}
	if firstTurn {
		if err := h.store.SaveFirstMessage(saveCtx, req.ID, req.Message.Text()); err != nil {
			h.logger.Warn("failed to save chat title", "chat_id", req.ID, "error", err)
		}
	}

	h.writeSSEDone(w, flusher, assistant.ID)
	h.logger.Info("chat turn completed", "chat_id", req.ID, "message_id", assistant.ID)
}

// writeSSEChunk writes a chunk event to the SSE stream.
func (h *ChatHandler) writeSSEChunk(w http.ResponseWriter, flusher http.Flusher, text string) {
	data, _ := json.Marshal(SSEChunkData{Text: text})
	fmt.Fprintf(w, "event: chunk\ndata: %s\n\n", data)
	flusher.Flush()
}

// writeSSETool writes a tool event to the SSE stream.
func (h *ChatHandler) writeSSETool(w http.ResponseWriter, flusher http.Flusher, call chat.ToolCall) {
	data, _ := json.Marshal(SSEToolData{
		Type:   chat.PartTypeToolPrefix + call.Name,
		State:  chat.StateOutputAvailable,
		Input:  call.Input,
		Output: call.Output,
	})
	fmt.Fprintf(w, "event: tool\ndata: %s\n\n", data)
	flusher.Flush()
}

// writeSSEDone writes a done event to the SSE stream.
func (h *ChatHandler) writeSSEDone(w http.ResponseWriter, flusher http.Flusher, messageID string) {
	data, _ := json.Marshal(SSEDoneData{MessageID: messageID})
	fmt.Fprintf(w, "event: done\ndata: %s\n\n", data)
	flusher.Flush()
}

// writeSSEError writes an error event to the SSE stream.
func (h *ChatHandler) writeSSEError(w http.ResponseWriter, flusher http.Flusher, code, message string) {
	data, _ := json.Marshal(SSEErrorData{Code: code, Message: message})
	fmt.Fprintf(w, "event: error\ndata: %s\n\n", data)
	flusher.Flush()
}
