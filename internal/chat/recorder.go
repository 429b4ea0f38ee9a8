package chat

import (
	"context"
	"encoding/json"
	"sync"
)

// recorderKey uses an empty struct for a zero-allocation context key.
type recorderKey struct{}

// ToolCall is one completed tool invocation captured during a turn.
type ToolCall struct {
	Name   string
	Input  json.RawMessage
	Output json.RawMessage
}

// Recorder captures tool invocations during a single agent turn so the
// handler can render them as tool parts of the assistant message and emit
// them on the event stream.
//
// Tools retrieve the recorder from their context; a turn executed without a
// recorder simply records nothing. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []ToolCall

	// OnCall, when set, is invoked for each recorded call. Handlers use
	// it to stream tool events to the client as they happen.
	OnCall func(ToolCall)
}

// Record captures a completed tool call. Input and output are marshaled to
// JSON; marshal failures are recorded as null rather than dropping the call.
func (r *Recorder) Record(name string, input, output any) {
	in, err := json.Marshal(input)
	if err != nil {
		in = []byte("null")
	}
	out, err := json.Marshal(output)
	if err != nil {
		out = []byte("null")
	}
	call := ToolCall{Name: name, Input: in, Output: out}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	onCall := r.OnCall
	r.mu.Unlock()

	if onCall != nil {
		onCall(call)
	}
}

// Calls returns the recorded calls in invocation order.
func (r *Recorder) Calls() []ToolCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ToolCall(nil), r.calls...)
}

// ContextWithRecorder stores a Recorder in the context for tools to find.
func ContextWithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// RecorderFromContext retrieves the Recorder, or nil if none is set.
func RecorderFromContext(ctx context.Context) *Recorder {
	r, _ := ctx.Value(recorderKey{}).(*Recorder)
	return r
}
