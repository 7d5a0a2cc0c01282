package anthropic

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates streaming events.
type EventType string

// Streaming event types.
const (
	EventMessageStart      EventType = "message_start"
	EventContentBlockStart EventType = "content_block_start"
	EventContentBlockDelta EventType = "content_block_delta"
	EventContentBlockStop  EventType = "content_block_stop"
	EventMessageDelta      EventType = "message_delta"
	EventMessageStop       EventType = "message_stop"
	EventPing              EventType = "ping"
	EventError             EventType = "error"
)

// DeltaType discriminates the incremental updates carried by
// content_block_delta events.
type DeltaType string

// Delta types.
const (
	DeltaText      DeltaType = "text_delta"
	DeltaInputJSON DeltaType = "input_json_delta"
	DeltaThinking  DeltaType = "thinking_delta"
	DeltaSignature DeltaType = "signature_delta"
)

// Delta carries the incremental part of a content_block_delta or
// message_delta event. Pointer fields distinguish "absent" from "set to the
// zero value" when merging message deltas.
type Delta struct {
	Type DeltaType `json:"type,omitempty"`

	// content_block_delta
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	Thinking    string `json:"thinking,omitempty"`
	Signature   string `json:"signature,omitempty"`

	// message_delta
	StopReason   *StopReason `json:"stop_reason,omitempty"`
	StopSequence *string     `json:"stop_sequence,omitempty"`
}

// StreamEvent is one decoded event of a streaming response. Only the fields
// matching Type are set. Events with an unrecognized type are not a decode
// failure: they keep their type tag and raw payload so callers can log them
// and move on.
type StreamEvent struct {
	Type  EventType `json:"type"`
	Index int       `json:"index"`

	Message      *MessagesResponse `json:"message,omitempty"`       // message_start
	ContentBlock *Content          `json:"content_block,omitempty"` // content_block_start
	Delta        *Delta            `json:"delta,omitempty"`         // content_block_delta, message_delta
	Usage        *Usage            `json:"usage,omitempty"`         // message_delta
	Error        *APIError         `json:"error,omitempty"`         // error

	// Raw is the event as received, kept for diagnostics.
	Raw json.RawMessage `json:"-"`
}

// Known reports whether the event type is one this package understands.
func (e StreamEvent) Known() bool {
	switch e.Type {
	case EventMessageStart, EventContentBlockStart, EventContentBlockDelta,
		EventContentBlockStop, EventMessageDelta, EventMessageStop,
		EventPing, EventError:
		return true
	}
	return false
}

// DecodeEvent decodes a single streaming event. Unrecognized event types
// decode to an event whose Known method reports false, preserving forward
// compatibility with new event kinds.
func DecodeEvent(data []byte) (StreamEvent, error) {
	var probe struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return StreamEvent{}, fmt.Errorf("anthropic: decode event: %w", err)
	}

	ev := StreamEvent{
		Type: probe.Type,
		Raw:  append(json.RawMessage(nil), data...),
	}
	if !ev.Known() {
		return ev, nil
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return StreamEvent{}, fmt.Errorf("anthropic: decode %s event: %w", probe.Type, err)
	}
	return ev, nil
}
