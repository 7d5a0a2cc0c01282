// Package anthropic contains the wire types for the Anthropic messages API:
// conversation messages and their content blocks, tool declarations, the
// response envelope, and the events of a streaming response.
package anthropic

import (
	"encoding/json"
	"fmt"
)

const (
	// Version is the API version this package implements.
	Version = "2023-06-01"

	// DefaultHost is the default API endpoint host.
	DefaultHost = "api.anthropic.com"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "claude-sonnet-4-20250514"
)

// Role is the author of a message. The API only knows user and assistant;
// system prompts travel in a separate request field.
type Role string

// Roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentType discriminates the content block union.
type ContentType string

// Content block types.
const (
	TypeText       ContentType = "text"
	TypeToolUse    ContentType = "tool_use"
	TypeToolResult ContentType = "tool_result"
	TypeThinking   ContentType = "thinking"
	TypeImage      ContentType = "image"
)

// Content is one piece of a message body. Only the fields matching Type are
// meaningful; the rest stay at their zero values and are omitted on the
// wire.
type Content struct {
	Type ContentType `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`

	// thinking
	Thinking  string `json:"thinking,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// NewText returns a text content block.
func NewText(text string) Content {
	return Content{Type: TypeText, Text: text}
}

// NewToolUse returns a tool invocation block as the model would issue it.
func NewToolUse(id, name string, input json.RawMessage) Content {
	return Content{Type: TypeToolUse, ID: id, Name: name, Input: input}
}

// NewToolResult returns a tool_result block answering the tool invocation
// with the given id.
func NewToolResult(toolUseID, content string, isError bool) Content {
	return Content{Type: TypeToolResult, ToolUseID: toolUseID, Content: content, IsError: isError}
}

// UnknownToolResult returns the synthesized error result for an invocation
// of a tool that is not registered. The model sees the failure instead of
// the client crashing or inventing behavior.
func UnknownToolResult(toolUseID, name string) Content {
	return NewToolResult(toolUseID, fmt.Sprintf("unknown tool: %s", name), true)
}

func (c Content) String() string {
	switch c.Type {
	case TypeText:
		return c.Text
	case TypeToolUse:
		return fmt.Sprintf("<tool_use %s %s>", c.Name, c.ID)
	case TypeToolResult:
		return c.Content
	case TypeThinking:
		return c.Thinking
	case TypeImage:
		return "<image>"
	default:
		return fmt.Sprintf("<%s>", c.Type)
	}
}

// Message is one turn in a conversation. Messages may be multipart and mix
// content block types.
type Message struct {
	Role    Role      `json:"role"`
	Content []Content `json:"content"`
}

// TextMessage returns a message holding a single text block.
func TextMessage(role Role, text string) Message {
	return Message{Role: role, Content: []Content{NewText(text)}}
}

// ToolUses returns the tool invocation blocks of m, in order.
func (m Message) ToolUses() []Content {
	var uses []Content
	for _, c := range m.Content {
		if c.Type == TypeToolUse {
			uses = append(uses, c)
		}
	}
	return uses
}

// InputSchema is the subset of JSON Schema the API accepts for tool inputs.
type InputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// Tool declares a capability the model may invoke. Execution happens on the
// client; the API only sees the declaration.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// StopReason tells why the model stopped generating.
type StopReason string

// Stop reasons.
const (
	StopEndTurn      StopReason = "end_turn"
	StopMaxTokens    StopReason = "max_tokens"
	StopStopSequence StopReason = "stop_sequence"
	StopToolUse      StopReason = "tool_use"
	StopPauseTurn    StopReason = "pause_turn"
	StopRefusal      StopReason = "refusal"
)

// Usage reports token accounting for a request.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
