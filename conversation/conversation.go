// Package conversation manages the turn-taking state of a chat with the
// messages API: message history, system prompt, registered tools, and the
// tool-use round-trips in between. The API itself is stateless, so every
// outbound request snapshots the whole conversation.
package conversation

import (
	"errors"

	"github.com/charmbracelet/klaus"
	"github.com/charmbracelet/klaus/anthropic"
)

// State machine errors.
var (
	// ErrBusy is returned when a turn operation is attempted while a
	// request is already in flight.
	ErrBusy = errors.New("conversation: request already in flight")

	// ErrIdle is returned when a response is supplied but no request is
	// pending.
	ErrIdle = errors.New("conversation: no request in flight")

	// ErrNoResults is returned when ToolResults is called with nothing.
	ErrNoResults = errors.New("conversation: no tool results")
)

type state uint8

const (
	idle state = iota
	awaiting
)

// Conversation owns the history of a single chat. Exactly one request may
// be outstanding at a time: the turn operations move the conversation
// between idle and awaiting, and misuse returns ErrBusy or ErrIdle rather
// than corrupting history.
//
// A Conversation is not safe for concurrent use. Independent conversations
// (including clones) may run fully in parallel.
type Conversation struct {
	system  string
	history []anthropic.Message
	tools   []anthropic.Tool
	state   state
	stream  bool
	accum   *anthropic.MessageAccumulator
}

// New creates an empty conversation.
func New() *Conversation {
	return &Conversation{}
}

// SetSystem sets the system prompt sent with every request.
func (c *Conversation) SetSystem(system string) { c.system = system }

// System returns the system prompt.
func (c *Conversation) System() string { return c.system }

// SetStreaming controls whether built requests ask for a streamed response.
func (c *Conversation) SetStreaming(stream bool) { c.stream = stream }

// AddTool registers a tool. Registration order is preserved so request
// bodies stay deterministic.
func (c *Conversation) AddTool(t anthropic.Tool) { c.tools = append(c.tools, t) }

// Tools returns the registered tools in registration order.
func (c *Conversation) Tools() []anthropic.Tool {
	return c.tools[:len(c.tools):len(c.tools)]
}

// History returns the message history. The returned slice is a capped view:
// appending to it cannot touch the conversation.
func (c *Conversation) History() []anthropic.Message {
	return c.history[:len(c.history):len(c.history)]
}

// Len returns the number of messages in the history.
func (c *Conversation) Len() int { return len(c.history) }

// Last returns the most recent message, or nil for an empty history.
func (c *Conversation) Last() *anthropic.Message {
	if len(c.history) == 0 {
		return nil
	}
	return &c.history[len(c.history)-1]
}

// Clear drops the history and any in-flight turn. System prompt and tools
// stay.
func (c *Conversation) Clear() {
	c.history = nil
	c.state = idle
	c.accum = nil
}

// Clone returns a conversation branched off c. History is shared
// structurally: the clone is cheap, and appending to either branch leaves
// the other untouched. The clone starts idle with no in-flight turn.
func (c *Conversation) Clone() *Conversation {
	return &Conversation{
		system:  c.system,
		history: c.history[:len(c.history):len(c.history)],
		tools:   c.tools[:len(c.tools):len(c.tools)],
		stream:  c.stream,
	}
}

// UserMessage appends a user text message to the history and builds the
// outbound request for it. Only valid while idle; the conversation is
// awaiting afterwards, until the response is handled.
func (c *Conversation) UserMessage(cfg klaus.Config, text string) (klaus.Request, error) {
	if c.state != idle {
		return klaus.Request{}, ErrBusy
	}
	return c.dispatch(cfg, anthropic.TextMessage(anthropic.RoleUser, text))
}

// ToolResults submits the outcomes of the tool invocations requested by the
// previous assistant message, batched as a single user turn in the given
// order. Only valid while idle.
func (c *Conversation) ToolResults(cfg klaus.Config, results []anthropic.Content) (klaus.Request, error) {
	if c.state != idle {
		return klaus.Request{}, ErrBusy
	}
	if len(results) == 0 {
		return klaus.Request{}, ErrNoResults
	}
	return c.dispatch(cfg, anthropic.Message{
		Role:    anthropic.RoleUser,
		Content: results,
	})
}

// dispatch appends msg and snapshots the full conversation into a request.
// The message goes into history before the request is built: a retried
// request must resend exactly these bytes, never append the message again.
func (c *Conversation) dispatch(cfg klaus.Config, msg anthropic.Message) (klaus.Request, error) {
	c.history = append(c.history, msg)
	req, err := klaus.NewRequest(cfg, klaus.MessagesParams{
		System:   c.system,
		Messages: c.history,
		Tools:    c.tools,
		Stream:   c.stream,
	})
	if err != nil {
		return klaus.Request{}, err
	}
	c.state = awaiting
	return req, nil
}

// HandleResponse ingests a complete (non-streaming) response body. On
// success the assistant message is appended verbatim and its content pieces
// are returned for display and tool dispatch.
//
// On any failure the conversation returns to idle with the history exactly
// as it was: a typed *anthropic.APIError for provider-declared errors, a
// decode error otherwise. The user message of the failed turn stays in
// history, so the caller retries by resending the same request, not by
// submitting the text again.
func (c *Conversation) HandleResponse(raw []byte) ([]anthropic.Content, error) {
	if c.state != awaiting {
		return nil, ErrIdle
	}
	c.state = idle
	c.accum = nil

	resp, err := anthropic.DecodeResponse(raw)
	if err != nil {
		return nil, err
	}
	c.history = append(c.history, resp.Message)
	return resp.Content, nil
}

// HandleStreamEvent folds one streaming event into the in-flight turn. It
// returns true when the stream finished, at which point the assembled
// assistant message has been appended to history exactly as in the
// non-streaming path.
//
// A stream error returns the conversation to idle with history unchanged,
// like HandleResponse.
func (c *Conversation) HandleStreamEvent(ev anthropic.StreamEvent) (bool, error) {
	if c.state != awaiting {
		return false, ErrIdle
	}
	if c.accum == nil {
		c.accum = &anthropic.MessageAccumulator{}
	}

	done, err := c.accum.Push(ev)
	if err != nil {
		c.state = idle
		c.accum = nil
		return false, err
	}
	if !done {
		return false, nil
	}

	c.history = append(c.history, c.accum.Message().Message)
	c.state = idle
	c.accum = nil
	return true, nil
}

// CancelStream abandons an in-flight streaming turn. The partial message is
// discarded and the history is left unchanged.
func (c *Conversation) CancelStream() {
	if c.state != awaiting {
		return
	}
	c.state = idle
	c.accum = nil
}
