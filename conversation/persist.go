package conversation

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/klaus/anthropic"
)

// snapshot is the persisted form of a conversation: the whole struct is the
// serialization unit. In-flight turn state is deliberately not part of it.
type snapshot struct {
	System   string              `json:"system,omitempty"`
	Messages []anthropic.Message `json:"messages"`
	Tools    []anthropic.Tool    `json:"tools,omitempty"`
}

// MarshalJSON serializes the conversation as one JSON document that
// round-trips exactly through UnmarshalJSON.
func (c *Conversation) MarshalJSON() ([]byte, error) {
	messages := c.history
	if messages == nil {
		messages = []anthropic.Message{}
	}
	return json.Marshal(snapshot{
		System:   c.system,
		Messages: messages,
		Tools:    c.tools,
	})
}

// UnmarshalJSON restores a conversation from its persisted form. The
// restored conversation is idle.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("conversation: decode snapshot: %w", err)
	}
	c.system = s.System
	c.history = s.Messages
	c.tools = s.Tools
	c.state = idle
	c.accum = nil
	return nil
}
