package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/klaus/conversation"
)

// Conversations stores conversation snapshots, one JSON file per
// conversation ID.
type Conversations struct {
	cache *Cache
}

// NewConversations creates a conversation store under dir.
func NewConversations(dir string) (*Conversations, error) {
	cache, err := New(filepath.Join(dir, "conversations"))
	if err != nil {
		return nil, err
	}
	return &Conversations{
		cache: cache,
	}, nil
}

func (c *Conversations) Read(id string, convo *conversation.Conversation) error {
	return c.cache.Read(id, func(r io.Reader) error {
		if err := json.NewDecoder(r).Decode(convo); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return nil
	})
}

func (c *Conversations) Write(id string, convo *conversation.Conversation) error {
	return c.cache.Write(id, func(w io.Writer) error {
		if err := json.NewEncoder(w).Encode(convo); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	})
}

// Delete a conversation.
func (c *Conversations) Delete(id string) error {
	return c.cache.Delete(id)
}
