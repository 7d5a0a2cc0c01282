package conversation

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/klaus/anthropic"
)

// String renders the conversation as a markdown transcript.
func (c *Conversation) String() string {
	var sb strings.Builder
	if c.system != "" {
		sb.WriteString("**System**: ")
		sb.WriteString(c.system)
		sb.WriteString("\n\n")
	}
	for _, msg := range c.history {
		for _, piece := range msg.Content {
			switch piece.Type {
			case anthropic.TypeToolUse:
				fmt.Fprintf(&sb, "> Tool call: `%s`\n\n", piece.Name)
			case anthropic.TypeToolResult:
				if piece.IsError {
					fmt.Fprintf(&sb, "> Tool failed:\n> ```\n> %s\n> ```\n\n", piece.Content)
				}
			case anthropic.TypeText:
				if piece.Text == "" {
					continue
				}
				switch msg.Role {
				case anthropic.RoleUser:
					sb.WriteString("**User**: ")
				case anthropic.RoleAssistant:
					sb.WriteString("**Assistant**: ")
				}
				sb.WriteString(piece.Text)
				sb.WriteString("\n\n")
			}
		}
	}
	return sb.String()
}
