package klaus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/klaus/anthropic"
)

const messagesPath = "/v1/messages"

// Header is one ordered request header.
type Header struct {
	Name  string
	Value string
}

// Request is a fully serialized API request, independent of any particular
// HTTP client. Build one with NewRequest, then execute it with Client or
// convert it yourself via HTTPRequest.
type Request struct {
	Host    string
	Path    string
	Method  string
	Headers []Header
	Body    []byte
}

// MessagesParams are the inputs to a messages-endpoint request. Messages is
// the full conversation history: the API keeps no state between calls, so
// every request replays everything.
type MessagesParams struct {
	// Model and MaxTokens override the Config defaults when set.
	Model     string
	MaxTokens int

	System   string
	Messages []anthropic.Message
	Tools    []anthropic.Tool
	Stream   bool
}

// messagesBody is the request body shape of the messages endpoint.
type messagesBody struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	System    string              `json:"system,omitempty"`
	Messages  []anthropic.Message `json:"messages"`
	Tools     []anthropic.Tool    `json:"tools,omitempty"`
	Stream    bool                `json:"stream,omitempty"`
}

// NewRequest builds a messages-endpoint request from cfg and p.
func NewRequest(cfg Config, p MessagesParams) (Request, error) {
	model := p.Model
	if model == "" {
		model = cfg.model()
	}
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = cfg.maxTokens()
	}

	messages := p.Messages
	if messages == nil {
		messages = []anthropic.Message{}
	}

	body, err := json.Marshal(messagesBody{
		Model:     model,
		MaxTokens: maxTokens,
		System:    p.System,
		Messages:  messages,
		Tools:     p.Tools,
		Stream:    p.Stream,
	})
	if err != nil {
		return Request{}, fmt.Errorf("klaus: marshal request body: %w", err)
	}

	return Request{
		Host:   cfg.host(),
		Path:   messagesPath,
		Method: http.MethodPost,
		Headers: []Header{
			{"content-type", "application/json"},
			{"anthropic-version", anthropic.Version},
			{"x-api-key", cfg.APIKey},
			{"anthropic-model", model},
			{"max-tokens", strconv.Itoa(maxTokens)},
		},
		Body: body,
	}, nil
}

// HTTPRequest converts r into a net/http request bound to ctx. The body is
// replayable, so the same Request may be converted and sent more than once.
func (r Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	u := "https://" + r.Host + r.Path
	req, err := http.NewRequestWithContext(ctx, r.Method, u, bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("klaus: build http request: %w", err)
	}
	for _, h := range r.Headers {
		req.Header.Set(h.Name, h.Value)
	}
	return req, nil
}

// String renders the request in a wire-like form, useful for debugging.
// The output is not a byte-exact HTTP/1.1 request.
func (r Request) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s HTTP/1.1\n", r.Method, r.Path)
	fmt.Fprintf(&sb, "Host: %s\n", r.Host)
	for _, h := range r.Headers {
		fmt.Fprintf(&sb, "%s: %s\n", h.Name, h.Value)
	}
	sb.WriteByte('\n')
	sb.Write(r.Body)
	return sb.String()
}
