package anthropic

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnexpectedResponse is returned when a response decodes fine but is not
// the expected envelope kind.
var ErrUnexpectedResponse = errors.New("anthropic: unexpected response type")

// MessagesResponse is a successful response from the messages endpoint. The
// message itself (role and content) is inlined into the envelope.
type MessagesResponse struct {
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	StopReason   StopReason `json:"stop_reason,omitempty"`
	StopSequence string     `json:"stop_sequence,omitempty"`
	Usage        Usage      `json:"usage"`
	Message
}

// DecodeResponse decodes a complete (non-streaming) response body. A body
// carrying an error envelope decodes to a typed *APIError; malformed JSON
// and unknown envelope kinds are fatal decode errors.
func DecodeResponse(data []byte) (*MessagesResponse, error) {
	var envelope struct {
		Type  string    `json:"type"`
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}

	switch envelope.Type {
	case "error":
		if envelope.Error == nil {
			return nil, fmt.Errorf("anthropic: decode response: error envelope without error object")
		}
		return nil, envelope.Error
	case "message":
		var resp MessagesResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("anthropic: decode message: %w", err)
		}
		return &resp, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedResponse, envelope.Type)
	}
}
