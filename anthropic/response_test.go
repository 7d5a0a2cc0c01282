package anthropic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const messageBody = `{
  "content": [
    {
      "text": "Hi! My name is Claude.",
      "type": "text"
    }
  ],
  "id": "msg_013Zva2CMHLNnXjNJJKqJ2EF",
  "model": "claude-3-7-sonnet-20250219",
  "role": "assistant",
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "type": "message",
  "usage": {
    "input_tokens": 2095,
    "output_tokens": 503
  }
}`

func TestDecodeResponse(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		resp, err := DecodeResponse([]byte(messageBody))
		require.NoError(t, err)
		require.Equal(t, "msg_013Zva2CMHLNnXjNJJKqJ2EF", resp.ID)
		require.Equal(t, "claude-3-7-sonnet-20250219", resp.Model)
		require.Equal(t, RoleAssistant, resp.Role)
		require.Equal(t, StopEndTurn, resp.StopReason)
		require.Empty(t, resp.StopSequence)
		require.Equal(t, Usage{InputTokens: 2095, OutputTokens: 503}, resp.Usage)
		require.Len(t, resp.Content, 1)
		require.Equal(t, NewText("Hi! My name is Claude."), resp.Content[0])
	})

	t.Run("error envelope", func(t *testing.T) {
		body := `{
  "type": "error",
  "error": {
    "type": "not_found_error",
    "message": "The requested resource could not be found."
  }
}`
		_, err := DecodeResponse([]byte(body))
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, ErrNotFound, apiErr.Type)
		require.False(t, apiErr.Retryable())
	})

	t.Run("overloaded is retryable", func(t *testing.T) {
		body := `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`
		_, err := DecodeResponse([]byte(body))
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.True(t, apiErr.Retryable())
	})

	t.Run("unexpected envelope", func(t *testing.T) {
		_, err := DecodeResponse([]byte(`{"type":"completion"}`))
		require.ErrorIs(t, err, ErrUnexpectedResponse)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodeResponse([]byte(`{"type":"message",`))
		require.Error(t, err)
		var apiErr *APIError
		require.False(t, errors.As(err, &apiErr))
	})
}

func TestDecodeEvent(t *testing.T) {
	t.Run("known event", func(t *testing.T) {
		ev, err := DecodeEvent([]byte(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`))
		require.NoError(t, err)
		require.True(t, ev.Known())
		require.Equal(t, EventContentBlockDelta, ev.Type)
		require.NotNil(t, ev.Delta)
		require.Equal(t, "Hello", ev.Delta.Text)
	})

	t.Run("unknown event is not an error", func(t *testing.T) {
		raw := `{"type":"content_block_shimmer","index":0,"shimmer":{"sparkle":3}}`
		ev, err := DecodeEvent([]byte(raw))
		require.NoError(t, err)
		require.False(t, ev.Known())
		require.Equal(t, EventType("content_block_shimmer"), ev.Type)
		require.JSONEq(t, raw, string(ev.Raw))
	})

	t.Run("malformed event", func(t *testing.T) {
		_, err := DecodeEvent([]byte(`data: oops`))
		require.Error(t, err)
	})
}
