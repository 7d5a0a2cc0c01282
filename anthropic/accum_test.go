package anthropic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pushAll(t *testing.T, a *MessageAccumulator, events ...string) *MessagesResponse {
	t.Helper()
	var finished *MessagesResponse
	for _, raw := range events {
		ev, err := DecodeEvent([]byte(raw))
		require.NoError(t, err)
		done, err := a.Push(ev)
		require.NoError(t, err)
		if done {
			finished = a.Message()
		}
	}
	require.NotNil(t, finished)
	return finished
}

func TestMessageAccumulator(t *testing.T) {
	t.Run("reduction equals non-streaming decode", func(t *testing.T) {
		var a MessageAccumulator
		got := pushAll(t, &a,
			`{"type":"message_start","message":{"id":"msg_013Zva2CMHLNnXjNJJKqJ2EF","model":"claude-3-7-sonnet-20250219","role":"assistant","content":[],"usage":{"input_tokens":2095,"output_tokens":0}}}`,
			`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
			`{"type":"ping"}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hi! My name"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" is Claude."}}`,
			`{"type":"content_block_stop","index":0}`,
			`{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":503}}`,
			`{"type":"message_stop"}`,
		)

		want, err := DecodeResponse([]byte(messageBody))
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("tool input accumulates as json fragments", func(t *testing.T) {
		var a MessageAccumulator
		got := pushAll(t, &a,
			`{"type":"message_start","message":{"id":"msg_1","model":"m","role":"assistant","content":[],"usage":{"input_tokens":10,"output_tokens":0}}}`,
			`{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_1","name":"calc"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"a\":"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"2,\"b\":2}"}}`,
			`{"type":"content_block_stop","index":0}`,
			`{"type":"message_delta","delta":{"stop_reason":"tool_use"}}`,
			`{"type":"message_stop"}`,
		)

		require.Equal(t, StopToolUse, got.StopReason)
		require.Len(t, got.Content, 1)
		use := got.Content[0]
		require.Equal(t, TypeToolUse, use.Type)
		require.Equal(t, "toolu_1", use.ID)
		require.Equal(t, "calc", use.Name)
		require.JSONEq(t, `{"a":2,"b":2}`, string(use.Input))
	})

	t.Run("sparse indices keep arrival order", func(t *testing.T) {
		var a MessageAccumulator
		got := pushAll(t, &a,
			`{"type":"message_start","message":{"id":"msg_1","model":"m","role":"assistant","content":[],"usage":{"input_tokens":1,"output_tokens":1}}}`,
			`{"type":"content_block_start","index":3,"content_block":{"type":"text","text":"first"}}`,
			`{"type":"content_block_stop","index":3}`,
			`{"type":"content_block_start","index":7,"content_block":{"type":"text","text":"second"}}`,
			`{"type":"content_block_stop","index":7}`,
			`{"type":"message_stop"}`,
		)

		require.Equal(t, []Content{NewText("first"), NewText("second")}, got.Content)
	})

	t.Run("thinking deltas", func(t *testing.T) {
		var a MessageAccumulator
		got := pushAll(t, &a,
			`{"type":"message_start","message":{"id":"msg_1","model":"m","role":"assistant","content":[],"usage":{"input_tokens":1,"output_tokens":1}}}`,
			`{"type":"content_block_start","index":0,"content_block":{"type":"thinking"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"let me "}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"see"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"signature_delta","signature":"sig123"}}`,
			`{"type":"content_block_stop","index":0}`,
			`{"type":"message_stop"}`,
		)

		require.Len(t, got.Content, 1)
		require.Equal(t, "let me see", got.Content[0].Thinking)
		require.Equal(t, "sig123", got.Content[0].Signature)
	})

	t.Run("unknown events are skipped", func(t *testing.T) {
		var a MessageAccumulator
		got := pushAll(t, &a,
			`{"type":"message_start","message":{"id":"msg_1","model":"m","role":"assistant","content":[],"usage":{"input_tokens":1,"output_tokens":1}}}`,
			`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
			`{"type":"content_block_glitter","index":0}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"ok"}}`,
			`{"type":"content_block_stop","index":0}`,
			`{"type":"message_stop"}`,
		)
		require.Equal(t, "ok", got.Content[0].Text)
	})

	t.Run("error event aborts with typed error", func(t *testing.T) {
		var a MessageAccumulator
		start, err := DecodeEvent([]byte(`{"type":"message_start","message":{"id":"msg_1","model":"m","role":"assistant","content":[],"usage":{"input_tokens":1,"output_tokens":1}}}`))
		require.NoError(t, err)
		_, err = a.Push(start)
		require.NoError(t, err)

		abort, err := DecodeEvent([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
		require.NoError(t, err)
		_, err = a.Push(abort)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, ErrOverloaded, apiErr.Type)
		require.Nil(t, a.Message())
	})

	t.Run("delta before block start", func(t *testing.T) {
		var a MessageAccumulator
		start, err := DecodeEvent([]byte(`{"type":"message_start","message":{"id":"msg_1","model":"m","role":"assistant","content":[],"usage":{"input_tokens":1,"output_tokens":1}}}`))
		require.NoError(t, err)
		_, err = a.Push(start)
		require.NoError(t, err)

		delta, err := DecodeEvent([]byte(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"x"}}`))
		require.NoError(t, err)
		_, err = a.Push(delta)
		require.ErrorIs(t, err, ErrNoOpenBlock)
	})

	t.Run("event before message start", func(t *testing.T) {
		var a MessageAccumulator
		ev, err := DecodeEvent([]byte(`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`))
		require.NoError(t, err)
		_, err = a.Push(ev)
		require.ErrorIs(t, err, ErrNoMessage)
	})

	t.Run("push after stop", func(t *testing.T) {
		var a MessageAccumulator
		pushAll(t, &a,
			`{"type":"message_start","message":{"id":"msg_1","model":"m","role":"assistant","content":[],"usage":{"input_tokens":1,"output_tokens":1}}}`,
			`{"type":"message_stop"}`,
		)
		ev, err := DecodeEvent([]byte(`{"type":"ping"}`))
		require.NoError(t, err)
		_, err = a.Push(ev)
		require.ErrorIs(t, err, ErrDone)
	})
}
