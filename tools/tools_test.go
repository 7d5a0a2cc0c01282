package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charmbracelet/klaus/anthropic"
)

func echoFunc(_ context.Context, input json.RawMessage) (string, error) {
	return string(input), nil
}

func TestRegistry(t *testing.T) {
	t.Run("tools keep registration order", func(t *testing.T) {
		var r Registry
		for _, name := range []string{"charlie", "alpha", "bravo"} {
			r.Register(anthropic.Tool{Name: name}, echoFunc)
		}
		tools := r.Tools()
		require.Len(t, tools, 3)
		require.Equal(t, "charlie", tools[0].Name)
		require.Equal(t, "alpha", tools[1].Name)
		require.Equal(t, "bravo", tools[2].Name)
	})

	t.Run("re-register keeps position", func(t *testing.T) {
		var r Registry
		r.Register(anthropic.Tool{Name: "a"}, echoFunc)
		r.Register(anthropic.Tool{Name: "b"}, echoFunc)
		r.Register(anthropic.Tool{Name: "a"}, func(context.Context, json.RawMessage) (string, error) {
			return "replaced", nil
		})
		require.Len(t, r.Tools(), 2)
		require.Equal(t, "a", r.Tools()[0].Name)

		res := r.Call(context.Background(), anthropic.NewToolUse("toolu_1", "a", nil))
		require.Equal(t, "replaced", res.Content)
	})

	t.Run("call success", func(t *testing.T) {
		var r Registry
		r.Register(anthropic.Tool{Name: "echo"}, echoFunc)

		res := r.Call(context.Background(),
			anthropic.NewToolUse("toolu_1", "echo", json.RawMessage(`{"x":1}`)))
		require.Equal(t, anthropic.TypeToolResult, res.Type)
		require.Equal(t, "toolu_1", res.ToolUseID)
		require.Equal(t, `{"x":1}`, res.Content)
		require.False(t, res.IsError)
	})

	t.Run("call failure becomes error result", func(t *testing.T) {
		var r Registry
		r.Register(anthropic.Tool{Name: "boom"}, func(context.Context, json.RawMessage) (string, error) {
			return "", errors.New("it broke")
		})

		res := r.Call(context.Background(), anthropic.NewToolUse("toolu_1", "boom", nil))
		require.True(t, res.IsError)
		require.Equal(t, "it broke", res.Content)
	})

	t.Run("unknown tool", func(t *testing.T) {
		var r Registry
		res := r.Call(context.Background(), anthropic.NewToolUse("toolu_1", "nope", nil))
		require.True(t, res.IsError)
		require.Equal(t, "toolu_1", res.ToolUseID)
		require.Equal(t, "unknown tool: nope", res.Content)
	})
}

func TestCallAll(t *testing.T) {
	var r Registry
	r.Register(anthropic.Tool{Name: "echo"}, echoFunc)
	r.Register(anthropic.Tool{Name: "boom"}, func(context.Context, json.RawMessage) (string, error) {
		return "", errors.New("it broke")
	})

	uses := []anthropic.Content{
		anthropic.NewToolUse("toolu_1", "echo", json.RawMessage(`1`)),
		anthropic.NewToolUse("toolu_2", "boom", nil),
		anthropic.NewToolUse("toolu_3", "missing", nil),
		anthropic.NewToolUse("toolu_4", "echo", json.RawMessage(`4`)),
	}
	results := r.CallAll(context.Background(), uses)
	require.Len(t, results, 4)
	for i, res := range results {
		require.Equal(t, fmt.Sprintf("toolu_%d", i+1), res.ToolUseID)
	}
	require.Equal(t, "1", results[0].Content)
	require.True(t, results[1].IsError)
	require.True(t, results[2].IsError)
	require.Equal(t, "4", results[3].Content)
}

func TestClock(t *testing.T) {
	timeNow = func() time.Time {
		return time.Date(2025, 6, 1, 12, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	}
	t.Cleanup(func() { timeNow = time.Now })

	tool, fn := Clock()
	require.Equal(t, "get_time", tool.Name)

	out, err := fn(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "2025-06-01T10:30:00Z", out)
}

func TestBraveSearch(t *testing.T) {
	t.Run("renders results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "secret", r.Header.Get("X-Subscription-Token"))
			require.Equal(t, "gophers", r.URL.Query().Get("q"))
			require.Equal(t, "2", r.URL.Query().Get("count"))
			w.Write([]byte(`{"web":{"results":[
				{"title":"Go","url":"https://go.dev","description":"The Go programming language."},
				{"title":"Gopher","url":"https://go.dev/blog/gopher","description":"The mascot."}
			]}}`)) //nolint:errcheck
		}))
		t.Cleanup(srv.Close)

		b := &BraveSearch{APIKey: "secret", Endpoint: srv.URL}
		out, err := b.Call(context.Background(), json.RawMessage(`{"query":"gophers","count":2}`))
		require.NoError(t, err)
		require.Equal(t, "1. Go\nhttps://go.dev\nThe Go programming language.\n\n"+
			"2. Gopher\nhttps://go.dev/blog/gopher\nThe mascot.", out)
	})

	t.Run("no results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"web":{"results":[]}}`)) //nolint:errcheck
		}))
		t.Cleanup(srv.Close)

		b := &BraveSearch{Endpoint: srv.URL}
		out, err := b.Call(context.Background(), json.RawMessage(`{"query":"xyzzy"}`))
		require.NoError(t, err)
		require.Equal(t, "No results.", out)
	})

	t.Run("empty query", func(t *testing.T) {
		b := &BraveSearch{}
		_, err := b.Call(context.Background(), json.RawMessage(`{}`))
		require.Error(t, err)
	})

	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusUnauthorized)
		}))
		t.Cleanup(srv.Close)

		b := &BraveSearch{Endpoint: srv.URL}
		_, err := b.Call(context.Background(), json.RawMessage(`{"query":"gophers"}`))
		require.ErrorContains(t, err, "HTTP 401")
	})
}
