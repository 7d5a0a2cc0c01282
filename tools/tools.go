// Package tools runs the client side of tool use: a registry of callable
// tools, advertised to the model on every request and dispatched when the
// assistant asks for them.
package tools

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/charmbracelet/klaus/anthropic"
)

// Func executes one tool invocation. The input is the raw JSON arguments the
// model produced for the tool's schema.
type Func func(ctx context.Context, input json.RawMessage) (string, error)

// Registry holds tools in registration order. The order matters: it is the
// order tools are advertised in, which keeps request bodies deterministic.
type Registry struct {
	tools []anthropic.Tool
	funcs map[string]Func
}

// Register adds a tool and its implementation. Registering a name twice
// replaces the implementation but keeps the original position.
func (r *Registry) Register(tool anthropic.Tool, fn Func) {
	if r.funcs == nil {
		r.funcs = map[string]Func{}
	}
	if _, ok := r.funcs[tool.Name]; !ok {
		r.tools = append(r.tools, tool)
	}
	r.funcs[tool.Name] = fn
}

// Tools returns the registered tool definitions in registration order.
func (r *Registry) Tools() []anthropic.Tool {
	return r.tools[:len(r.tools):len(r.tools)]
}

// Call runs the tool requested by use, which must be a tool_use content
// piece. It always produces a tool_result: execution failures and unknown
// tool names come back as error results for the model to react to, never as
// Go errors.
func (r *Registry) Call(ctx context.Context, use anthropic.Content) anthropic.Content {
	fn, ok := r.funcs[use.Name]
	if !ok {
		return anthropic.UnknownToolResult(use.ID, use.Name)
	}
	out, err := fn(ctx, use.Input)
	if err != nil {
		return anthropic.NewToolResult(use.ID, err.Error(), true)
	}
	return anthropic.NewToolResult(use.ID, out, false)
}

// CallAll runs every requested tool concurrently and returns the results in
// the same order as the requests, ready for Conversation.ToolResults.
func (r *Registry) CallAll(ctx context.Context, uses []anthropic.Content) []anthropic.Content {
	results := make([]anthropic.Content, len(uses))
	var wg errgroup.Group
	for i, use := range uses {
		wg.Go(func() error {
			results[i] = r.Call(ctx, use)
			return nil
		})
	}
	wg.Wait() //nolint:errcheck
	return results
}
