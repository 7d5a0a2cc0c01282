// Package mcp exposes the tools of configured MCP servers as regular
// anthropic tools. Each server is a stdio subprocess; tool names are
// prefixed with the server name so one registry can hold them all.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/charmbracelet/klaus/anthropic"
)

// ServerConfig describes how to launch one MCP server.
type ServerConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Env     []string `yaml:"env,omitempty"`
}

// Servers maps server names to their launch configuration.
type Servers map[string]ServerConfig

// Tools lists the tools of every server, queried concurrently, as anthropic
// tool definitions named server_tool. The result is sorted by name so
// advertised tool order is stable across runs.
func (s Servers) Tools(ctx context.Context) ([]anthropic.Tool, error) {
	var mu sync.Mutex
	var wg errgroup.Group
	var result []anthropic.Tool
	for sname, server := range s {
		wg.Go(func() error {
			serverTools, err := listTools(ctx, sname, server)
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("mcp: timeout while listing tools for %q - make sure the configuration is correct. If your server requires a docker container, make sure it's running", sname)
			}
			if err != nil {
				return err
			}
			mu.Lock()
			result = append(result, serverTools...)
			mu.Unlock()
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err //nolint:wrapcheck
	}
	slices.SortFunc(result, func(a, b anthropic.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

func listTools(ctx context.Context, name string, server ServerConfig) ([]anthropic.Tool, error) {
	cli, err := client.NewStdioMCPClient(
		server.Command,
		append(os.Environ(), server.Env...),
		server.Args...,
	)
	if err != nil {
		return nil, fmt.Errorf("mcp: could not setup %s: %w", name, err)
	}
	defer cli.Close() //nolint:errcheck
	if _, err := cli.Initialize(ctx, mcp.InitializeRequest{}); err != nil {
		return nil, fmt.Errorf("mcp: could not setup %s: %w", name, err)
	}
	listed, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp: could not setup %s: %w", name, err)
	}

	tools := make([]anthropic.Tool, 0, len(listed.Tools))
	for _, tool := range listed.Tools {
		tools = append(tools, anthropic.Tool{
			Name:        name + "_" + tool.Name,
			Description: tool.Description,
			InputSchema: anthropic.InputSchema{
				Type:       tool.InputSchema.Type,
				Properties: tool.InputSchema.Properties,
				Required:   tool.InputSchema.Required,
			},
		})
	}
	return tools, nil
}

// Call invokes the tool behind a prefixed name with the given JSON
// arguments, and returns the concatenated text content it produced.
func (s Servers) Call(ctx context.Context, name string, input json.RawMessage) (string, error) {
	sname, tool, ok := strings.Cut(name, "_")
	if !ok {
		return "", fmt.Errorf("mcp: invalid tool name: %q", name)
	}
	server, ok := s[sname]
	if !ok {
		return "", fmt.Errorf("mcp: invalid server name: %q", sname)
	}

	cli, err := client.NewStdioMCPClient(
		server.Command,
		append(os.Environ(), server.Env...),
		server.Args...,
	)
	if err != nil {
		return "", fmt.Errorf("mcp: %w", err)
	}
	defer cli.Close() //nolint:errcheck

	if _, err := cli.Initialize(ctx, mcp.InitializeRequest{}); err != nil {
		return "", fmt.Errorf("mcp: %w", err)
	}

	var args map[string]any
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return "", fmt.Errorf("mcp: %w: %s", err, string(input))
		}
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = tool
	request.Params.Arguments = args
	result, err := cli.CallTool(ctx, request)
	if err != nil {
		return "", fmt.Errorf("mcp: %w", err)
	}

	var sb strings.Builder
	for _, content := range result.Content {
		switch content := content.(type) {
		case mcp.TextContent:
			sb.WriteString(content.Text)
		default:
			sb.WriteString("[Non-text content]")
		}
	}

	if result.IsError {
		return "", errors.New(sb.String())
	}
	return sb.String(), nil
}

// Names returns the configured server names, sorted.
func (s Servers) Names() []string {
	names := slices.Collect(maps.Keys(s))
	slices.Sort(names)
	return names
}
