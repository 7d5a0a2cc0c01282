package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	s := Servers{
		"github": {Command: "gh-mcp"},
		"fs":     {Command: "fs-mcp"},
	}
	require.Equal(t, []string{"fs", "github"}, s.Names())
}

func TestCallBadNames(t *testing.T) {
	s := Servers{"fs": {Command: "fs-mcp"}}

	_, err := s.Call(context.Background(), "noseparator", nil)
	require.ErrorContains(t, err, "invalid tool name")

	_, err = s.Call(context.Background(), "github_search", nil)
	require.ErrorContains(t, err, "invalid server name")
}
