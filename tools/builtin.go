package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/klaus/anthropic"
)

var timeNow = time.Now

// Clock returns a tool that reports the current time in UTC. Models have no
// clock of their own, so this is the cheapest way to make "what day is it"
// answerable.
func Clock() (anthropic.Tool, Func) {
	tool := anthropic.Tool{
		Name:        "get_time",
		Description: "Get the current date and time in UTC, as an RFC 3339 timestamp.",
		InputSchema: anthropic.InputSchema{Type: "object"},
	}
	fn := func(_ context.Context, _ json.RawMessage) (string, error) {
		return timeNow().UTC().Format(time.RFC3339), nil
	}
	return tool, fn
}

const (
	braveEndpoint       = "https://api.search.brave.com/res/v1/web/search"
	braveDefaultResults = 5
	braveMaxResults     = 20
)

// BraveSearch is a web search tool backed by the Brave Search API.
type BraveSearch struct {
	// APIKey is the Brave subscription token.
	APIKey string

	// Endpoint overrides the API endpoint. Empty means the real API.
	Endpoint string

	// HTTPClient overrides the HTTP client. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Tool returns the tool definition to advertise.
func (b *BraveSearch) Tool() anthropic.Tool {
	return anthropic.Tool{
		Name:        "web_search",
		Description: "Search the web and get back a list of result titles, URLs, and snippets.",
		InputSchema: anthropic.InputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query.",
				},
				"count": map[string]any{
					"type":        "integer",
					"description": "How many results to return, up to 20.",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Call implements Func.
func (b *BraveSearch) Call(ctx context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Query string `json:"query"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("web_search: bad arguments: %w", err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("web_search: empty query")
	}
	if args.Count <= 0 {
		args.Count = braveDefaultResults
	}
	if args.Count > braveMaxResults {
		args.Count = braveMaxResults
	}

	endpoint := b.Endpoint
	if endpoint == "" {
		endpoint = braveEndpoint
	}
	q := url.Values{}
	q.Set("q", args.Query)
	q.Set("count", strconv.Itoa(args.Count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("web_search: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	client := b.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("web_search: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("web_search: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("web_search: HTTP %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("web_search: decode response: %w", err)
	}
	if len(result.Web.Results) == 0 {
		return "No results.", nil
	}

	var sb strings.Builder
	for i, r := range result.Web.Results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Description)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
