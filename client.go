package klaus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/klaus/anthropic"
	"github.com/charmbracelet/klaus/jsonscan"
)

const (
	defaultMaxAttempts = 3
	defaultRetryWait   = time.Second

	// Some proxies signal throttling with 420 instead of 429.
	statusEnhanceYourCalm = 420
)

// ErrRetriesExhausted is returned when every attempt of a call was rate
// limited.
var ErrRetriesExhausted = errors.New("klaus: rate limited, retry budget exhausted")

// StatusError is a non-rate-limit HTTP failure, carrying the status and the
// raw body. If the body decodes as an API error envelope, errors.As can
// reach the typed *anthropic.APIError through Unwrap.
type StatusError struct {
	Status int
	Body   []byte

	api *anthropic.APIError
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("klaus: request failed with HTTP %d: %s", e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.api == nil {
		return nil
	}
	return e.api
}

func newStatusError(status int, body []byte) *StatusError {
	e := &StatusError{Status: status, Body: body}
	if _, err := anthropic.DecodeResponse(body); err != nil {
		errors.As(err, &e.api)
	}
	return e
}

// Client executes Requests over HTTP. It retries rate-limited attempts with
// the identical serialized body, honoring the provider's Retry-After header
// when present, and surfaces every other failure immediately. It never
// touches conversation state: history handling stays above it.
//
// The zero value is usable.
type Client struct {
	// HTTPClient is the underlying client. Nil means http.DefaultClient.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, logging is off.
	Logger *slog.Logger

	// MaxAttempts bounds how often a rate-limited call is tried in total.
	// Zero means 3.
	MaxAttempts int
}

// Do executes req and returns the raw response body. Callers decode it with
// anthropic.DecodeResponse or hand it to a conversation.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("klaus: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, body)
	}
	return body, nil
}

// Stream executes req and returns its ordered event stream. The request
// should have been built with Stream set. The caller must Close the stream.
func (c *Client) Stream(ctx context.Context, req Request) (*EventStream, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close() //nolint:errcheck
		if err != nil {
			return nil, fmt.Errorf("klaus: read response: %w", err)
		}
		return nil, newStatusError(resp.StatusCode, body)
	}
	return &EventStream{
		body: resp.Body,
		dec:  jsonscan.NewDecoder(newSSEDataReader(resp.Body)),
	}, nil
}

// send runs the retry loop. Rate limiting (HTTP 420/429) waits and retries
// the identical request; anything else is returned to the caller as-is.
func (c *Client) send(ctx context.Context, req Request) (*http.Response, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		httpReq, err := req.HTTPRequest(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient().Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("klaus: send request: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests &&
			resp.StatusCode != statusEnhanceYourCalm {
			return resp, nil
		}

		resp.Body.Close() //nolint:errcheck
		wait := retryAfter(resp)
		c.logger().Warn("rate limited",
			"wait", wait,
			"attempt", attempt,
			"of", attempts)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, ErrRetriesExhausted
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// retryAfter reads the provider-supplied wait duration, falling back to one
// second.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRetryWait
}

// EventStream iterates the decoded events of a streaming response in
// arrival order.
//
//	for stream.Next() {
//		done, err := convo.HandleStreamEvent(stream.Current())
//		...
//	}
//	if err := stream.Err(); err != nil { ... }
type EventStream struct {
	body io.ReadCloser
	dec  *jsonscan.Decoder
	cur  anthropic.StreamEvent
	err  error
}

// Next advances to the next event. It returns false at the end of the
// stream or on error; check Err afterwards.
func (s *EventStream) Next() bool {
	if s.err != nil {
		return false
	}
	raw, err := s.dec.Decode()
	if err == io.EOF {
		return false
	}
	if err != nil {
		s.err = err
		return false
	}
	ev, err := anthropic.DecodeEvent(raw)
	if err != nil {
		s.err = err
		return false
	}
	s.cur = ev
	return true
}

// Current returns the event Next advanced to.
func (s *EventStream) Current() anthropic.StreamEvent { return s.cur }

// Err returns the first error the stream ran into, if any.
func (s *EventStream) Err() error { return s.err }

// Close closes the underlying response body.
func (s *EventStream) Close() error { return s.body.Close() }
