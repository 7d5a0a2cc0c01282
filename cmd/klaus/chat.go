package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/klaus"
	"github.com/charmbracelet/klaus/anthropic"
	"github.com/charmbracelet/klaus/conversation"
	"github.com/charmbracelet/klaus/internal/cache"
	"github.com/charmbracelet/klaus/internal/store"
	"github.com/charmbracelet/klaus/tools"
)

const titleMaxLen = 50

type chatSession struct {
	settings Settings
	client   *klaus.Client
	registry *tools.Registry
	convo    *conversation.Conversation
	store    *store.Store
	convos   *cache.Conversations
	id       string
	out      io.Writer
	logger   *slog.Logger
}

func newSession(ctx context.Context, settings Settings, logger *slog.Logger, continueFrom string) (*chatSession, error) {
	if err := os.MkdirAll(settings.CachePath, 0o700); err != nil {
		return nil, fmt.Errorf("could not create cache path: %w", err)
	}
	db, err := store.Open(filepath.Join(settings.CachePath, "klaus.db"))
	if err != nil {
		return nil, err
	}
	convos, err := cache.NewConversations(settings.CachePath)
	if err != nil {
		return nil, err
	}

	s := &chatSession{
		settings: settings,
		client:   &klaus.Client{Logger: logger},
		registry: &tools.Registry{},
		convo:    conversation.New(),
		store:    db,
		convos:   convos,
		id:       newConversationID(),
		out:      os.Stdout,
		logger:   logger,
	}

	if continueFrom != "" {
		found, err := db.Find(continueFrom)
		if err != nil {
			return nil, err
		}
		if err := convos.Read(found.ID, s.convo); err != nil {
			return nil, err
		}
		s.id = found.ID
	}

	s.convo.SetStreaming(!settings.NoStream)
	if settings.System != "" {
		s.convo.SetSystem(settings.System)
	}

	if err := s.setupTools(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *chatSession) Close() error {
	return s.store.Close()
}

func (s *chatSession) setupTools(ctx context.Context) error {
	clockTool, clockFn := tools.Clock()
	s.registry.Register(clockTool, clockFn)

	if s.settings.BraveAPIKey != "" {
		brave := &tools.BraveSearch{APIKey: s.settings.BraveAPIKey}
		s.registry.Register(brave.Tool(), brave.Call)
	}

	if len(s.settings.MCPServers) > 0 {
		mcpTools, err := s.settings.MCPServers.Tools(ctx)
		if err != nil {
			return err
		}
		for _, tool := range mcpTools {
			name := tool.Name
			s.registry.Register(tool, func(ctx context.Context, input json.RawMessage) (string, error) {
				return s.settings.MCPServers.Call(ctx, name, input)
			})
		}
	}

	if len(s.convo.Tools()) == 0 {
		for _, tool := range s.registry.Tools() {
			s.convo.AddTool(tool)
		}
	}
	return nil
}

// ask runs one user turn, including any tool round-trips, and persists the
// conversation afterwards.
func (s *chatSession) ask(ctx context.Context, prompt string) error {
	req, err := s.convo.UserMessage(s.settings.API, prompt)
	if err != nil {
		return err
	}
	if err := s.runTurns(ctx, req); err != nil {
		s.convo.CancelStream()
		return err
	}
	return s.persist()
}

func (s *chatSession) runTurns(ctx context.Context, req klaus.Request) error {
	for {
		var err error
		if s.settings.NoStream {
			err = s.doTurn(ctx, req)
		} else {
			err = s.streamTurn(ctx, req)
		}
		if err != nil {
			return err
		}

		uses := s.convo.Last().ToolUses()
		if len(uses) == 0 {
			return nil
		}
		for _, use := range uses {
			fmt.Fprintln(s.out, styled.ToolCall.Render("* "+use.Name))
			s.logger.Debug("tool call", "name", use.Name, "input", string(use.Input))
		}
		results := s.registry.CallAll(ctx, uses)
		req, err = s.convo.ToolResults(s.settings.API, results)
		if err != nil {
			return err
		}
	}
}

func (s *chatSession) doTurn(ctx context.Context, req klaus.Request) error {
	raw, err := s.client.Do(ctx, req)
	if err != nil {
		return err
	}
	contents, err := s.convo.HandleResponse(raw)
	if err != nil {
		return err
	}
	for _, piece := range contents {
		if piece.Type == anthropic.TypeText && piece.Text != "" {
			fmt.Fprintln(s.out, piece.Text)
		}
	}
	return nil
}

func (s *chatSession) streamTurn(ctx context.Context, req klaus.Request) error {
	stream, err := s.client.Stream(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close() //nolint:errcheck

	var done bool
	for stream.Next() {
		ev := stream.Current()
		if ev.Type == anthropic.EventContentBlockDelta && ev.Delta.Type == anthropic.DeltaText {
			fmt.Fprint(s.out, ev.Delta.Text)
		}
		if done, err = s.convo.HandleStreamEvent(ev); err != nil {
			return err
		}
	}
	fmt.Fprintln(s.out)
	if err := stream.Err(); err != nil {
		return err
	}
	if !done {
		return fmt.Errorf("stream ended before the message finished")
	}
	return nil
}

func (s *chatSession) persist() error {
	if err := s.store.Save(s.id, s.title()); err != nil {
		return err
	}
	return s.convos.Write(s.id, s.convo)
}

// title derives the saved conversation title from the first user message.
func (s *chatSession) title() string {
	for _, msg := range s.convo.History() {
		if msg.Role != anthropic.RoleUser {
			continue
		}
		for _, piece := range msg.Content {
			if piece.Type != anthropic.TypeText || piece.Text == "" {
				continue
			}
			title := strings.Join(strings.Fields(piece.Text), " ")
			if len(title) > titleMaxLen {
				title = title[:titleMaxLen]
			}
			return title
		}
	}
	return "untitled"
}

func (s *chatSession) repl(ctx context.Context) error {
	fmt.Fprintln(s.out, styled.Comment.Render(
		fmt.Sprintf("conversation %s, /quit to exit", shortID(s.id))))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(s.out, styled.Prompt.Render("> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}
		if err := s.ask(ctx, line); err != nil {
			fmt.Fprintln(os.Stderr, styled.ErrHeader.String(), err.Error())
		}
	}
	return scanner.Err() //nolint:wrapcheck
}
