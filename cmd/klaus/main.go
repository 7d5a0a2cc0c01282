package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/charmbracelet/klaus/conversation"
	"github.com/charmbracelet/klaus/internal/cache"
	"github.com/charmbracelet/klaus/internal/store"
)

var styled = makeStyles(lipgloss.DefaultRenderer())

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styled.ErrHeader.String(), err.Error())
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		model        string
		system       string
		maxTokens    int
		noStream     bool
		continueFrom bool
		continueID   string
		debug        bool
	)

	cmd := &cobra.Command{
		Use:   "klaus [prompt]",
		Short: "Chat with Claude from your terminal",
		Long: styled.AppName.Render("klaus") +
			" talks to the Anthropic messages API, keeping the conversation on your machine.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if model != "" {
				settings.API.Model = model
			}
			if system != "" {
				settings.System = system
			}
			if maxTokens > 0 {
				settings.API.MaxTokens = maxTokens
			}
			if noStream {
				settings.NoStream = true
			}

			from := continueID
			if continueFrom && from == "" {
				db, err := store.Open(filepath.Join(settings.CachePath, "klaus.db"))
				if err != nil {
					return err
				}
				head, err := db.FindHEAD()
				db.Close() //nolint:errcheck
				if err != nil {
					return err
				}
				from = head.ID
			}

			session, err := newSession(cmd.Context(), settings, logger(settings, debug), from)
			if err != nil {
				return err
			}
			defer session.Close() //nolint:errcheck

			if len(args) > 0 {
				return session.ask(cmd.Context(), strings.Join(args, " "))
			}
			return session.repl(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model to use")
	cmd.Flags().StringVarP(&system, "system", "s", "", "system prompt")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "maximum tokens the model may generate")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "wait for the whole response instead of streaming")
	cmd.Flags().BoolVarP(&continueFrom, "continue", "c", false, "continue the latest conversation")
	cmd.Flags().StringVar(&continueID, "continue-id", "", "continue the conversation with the given ID or title")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(listCmd(), showCmd(), deleteCmd())
	return cmd
}

func logger(settings Settings, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug || settings.Debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			db, err := store.Open(filepath.Join(settings.CachePath, "klaus.db"))
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			convos, err := db.List()
			if err != nil {
				return err
			}
			for _, convo := range convos {
				fmt.Printf("%s %s %s\n",
					styled.SHA1.Render(shortID(convo.ID)),
					convo.Title,
					styled.Timeago.Render(convo.UpdatedAt.Format("2006-01-02 15:04")),
				)
			}
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id or title]",
		Short: "Print a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			db, err := store.Open(filepath.Join(settings.CachePath, "klaus.db"))
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			found, err := db.Find(args[0])
			if err != nil {
				return err
			}
			convos, err := cache.NewConversations(settings.CachePath)
			if err != nil {
				return err
			}
			convo := conversation.New()
			if err := convos.Read(found.ID, convo); err != nil {
				return err
			}
			fmt.Print(convo.String())
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id or title]",
		Short: "Delete a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			db, err := store.Open(filepath.Join(settings.CachePath, "klaus.db"))
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			found, err := db.Find(args[0])
			if err != nil {
				return err
			}
			convos, err := cache.NewConversations(settings.CachePath)
			if err != nil {
				return err
			}
			if err := convos.Delete(found.ID); err != nil {
				return err
			}
			return db.Delete(found.ID)
		},
	}
}
