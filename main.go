package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zam-dot/ferrum/bookmarks"
	"github.com/zam-dot/ferrum/fetcher"
	"github.com/zam-dot/ferrum/logging"
	"github.com/zam-dot/ferrum/navigation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ferrum [url or search]",
		Short:         "A tabbed web browser for the terminal",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			start := cfg.HomePage
			if len(args) == 1 {
				start = args[0]
			}
			return run(cmd.Context(), cfg, start)
		},
	}
	registerFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg Config, start string) error {
	logger, err := logging.New(cfg.Logging())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	var store *bookmarks.Store
	if cfg.EnableBookmarks {
		store, err = bookmarks.Open(cfg.BookmarkFile)
		if err != nil {
			return err
		}
	}

	f := fetcher.New(cfg.Fetcher(), logger.Named("fetcher"))

	nav := navigation.NewController(ctx, f,
		navigation.WithLogger(logger.Named("navigation")),
		navigation.WithNormalizer(navigation.Normalizer{SearchTemplate: cfg.SearchTemplate}))
	defer nav.Close()

	logger.Info("starting", zap.String("session", nav.Session()), zap.String("start", start))

	p := tea.NewProgram(newModel(cfg, nav, store, start), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
