package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/jwebster45206/questmaster/internal/config"
	"github.com/jwebster45206/questmaster/internal/logger"
	"github.com/jwebster45206/questmaster/internal/services"
	"github.com/jwebster45206/questmaster/pkg/engine"
	"github.com/jwebster45206/questmaster/pkg/textfilter"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "questctl",
		Short: "questctl plays and inspects generated text adventures",
		Long: `questctl talks to the story backend to generate adventures, fetch their graphs,
play them without the console UI, and check scripted walkthroughs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("api", "", "Story backend base URL (default from API_BASE_URL)")
	rootCmd.PersistentFlags().String("graph", "", "Read the story graph from a JSON file instead of the backend")
	rootCmd.PersistentFlags().String("start", "", "Start node id (default from START_NODE)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log to stderr at debug level")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newWalkCmd())
	rootCmd.AddCommand(newValidateCmd())
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand needs, resolved from config and flags.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	api    *services.QuestAPI
	source engine.GraphSource
}

func setup(cmd *cobra.Command) *env {
	cfg := config.Load()

	if api, _ := cmd.Flags().GetString("api"); api != "" {
		cfg.APIBaseURL = api
	}
	if start, _ := cmd.Flags().GetString("start"); start != "" {
		cfg.StartNode = start
	}

	var logOut io.Writer = io.Discard
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = slog.LevelDebug
		logOut = cmd.ErrOrStderr()
	}
	log := logger.Setup(cfg, logOut)

	api := services.NewQuestAPI(cfg.APIBaseURL, &http.Client{Timeout: cfg.RequestTimeout}, log)
	e := &env{cfg: cfg, logger: log, api: api, source: api}
	if path, _ := cmd.Flags().GetString("graph"); path != "" {
		e.source = services.NewFileSource(path)
	}
	return e
}

func (e *env) newEngine() *engine.Engine {
	return engine.New(
		engine.WithStartNode(e.cfg.StartNode),
		engine.WithLogger(e.logger),
		engine.WithMarkup(textfilter.PlainMarkup),
	)
}
