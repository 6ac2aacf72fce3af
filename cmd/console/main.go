package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/questmaster/internal/config"
	"github.com/jwebster45206/questmaster/internal/logger"
	"github.com/jwebster45206/questmaster/internal/services"
	"github.com/jwebster45206/questmaster/pkg/engine"
)

func main() {
	os.Exit(run())
}

// run starts the console and returns the process exit code, so deferred
// cleanup runs before exit.
func run() int {
	cfg := config.Load()

	// The TUI owns the terminal, so logs only go to a file.
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			return 1
		}
		defer func() {
			_ = f.Close()
		}()
		logOut = f
	}
	log := logger.Setup(cfg, logOut)

	client := &http.Client{
		Timeout: cfg.RequestTimeout,
	}
	backend := services.NewQuestAPI(cfg.APIBaseURL, client, log)

	eng := engine.New(
		engine.WithDelay(engine.FixedDelay(cfg.TransitionDelay)),
		engine.WithStartNode(cfg.StartNode),
		engine.WithLogger(log),
		engine.WithMarkup(terminalMarkup),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(NewConsoleUI(ctx, eng, backend, backend, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 1
	}
	return 0
}
