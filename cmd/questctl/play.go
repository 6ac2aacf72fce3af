package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jwebster45206/questmaster/pkg/engine"
	"github.com/jwebster45206/questmaster/pkg/state"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Play the current story in the terminal",
		Long: `Loads the story graph and plays it line by line. Enter a choice number or key,
"restart" to start over, or "quit" to stop. With --choices the listed keys or numbers are
played in order instead of reading stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := setup(cmd)
			choices, _ := cmd.Flags().GetStringSlice("choices")
			asJSON, _ := cmd.Flags().GetBool("json")

			var input lineReader
			if len(choices) > 0 {
				input = &scriptReader{lines: choices}
			} else {
				input = &stdinReader{scanner: bufio.NewScanner(cmd.InOrStdin())}
			}

			p := &player{
				engine: e.newEngine(),
				source: e.source,
				out:    cmd.OutOrStdout(),
				quiet:  asJSON,
			}
			if err := p.play(cmd.Context(), input); err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p.engine.Session())
			}
			return nil
		},
	}

	playCmd.Flags().StringSlice("choices", nil, "Choices to play in order, as keys or 1-based numbers")
	playCmd.Flags().Bool("json", false, "Print only the final session as JSON")
	return playCmd
}

type lineReader interface {
	// next returns the next input line, or false when input is exhausted.
	next() (string, bool)
}

type scriptReader struct {
	lines []string
}

func (s *scriptReader) next() (string, bool) {
	if len(s.lines) == 0 {
		return "", false
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, true
}

type stdinReader struct {
	scanner *bufio.Scanner
}

func (s *stdinReader) next() (string, bool) {
	if !s.scanner.Scan() {
		return "", false
	}
	return s.scanner.Text(), true
}

type player struct {
	engine *engine.Engine
	source engine.GraphSource
	out    io.Writer
	quiet  bool
}

func (p *player) printf(format string, args ...any) {
	if !p.quiet {
		_, _ = fmt.Fprintf(p.out, format, args...)
	}
}

// play loads the story and feeds it input until the game ends or input runs out.
func (p *player) play(ctx context.Context, input lineReader) error {
	if err := p.engine.Load(ctx, p.source); err != nil {
		return err
	}
	p.render()

	for p.engine.Session().IsPlaying() {
		p.printf("> ")
		line, ok := input.next()
		if !ok {
			p.printf("\n")
			return nil
		}
		line = strings.TrimSpace(line)

		switch strings.ToLower(line) {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		case "r", "restart":
			p.engine.Restart()
			if err := p.engine.Load(ctx, p.source); err != nil {
				return err
			}
			p.render()
			continue
		}

		key := p.resolveKey(line)
		accepted, err := p.engine.SelectOption(ctx, key)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if !accepted {
			p.printf("There is no choice %q.\n", line)
			continue
		}
		p.render()
	}
	return nil
}

// resolveKey maps a 1-based choice number to its option key.
func (p *player) resolveKey(line string) string {
	v := p.engine.View()
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(v.Choices) {
		return v.Choices[n-1].Key
	}
	return line
}

func (p *player) render() {
	v := p.engine.View()
	p.printf("\n%s\n\n", v.Description)

	switch v.Phase {
	case state.PhasePlaying:
		if len(v.Choices) == 0 {
			p.printf("There is nowhere left to go. Type restart or quit.\n")
		}
		for i, c := range v.Choices {
			p.printf("  %d. %s\n", i+1, c.Label)
		}
	case state.PhaseEnded:
		if v.Outcome == state.OutcomeWin {
			p.printf("VICTORY! You completed the quest in %d turns.\n", v.Turns)
		} else {
			p.printf("GAME OVER. Your adventure ends here.\n")
		}
	}
}
