// Package session runs the line-oriented player loop: read input,
// resolve a turn, render the result.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pixil98/go-rpg/internal/display"
	"github.com/pixil98/go-rpg/internal/engine"
)

// TurnProcessor is the engine surface a session drives.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, gameID, rawInput string) (*engine.TurnResult, error)
}

type Session struct {
	engine TurnProcessor
	gameID string
	in     io.Reader
	out    io.Writer
}

func New(e TurnProcessor, gameID string, in io.Reader, out io.Writer) *Session {
	return &Session{engine: e, gameID: gameID, in: in, out: out}
}

// Start reads one input line at a time until EOF, "quit" or context
// cancellation. Turn failures are reported and the loop continues.
func (s *Session) Start(ctx context.Context) error {
	fmt.Fprint(s.out, "> ")

	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(s.out, "> ")
			continue
		}
		if strings.EqualFold(line, "quit") {
			fmt.Fprintln(s.out, "Farewell.")
			return nil
		}

		res, err := s.engine.ProcessTurn(ctx, s.gameID, line)
		if err != nil {
			slog.Error("turn failed", "game_id", s.gameID, "err", err)
			fmt.Fprintln(s.out, "Something went wrong resolving that turn.")
			fmt.Fprint(s.out, "> ")
			continue
		}

		fmt.Fprint(s.out, Render(res))
		fmt.Fprint(s.out, "> ")
	}
	return scanner.Err()
}

// Render formats one resolved turn for a text terminal.
func Render(res *engine.TurnResult) string {
	var b strings.Builder

	b.WriteString(display.Wrap(res.Narrative))
	b.WriteString("\n")

	if res.MechanicalSummary != "" {
		b.WriteString(display.Mechanics(res.MechanicalSummary))
		b.WriteString("\n")
	}
	if res.LevelUp != nil {
		b.WriteString(display.Banner(fmt.Sprintf("You reached level %d! (+%d HP, now %d max)",
			res.LevelUp.NewLevel, res.LevelUp.HPGained, res.LevelUp.NewHPMax)))
		b.WriteString("\n")
	}
	for _, w := range res.NeedWarnings {
		b.WriteString(display.Warning(w))
		b.WriteString("\n")
	}
	return b.String()
}
