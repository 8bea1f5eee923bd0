package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/engine"
	"github.com/poiesic/logscope/present"
	"github.com/poiesic/logscope/query"
	"github.com/urfave/cli/v2"
)

const prompt = "logscope> "

// turner answers one line of input.
type turner interface {
	Handle(ctx context.Context, input string) *engine.Response
}

func askCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask questions interactively, or once when a question is given",
		ArgsUsage: "[question]",
		Action:    askAction,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "scope",
				Usage: "Restrict semantic answers to logs matching key=value (repeatable)",
			},
		},
	}
}

func askAction(c *cli.Context) error {
	scope, err := parseScope(c.StringSlice("scope"))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := db.NewEngine(engine.WithSemanticFilter(scope))
	if err != nil {
		return err
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}
	pres := present.New(out, present.WithTableRenderer(present.NewTabRenderer()))

	if c.NArg() > 0 {
		return runTurn(ctx, eng, pres, strings.Join(c.Args().Slice(), " "))
	}
	return repl(ctx, os.Stdin, out, eng, pres)
}

// parseScope turns key=value arguments into an anchored filter.
func parseScope(args []string) (core.Filter, error) {
	if len(args) == 0 {
		return nil, nil
	}
	pairs := make([]query.Pair, 0, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("invalid scope %q: want key=value", arg)
		}
		pairs = append(pairs, query.Pair{Key: query.ResolveField(k), Value: v})
	}
	return query.NormalizeFilters(pairs, true), nil
}

func runTurn(ctx context.Context, t turner, pres *present.Presenter, line string) error {
	return t.Handle(ctx, line).Render(pres)
}

// repl reads questions until EOF, an exit token or cancellation. A failed
// turn never ends the loop.
func repl(ctx context.Context, in io.Reader, out io.Writer, t turner, pres *present.Presenter) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExit(line) {
			return nil
		}
		if err := runTurn(ctx, t, pres, line); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		fmt.Fprintln(out)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func isExit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "q":
		return true
	}
	return false
}
