package main

import (
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/poiesic/logscope/present"
	"github.com/poiesic/logscope/query"
	"github.com/urfave/cli/v2"
)

func uniqueCommand() *cli.Command {
	return &cli.Command{
		Name:        "unique",
		Usage:       "List the distinct values of a field",
		ArgsUsage:   "<field>",
		Description: fieldHelp(),
		Action:      uniqueAction,
	}
}

// fieldHelp lists the short names accepted in place of full field paths.
func fieldHelp() string {
	aliases := query.Aliases()
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString("Fields may be given by full path (LogData.Ward) or by one of these names:\n")
	for _, name := range names {
		b.WriteString("  " + name + " -> " + aliases[name] + "\n")
	}
	return b.String()
}

func uniqueAction(c *cli.Context) error {
	field := query.CleanField(c.Args().First())
	if field == "" {
		return errors.New("a field name is required")
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	lookup, err := db.NewLookup()
	if err != nil {
		return err
	}
	values, err := lookup.Unique(ctx, query.ResolveField(field))
	if err != nil {
		return err
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}
	return present.New(out).Unique(values.Field, values.Values, values.Truncated)
}
