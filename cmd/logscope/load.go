package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/logscope/ingestion"
	"github.com/urfave/cli/v2"
)

func loadCommand() *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Load device-log dumps (.json, .jsonl, optionally .gz or .zst)",
		ArgsUsage: "<file or directory>...",
		Action:    loadAction,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and load files written to the directory",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent embedding workers",
			},
		},
	}
}

func loadAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one path is required")
	}
	if c.Bool("watch") && c.NArg() != 1 {
		return errors.New("--watch takes exactly one directory")
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []ingestion.Option
	if c.IsSet("workers") {
		opts = append(opts, ingestion.WithPoolSize(c.Int("workers")))
	}
	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	stats, err := pipeline.LoadPaths(ctx, c.Args().Slice()...)
	pipeline.Wait()
	printStats(c, stats, pipeline.Failed())
	if err != nil {
		return err
	}

	if !c.Bool("watch") {
		return nil
	}
	watcher, err := db.NewWatcher(c.Args().First(), pipeline)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "Watching %s (Ctrl-C to stop)\n", c.Args().First())
	err = watcher.Start(ctx)
	pipeline.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printStats(c *cli.Context, s ingestion.LoadStats, failed int) {
	w := c.App.ErrWriter
	fmt.Fprintf(w, "Files: %s  Read: %s  Stored: %s  Skipped: %s  Embedded: %s",
		humanize.Comma(int64(s.Files)), humanize.Comma(int64(s.Read)),
		humanize.Comma(int64(s.Stored)), humanize.Comma(int64(s.Skipped)),
		humanize.Comma(int64(s.Queued-failed)))
	if failed > 0 {
		fmt.Fprintf(w, "  Embedding failures: %s", humanize.Comma(int64(failed)))
	}
	fmt.Fprintln(w)
}
