package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/scour-dev/scour/pkg/cache"
	"github.com/scour-dev/scour/pkg/config"
	"github.com/scour-dev/scour/pkg/events"
	"github.com/scour-dev/scour/pkg/render"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search remote artifacts for a term",
		ArgsUsage: "[location...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "term",
				Usage:    "Search term (exact match against decoded content)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "locations-file",
				Usage: "File with one location per line (merged with positional args)",
			},
			&cli.BoolFlag{
				Name:  "events",
				Usage: "Print progress and error events as they happen",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output verdicts as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Bypass the result cache for this search",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return searchArtifacts(ctx, c)
		},
	}
}

func searchArtifacts(ctx context.Context, c *cli.Command) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	locations, err := readLocations(c.String("locations-file"), c.Args().Slice())
	if err != nil {
		return err
	}
	if len(locations) == 0 {
		return errors.New("no locations given (positional args or --locations-file required)")
	}

	factory, err := openStore(cfg)
	if err != nil {
		return err
	}

	var backend cache.Backend
	if !c.Bool("no-cache") {
		backend, err = openCache(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := backend.Close(); err != nil {
				fmt.Printf("Warning: failed to close cache: %v\n", err)
			}
		}()
	}

	var sink events.Sink
	if c.Bool("events") && !c.Bool("json") {
		sink = events.SinkFunc(func(e events.Event) {
			fmt.Fprintln(os.Stderr, render.Event(e))
		})
	}

	term := c.String("term")
	verdicts, cached, err := newSearcher(cfg, factory, backend).SearchDetail(ctx, locations, term, sink)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"term":     term,
			"verdicts": verdicts,
			"cached":   cached,
		})
	}

	fmt.Print(render.Verdicts(verdicts))
	fmt.Println(render.Summary(term, verdicts, cached))
	return nil
}
