package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/scour-dev/scour/pkg/config"
	"github.com/scour-dev/scour/pkg/core"
	"github.com/scour-dev/scour/pkg/decode"
	"github.com/scour-dev/scour/pkg/objstore"
)

// GetCommand creates the get command
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch and decode a single artifact",
		ArgsUsage: "<location>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Write the raw object bytes without decoding",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return errors.New("exactly one location required")
			}
			return getArtifact(ctx, c.String("config"), c.Args().First(), c.Bool("raw"))
		},
	}
}

func getArtifact(ctx context.Context, configPath, location string, raw bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	factory, err := openStore(cfg)
	if err != nil {
		return err
	}
	session, err := factory.Open(ctx)
	if err != nil {
		return fmt.Errorf("opening store session: %w", err)
	}
	defer func() { _ = session.Close() }()

	outcome := objstore.Fetch(ctx, session, location, cfg.Store.Scheme)
	switch outcome.Kind {
	case core.FetchOK:
	case core.FetchTooLarge:
		return fmt.Errorf("artifact %s exceeds the size ceiling", location)
	case core.FetchInaccessible:
		return fmt.Errorf("artifact %s is not accessible", location)
	default:
		return fmt.Errorf("fetching %s: %s", location, outcome.Message)
	}

	if raw {
		_, err := os.Stdout.Write(outcome.Raw)
		return err
	}

	decoded, err := decode.NewDecoder(cfg.Search.MaxArtifactSize).Decode(outcome.Raw)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", location, err)
	}
	if decoded.Kind != core.ArtifactValue {
		return fmt.Errorf("artifact %s exceeds the size ceiling", location)
	}

	fmt.Println(decoded.Content)
	return nil
}
