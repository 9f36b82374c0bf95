package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/scour-dev/scour/pkg/config"
	"github.com/scour-dev/scour/pkg/objstore"
)

// StoresCommand creates the stores command
func StoresCommand() *cli.Command {
	return &cli.Command{
		Name:  "stores",
		Usage: "List available object store providers",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			for _, name := range objstore.Providers() {
				marker := " "
				if name == cfg.Store.Provider {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, name)
			}
			return nil
		},
	}
}
