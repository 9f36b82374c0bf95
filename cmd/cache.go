package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/scour-dev/scour/pkg/cache"
	"github.com/scour-dev/scour/pkg/config"
	"github.com/scour-dev/scour/pkg/db"
	"github.com/scour-dev/scour/pkg/render"
)

// CacheCommand creates the cache command with its admin subcommands
func CacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and maintain the search result cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cache statistics",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withBackend(c.String("config"), func(backend cache.Backend) error {
						stats, err := backend.Stats()
						if err != nil {
							return fmt.Errorf("getting stats: %w", err)
						}
						fmt.Print(render.Stats(stats))
						return nil
					})
				},
			},
			{
				Name:  "purge",
				Usage: "Remove expired cache entries",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withBackend(c.String("config"), func(backend cache.Backend) error {
						removed, err := backend.Purge()
						if err != nil {
							return fmt.Errorf("purging cache: %w", err)
						}
						fmt.Printf("Removed %d expired entries\n", removed)
						return nil
					})
				},
			},
			{
				Name:  "flush",
				Usage: "Remove all cache entries",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withBackend(c.String("config"), func(backend cache.Backend) error {
						removed, err := backend.Flush()
						if err != nil {
							return fmt.Errorf("flushing cache: %w", err)
						}
						fmt.Printf("Removed %d entries\n", removed)
						return nil
					})
				},
			},
			{
				Name:  "vacuum",
				Usage: "Compact the cache database (sqlite only)",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withBackend(c.String("config"), func(backend cache.Backend) error {
						sqlite, ok := backend.(*cache.SQLite)
						if !ok {
							return fmt.Errorf("vacuum requires the sqlite cache provider")
						}
						start := time.Now()
						if err := sqlite.Vacuum(); err != nil {
							return fmt.Errorf("vacuuming cache: %w", err)
						}
						fmt.Printf("Vacuum completed in %s\n", time.Since(start).Round(time.Millisecond))
						return nil
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "Show or apply cache database migrations (sqlite only)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "Show migration status without applying migrations",
						Value: false,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return migrateCache(c.String("config"), c.Bool("status"))
				},
			},
		},
	}
}

// withBackend opens the configured cache backend, runs fn and closes it
func withBackend(configPath string, fn func(cache.Backend) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	backend, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			fmt.Printf("Warning: failed to close cache: %v\n", err)
		}
	}()

	return fn(backend)
}

func migrateCache(configPath string, statusOnly bool) error {
	return withBackend(configPath, func(backend cache.Backend) error {
		sqlite, ok := backend.(*cache.SQLite)
		if !ok {
			return fmt.Errorf("migrations apply to the sqlite cache provider only")
		}

		if !statusOnly {
			if err := db.ApplyPendingMigrations(sqlite.DB()); err != nil {
				return fmt.Errorf("applying migrations: %w", err)
			}
		}
		return showMigrationStatus(sqlite)
	})
}

// showMigrationStatus displays the current migration status
func showMigrationStatus(sqlite *cache.SQLite) error {
	status, err := db.MigrationStatus(sqlite.DB())
	if err != nil {
		return err
	}

	fmt.Printf("Applied migrations: %d\n", len(status.Applied))
	for _, migration := range status.Applied {
		appliedTime := "unknown"
		if migration.AppliedAt != nil {
			appliedTime = migration.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  %03d: %s (applied: %s)\n", migration.Version, migration.Name, appliedTime)
	}

	fmt.Printf("Pending migrations: %d\n", len(status.Pending))
	for _, migration := range status.Pending {
		fmt.Printf("  %03d: %s\n", migration.Version, migration.Name)
	}

	if len(status.Pending) == 0 {
		fmt.Println("  (none - database is up to date)")
	}

	return nil
}
