package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"

	"github.com/scour-dev/scour/pkg/api"
	"github.com/scour-dev/scour/pkg/cache"
	"github.com/scour-dev/scour/pkg/config"
	"github.com/scour-dev/scour/pkg/events"
	"github.com/scour-dev/scour/pkg/search"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the search API daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address (overrides config)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("listen"))
		},
	}
}

// serveState holds the pieces a config reload swaps out.
type serveState struct {
	mu       sync.RWMutex
	searcher *search.Searcher
}

func (s *serveState) current() *search.Searcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searcher
}

func (s *serveState) swap(searcher *search.Searcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searcher = searcher
}

// serve starts the HTTP API with the event hub, optional unix-socket event
// bridge, and live config reload on SIGHUP or file change.
func serve(ctx context.Context, configPath, listenOverride string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	listen := cfg.Serve.Listen
	if listenOverride != "" {
		listen = listenOverride
	}

	factory, err := openStore(cfg)
	if err != nil {
		return err
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

	state := &serveState{searcher: newSearcher(cfg, factory, backend)}

	hub := events.NewHub(cfg.Events.Buffer)
	defer hub.Close()

	if cfg.Events.Socket != "" {
		bridge := events.NewBridge(cfg.Events.Socket)
		if err := bridge.Start(); err != nil {
			return fmt.Errorf("starting event bridge: %w", err)
		}
		defer bridge.Stop()

		// Forward every hub event onto the socket.
		id, ch := hub.Register()
		defer hub.Unregister(id)
		go func() {
			for e := range ch {
				bridge.Emit(e)
			}
		}()
		log.Printf("Event bridge listening on %s", cfg.Events.Socket)
	}

	server := api.NewServer(state.current, hub, backend)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              listen,
		Handler:           api.CorsMiddleware(api.RequestIDMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("API listening on %s", listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Signal handling - includes SIGHUP for reload
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Set up filesystem watcher for config file
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("Warning: failed to create config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Printf("Warning: failed to close config file watcher: %v", err)
			}
		}()

		if err := watcher.Add(configPath); err != nil {
			log.Printf("Warning: failed to watch config file %s: %v", configPath, err)
		} else {
			log.Printf("Watching config file for changes: %s", configPath)
		}
	}

	shutdown := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}

	var watchEvents chan fsnotify.Event
	var watchErrors chan error
	if watcher != nil {
		watchEvents = watcher.Events
		watchErrors = watcher.Errors
	}

	for {
		select {
		case err := <-serveErr:
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
			return shutdown()
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading configuration...")
				if err := reloadConfiguration(configPath, cfg, backend, state); err != nil {
					log.Printf("Failed to reload configuration: %v", err)
				} else {
					log.Println("Configuration reloaded successfully")
				}
			case syscall.SIGINT, syscall.SIGTERM:
				fmt.Println("\nShutting down...")
				return shutdown()
			}
		case event, ok := <-watchEvents:
			if !ok {
				continue
			}
			// React to write, create, rename, and remove events (editors often use atomic writes)
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				log.Printf("Config file changed: %s (event: %s), reloading configuration...", event.Name, event.Op.String())

				if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					// Small delay to ensure the new file is fully written
					time.Sleep(200 * time.Millisecond)

					if _, err := os.Stat(configPath); os.IsNotExist(err) {
						log.Printf("Config file was removed and not replaced, skipping reload")
						continue
					}

					// Re-add the config file to watcher in case it was replaced
					if err := watcher.Add(configPath); err != nil {
						log.Printf("Warning: failed to re-add config file to watcher after rename/remove: %v", err)
					}
				} else {
					// Add a small delay to ensure file write is complete
					time.Sleep(100 * time.Millisecond)
				}

				if err := reloadConfiguration(configPath, cfg, backend, state); err != nil {
					log.Printf("Failed to reload configuration after file change: %v", err)
				} else {
					log.Println("Configuration reloaded successfully after file change")
				}
			}
		case err, ok := <-watchErrors:
			if !ok {
				continue
			}
			log.Printf("Config file watcher error: %v", err)
		}
	}
}

// reloadConfiguration rebuilds the searcher from the config file and swaps
// it in. The cache backend, listen address and event socket are fixed for
// the life of the process; changes to those log a restart-required warning.
func reloadConfiguration(configPath string, startCfg *config.Config, backend cache.Backend, state *serveState) error {
	newCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading new config: %w", err)
	}

	if newCfg.Serve.Listen != startCfg.Serve.Listen {
		log.Printf("Warning: listen address changed to %s, restart required to apply", newCfg.Serve.Listen)
	}
	if newCfg.Cache.Provider != startCfg.Cache.Provider || newCfg.Cache.Path != startCfg.Cache.Path {
		log.Println("Warning: cache provider or path changed, restart required to apply")
	}
	if newCfg.Events.Socket != startCfg.Events.Socket {
		log.Println("Warning: event socket changed, restart required to apply")
	}

	factory, err := openStore(newCfg)
	if err != nil {
		return err
	}

	state.swap(newSearcher(newCfg, factory, backend))
	log.Printf("Configuration reload complete: store=%s batch_size=%d ttl=%s",
		newCfg.Store.Provider, newCfg.Search.BatchSize, newCfg.Search.CacheTTL)
	return nil
}
