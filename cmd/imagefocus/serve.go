package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recera/imagefocus/cmd/imagefocus/internal/devserver"
	"github.com/recera/imagefocus/cmd/imagefocus/internal/watch"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var port int
	var host string
	var root string
	var wasm string
	var noReload bool

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve pages with the overlay client and live reload",
		Long: `Serves a directory of pages with the image focus WASM client injected into
every HTML page. Connected browsers reload when files in the directory change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			// CLI takes precedence over imagefocus.yaml
			if len(args) == 1 {
				cfg.Dev.Root = args[0]
			} else if root != "" {
				cfg.Dev.Root = root
			}
			if port != 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			if wasm != "" {
				cfg.Dev.Wasm = wasm
			}

			return runServe(flags, devserver.Config{
				Host: cfg.Dev.Host,
				Port: cfg.Dev.Port,
				Root: cfg.Dev.Root,
				Wasm: cfg.Dev.Wasm,
			}, cfg.Dev.Watch, !noReload)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (default from imagefocus.yaml, else 8080)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default localhost)")
	cmd.Flags().StringVar(&root, "root", "", "Directory of pages to serve")
	cmd.Flags().StringVar(&wasm, "wasm", "", "Path to the compiled client (see build)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Disable live reload")

	return cmd
}

func runServe(flags *globalFlags, cfg devserver.Config, patterns []string, reload bool) error {
	logger := flags.logger()

	if _, err := os.Stat(cfg.Root); err != nil {
		return fmt.Errorf("cannot serve %s: %w", cfg.Root, err)
	}
	watched := []string{cfg.Root}
	if _, err := os.Stat(cfg.Wasm); err != nil {
		log.Printf("⚠️  Client not found at %s, run `imagefocus build` first", cfg.Wasm)
	} else {
		watched = append(watched, cfg.Wasm)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := devserver.New(cfg, logger)

	if reload {
		pages := watch.Patterns(cfg.Root, patterns...)
		wasm := filepath.Clean(cfg.Wasm)
		w, err := watch.New(watched,
			watch.WithFilter(func(p string) bool { return pages(p) || filepath.Clean(p) == wasm }),
			watch.WithErrorHandler(func(err error) { log.Printf("⚠️  Watch error: %v", err) }),
		)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		log.Printf("👀 Watching %s for changes", cfg.Root)
		go w.Run(ctx, func(paths []string) {
			log.Printf("🔄 %d file(s) changed, reloading browsers", len(paths))
			server.Reload(paths)
		})
	}

	log.Printf("🚀 Serving %s at http://%s", cfg.Root, server.Addr())
	if err := server.ListenAndServe(ctx); err != nil {
		return err
	}
	log.Println("👋 Server stopped")
	return nil
}
