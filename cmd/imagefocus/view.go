package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/imagefocus/cmd/imagefocus/internal/host"
	"github.com/recera/imagefocus/cmd/imagefocus/internal/ui"
	"github.com/recera/imagefocus/cmd/imagefocus/internal/watch"
)

func newViewCommand(flags *globalFlags) *cobra.Command {
	var watchFile bool
	var fragment string

	cmd := &cobra.Command{
		Use:   "view <page.html>",
		Short: "Drive the overlay on a page from the terminal",
		Long: `Loads a page into a headless document and runs the overlay on it. Focus
images, step through the gallery, zoom and pan from the keyboard while the
overlay state is shown live.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), flags, args[0], fragment, watchFile)
		},
	}

	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Reload the page when the file changes")
	cmd.Flags().StringVarP(&fragment, "fragment", "f", "", "Open the page at this URL fragment (e.g. if_slide_2)")

	return cmd
}

func runView(ctx context.Context, flags *globalFlags, path, fragment string, watchFile bool) error {
	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	logger := flags.logger()

	page, err := host.OpenAt(path, fragment, cfg, logger)
	if err != nil {
		return err
	}

	prog, err := ui.NewProgram(filepath.Base(path), page)
	if err != nil {
		page.Close()
		return fmt.Errorf("%w, use scan instead", err)
	}

	if watchFile {
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		target := filepath.Clean(path)
		w, err := watch.New([]string{path},
			watch.WithFilter(func(p string) bool { return filepath.Clean(p) == target }),
			watch.WithErrorHandler(func(err error) { logger.Warn("watch error", "error", err) }),
		)
		if err != nil {
			page.Close()
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		go w.Run(ctx, func([]string) {
			prog.Reload(host.OpenAt(path, fragment, cfg, logger))
		})
	}

	if err := prog.Run(); err != nil {
		return err
	}
	log.Println("👋 Bye")
	return nil
}
