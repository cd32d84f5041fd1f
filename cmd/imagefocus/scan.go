package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/recera/imagefocus/cmd/imagefocus/internal/host"
)

func newScanCommand(flags *globalFlags) *cobra.Command {
	var fragment string

	cmd := &cobra.Command{
		Use:   "scan <page.html>...",
		Short: "List the focusable images on pages",
		Long: `Loads each page into a headless document, runs the overlay's content scan,
and prints every focusable image with its gallery position.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(flags, args, fragment)
		},
	}

	cmd.Flags().StringVarP(&fragment, "fragment", "f", "", "Open each page at this URL fragment (e.g. if_slide_2)")

	return cmd
}

func runScan(flags *globalFlags, paths []string, fragment string) error {
	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	logger := flags.logger()

	for _, path := range paths {
		log.Printf("🔍 Scanning %s...", path)
		page, err := host.OpenAt(path, fragment, cfg, logger)
		if err != nil {
			return err
		}
		state := page.State()
		page.Close()

		fmt.Fprintln(os.Stdout, scanTable(state))

		gallery := 0
		for _, img := range state.Images {
			if img.Gallery {
				gallery++
			}
		}
		log.Printf("✅ %s: %d focusable, %d in gallery", filepath.Base(path), len(state.Images), gallery)
		if state.Focused != nil {
			log.Printf("🖼  #%s focuses image %s of %d", fragment, state.Number, state.Count)
		}
	}
	return nil
}

// scanTable renders the registered images of a page
func scanTable(state host.State) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	focused := lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "SLIDE", "SOURCE", "SIZE", "TITLE").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row == state.Selected:
				return focused
			}
			return lipgloss.NewStyle()
		})

	for i, img := range state.Images {
		slide := "-"
		if img.Gallery {
			slide = strconv.Itoa(img.Index + 1)
		}
		t.Row(
			strconv.Itoa(i+1),
			slide,
			img.Src,
			fmt.Sprintf("%.0f×%.0f", img.Width, img.Height),
			img.Title,
		)
	}
	return t
}
