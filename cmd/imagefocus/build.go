package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newBuildCommand(flags *globalFlags) *cobra.Command {
	var output string
	var pkg string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the browser client to WebAssembly",
		Long:  `Builds the overlay's browser client with GOOS=js GOARCH=wasm.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				cfg, err := flags.loadConfig()
				if err != nil {
					return err
				}
				output = cfg.Dev.Wasm
			}
			return runBuild(pkg, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default from imagefocus.yaml)")
	cmd.Flags().StringVar(&pkg, "pkg", "./app/client", "Client package to build")

	return cmd
}

func runBuild(pkg, output string) error {
	log.Printf("🔨 Building %s...", pkg)

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cmd := exec.Command("go", "build", "-trimpath", "-ldflags=-s -w", "-o", output, pkg)
	cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("wasm build failed: %w\nOutput: %s", err, out)
	}

	info, err := os.Stat(output)
	if err != nil {
		return err
	}
	log.Printf("📦 %s (%.1f KB)", output, float64(info.Size())/1024)
	return nil
}
