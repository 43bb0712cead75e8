package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"rampup"
	"rampup/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the rampup server",
	Long:  "Start the rampup API server that manages projects, contacts and onboarding plans.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load config file into environment (non-destructive).
	loadConfigFileIntoEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := rampup.NewBuilder().WithConfig(cfg).Build()
	if err != nil {
		return fmt.Errorf("building app: %w", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	return app.Start(ctx)
}

// loadConfigFileIntoEnv reads ~/.rampup/config.env and sets any values not
// already present in the environment.
func loadConfigFileIntoEnv() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	path := filepath.Join(home, ".rampup", "config.env")
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, value := parts[0], parts[1]
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
