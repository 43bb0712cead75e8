package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rampup"
	"rampup/config"
)

var importProjectID int64

var importCmd = &cobra.Command{
	Use:   "import <owner/repo>",
	Short: "Import documentation from a GitHub repository",
	Long:  "Fetch the repository README and docs/ markdown files and store them as project documentation.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().Int64Var(&importProjectID, "project", 0, "project ID to attach the documents to (required)")
	importCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	loadConfigFileIntoEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	app, err := rampup.NewBuilder().WithConfig(cfg).Build()
	if err != nil {
		return fmt.Errorf("building app: %w", err)
	}
	defer app.Store().Close()

	// Fail early on a bad project ID rather than importing into the void.
	if _, err := app.Store().GetProject(importProjectID); err != nil {
		return fmt.Errorf("project %d not found", importProjectID)
	}

	n, err := app.ImportGitHubDocs(context.Background(), importProjectID, args[0], "cli")
	if err != nil {
		return fmt.Errorf("importing docs: %w", err)
	}
	fmt.Printf("Imported %d documents from %s into project %d\n", n, args[0], importProjectID)
	return nil
}
