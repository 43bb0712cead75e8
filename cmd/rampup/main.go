// rampup - project onboarding and contact management server.
//
// Upload project documentation, generate role-specific onboarding plans with
// AI assistance, review the drafts, and publish the approved plans.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rampup",
	Short: "rampup - AI-assisted project onboarding",
	Long: `rampup manages projects, contacts and role-specific onboarding plans.
Plans are generated from project documentation with AI assistance and
published once an admin approves them.

  rampup serve                                  Start the server
  rampup import owner/repo --project 1          Import docs from GitHub`,
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
