// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "playops-admin",
	Short: "PlayOps-Admin is the back office for the PlayOps gaming platform",
	Long: `PlayOps-Admin is the back office for the PlayOps gaming platform.
It provides player management, KYC review, support tickets, bonus campaigns,
and role-based access control for operator staff.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
