// File: cmd/server/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "finsarthi",
	Short: "FinSarthi financial literacy backend",
	Long: `FinSarthi serves the coaching chat, the advice wizard and the AI
features over a JSON API.

Configuration comes from the environment or a .env file.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, watchCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
