package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/dupefinder/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dupefinder",
		Short: "Dupefinder CLI - find cheaper alternatives to beauty products",
		Long: `Dupefinder CLI talks to a running dupefinderd server.

Environment variables:
  DUPE_API_URL   API base URL (default: http://localhost:8080)`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")

	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.DupesCmd())
	rootCmd.AddCommand(client.CompareCmd())
	rootCmd.AddCommand(client.PricesCmd())
	rootCmd.AddCommand(client.ProductsCmd())
	rootCmd.AddCommand(client.ConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
