package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-service/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "helpdeskctl",
		Short: "Operator tooling for the help-desk service",
		Long: `helpdeskctl runs one-off maintenance against the service's Postgres
store using the same environment variables as the API server.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.SeedCmd())
	rootCmd.AddCommand(cli.SetRoleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
