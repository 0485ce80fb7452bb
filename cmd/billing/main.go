package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/billing/internal/interfaces/cli/migrate"
	"github.com/orris-inc/billing/internal/interfaces/cli/server"
	"github.com/orris-inc/billing/internal/interfaces/cli/subscriptions"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "billing",
		Short: "Billing - subscriptions, plans and promo codes",
		Long:  `Billing serves the plan catalogue, subscription lifecycle, promo codes and revenue analytics over HTTP, with migration and maintenance commands.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		subscriptions.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
