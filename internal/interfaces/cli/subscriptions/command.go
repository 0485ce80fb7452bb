// Package subscriptions holds maintenance commands meant to be run from an
// external scheduler.
package subscriptions

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/billing/internal/infrastructure/database"
	"github.com/orris-inc/billing/internal/interfaces/cli"
	httpRouter "github.com/orris-inc/billing/internal/interfaces/http"
)

var (
	env        string
	configPath string
	at         string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "Subscription maintenance",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Directory containing config.yaml (default: ./configs)")

	cmd.AddCommand(newSweepCommand())
	return cmd
}

func newSweepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Close subscriptions whose period has ended",
		Long: `Cancel subscriptions scheduled to cancel at period end and expire
non-renewing ones whose period has ended. Safe to run repeatedly.`,
		RunE: runSweep,
	}
	cmd.Flags().StringVar(&at, "at", "", "Sweep as of this RFC 3339 time instead of now")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	var now time.Time
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		now = t
	}

	rt, err := cli.Setup(env, configPath)
	if err != nil {
		return err
	}
	defer rt.Close()

	container, err := httpRouter.NewContainer(cmd.Context(), rt.Config, database.Get(), rt.Logger)
	if err != nil {
		return err
	}
	defer container.Shutdown()

	result, err := container.Services().Subscriptions.SweepPeriodEnds(cmd.Context(), now)
	if err != nil {
		return err
	}

	rt.Logger.Infow("period-end sweep finished",
		"scanned", result.Scanned,
		"canceled", result.Canceled,
		"expired", result.Expired,
		"failed", result.Failed,
	)
	if result.Failed > 0 {
		return fmt.Errorf("%d subscriptions could not be settled", result.Failed)
	}
	return nil
}
