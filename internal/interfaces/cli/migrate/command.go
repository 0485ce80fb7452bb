package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/billing/internal/infrastructure/database"
	"github.com/orris-inc/billing/internal/infrastructure/migration"
	"github.com/orris-inc/billing/internal/interfaces/cli"
)

var (
	env        string
	configPath string
	steps      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back and inspect database migrations. MySQL uses the embedded goose scripts; sqlite is migrated from the models.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Directory containing config.yaml (default: ./configs)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func runUp(cmd *cobra.Command, args []string) error {
	rt, err := cli.Setup(env, configPath)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Logger.Infow("running up migrations", "environment", env, "driver", rt.Config.Database.Driver)

	manager := migration.NewManager(rt.Config.Database.Driver, rt.Logger)
	if err := manager.Migrate(database.Get()); err != nil {
		return err
	}

	rt.Logger.Infow("migrations completed successfully")
	return nil
}

// goose returns the goose strategy, refusing drivers that are migrated
// from the models and so have no version history.
func goose(driver string, rt *cli.Runtime) (*migration.GooseStrategy, error) {
	strategy, ok := migration.NewManager(driver, rt.Logger).Strategy().(*migration.GooseStrategy)
	if !ok {
		return nil, fmt.Errorf("driver %q is migrated from models and has no migration history", driver)
	}
	return strategy, nil
}

func runDown(cmd *cobra.Command, args []string) error {
	rt, err := cli.Setup(env, configPath)
	if err != nil {
		return err
	}
	defer rt.Close()

	strategy, err := goose(rt.Config.Database.Driver, rt)
	if err != nil {
		return err
	}

	rt.Logger.Infow("rolling back migrations", "environment", env, "steps", steps)
	return strategy.MigrateDown(database.Get(), steps)
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := cli.Setup(env, configPath)
	if err != nil {
		return err
	}
	defer rt.Close()

	strategy, err := goose(rt.Config.Database.Driver, rt)
	if err != nil {
		return err
	}

	version, err := strategy.GetVersion(database.Get())
	if err != nil {
		return err
	}
	rt.Logger.Infow("current migration version", "version", version)
	return strategy.Status(database.Get())
}
