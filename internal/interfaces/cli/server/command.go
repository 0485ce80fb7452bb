package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/orris-inc/billing/internal/infrastructure/database"
	"github.com/orris-inc/billing/internal/infrastructure/migration"
	"github.com/orris-inc/billing/internal/infrastructure/scheduler"
	"github.com/orris-inc/billing/internal/interfaces/cli"
	httpRouter "github.com/orris-inc/billing/internal/interfaces/http"
	"github.com/orris-inc/billing/internal/shared/constants"
	"github.com/orris-inc/billing/internal/shared/goroutine"
)

var (
	env         string
	configPath  string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the billing HTTP API. Caller identity is read from the X-User-ID and X-User-Role headers set by the upstream gateway.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Directory containing config.yaml (default: ./configs)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup (not recommended for production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	rt, err := cli.Setup(env, configPath)
	if err != nil {
		return err
	}
	defer rt.Close()
	log := rt.Logger

	gin.SetMode(mapEnvToGinMode(env))
	gin.DefaultWriter = io.Discard

	if autoMigrate {
		if env == constants.EnvProduction {
			log.Warnw("auto-migration is enabled in production environment - this is not recommended!")
		}
		if err := migration.NewManager(rt.Config.Database.Driver, log).Migrate(database.Get()); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := httpRouter.NewContainer(ctx, rt.Config, database.Get(), log)
	if err != nil {
		return err
	}
	defer container.Shutdown()

	if interval := rt.Config.Billing.SweepInterval; interval > 0 {
		sched, err := scheduler.NewSchedulerManager(log.Named("scheduler"))
		if err != nil {
			return err
		}
		if err := sched.RegisterSweepJob(interval, container.Services().Subscriptions); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				log.Warnw("scheduler shutdown failed", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         rt.Config.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	goroutine.SafeGo(log, "http-server", func() {
		defer close(serveErr)
		log.Infow("server starting", "address", srv.Addr, "environment", env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	})

	select {
	case err := <-serveErr:
		if err != nil {
			log.Errorw("server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case constants.EnvProduction, "prod", "release":
		return gin.ReleaseMode
	case constants.EnvTest, "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
