// Package cli holds the setup shared by the cobra commands.
package cli

import (
	"fmt"

	"github.com/orris-inc/billing/internal/infrastructure/config"
	"github.com/orris-inc/billing/internal/infrastructure/database"
	"github.com/orris-inc/billing/internal/shared/constants"
	"github.com/orris-inc/billing/internal/shared/logger"
)

// Runtime is the loaded configuration plus an open database.
type Runtime struct {
	Config *config.Config
	Logger logger.Interface
}

// Setup loads configuration, installs the process logger and opens the
// database. Call Close when done.
func Setup(env, configPath string) (*Runtime, error) {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}
	cfg, err := config.Load(env, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, env == "debug" || env == constants.EnvDevelopment); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Runtime{Config: cfg, Logger: logger.NewLogger()}, nil
}

func (r *Runtime) Close() {
	if err := database.Close(); err != nil {
		r.Logger.Warnw("failed to close database", "error", err)
	}
}
