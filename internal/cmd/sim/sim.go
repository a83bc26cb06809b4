// Package sim parses simulation command flags and composes the realtime server.
package sim

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/louisbranch/growthlab/internal/app/server"
	"github.com/louisbranch/growthlab/internal/econ"
	entrypoint "github.com/louisbranch/growthlab/internal/platform/cmd"
	"github.com/louisbranch/growthlab/internal/session"
	"github.com/louisbranch/growthlab/internal/storage/sqlite"
)

// Config holds sim command configuration.
type Config struct {
	HTTPAddr   string `env:"GROWTHLAB_HTTP_ADDR" envDefault:":8080"`
	ExogDBPath string `env:"GROWTHLAB_EXOG_DB"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "sim HTTP listen address")
	fs.StringVar(&cfg.ExogDBPath, "exog-db", cfg.ExogDBPath, "sqlite catalog of exogenous data (empty uses the built-in series)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the simulation world and serves the realtime transport.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSim, func(context.Context) error {
		table, err := loadTable(ctx, cfg.ExogDBPath)
		if err != nil {
			return fmt.Errorf("load exogenous table: %w", err)
		}

		params := econ.DefaultParams()
		initial, ok := econ.InitialState(params, table)
		if !ok {
			return fmt.Errorf("exogenous table is empty")
		}

		coordinator, err := session.NewCoordinator(session.NewMemoryStore(initial), table, params)
		if err != nil {
			return fmt.Errorf("init coordinator: %w", err)
		}

		if err := server.Run(ctx, server.Config{HTTPAddr: cfg.HTTPAddr}, coordinator); err != nil {
			return fmt.Errorf("serve sim: %w", err)
		}
		return nil
	})
}

func loadTable(ctx context.Context, path string) (econ.Table, error) {
	if strings.TrimSpace(path) == "" {
		return econ.DefaultTable(), nil
	}

	catalog, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = catalog.Close()
	}()

	return catalog.LoadTable(ctx)
}
