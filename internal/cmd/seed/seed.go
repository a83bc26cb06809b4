// Package seed parses seed command flags and writes the built-in exogenous
// series into a sqlite catalog for local development.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/louisbranch/growthlab/internal/econ"
	entrypoint "github.com/louisbranch/growthlab/internal/platform/cmd"
	"github.com/louisbranch/growthlab/internal/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	ExogDBPath string `env:"GROWTHLAB_EXOG_DB" envDefault:"exog.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.ExogDBPath, "exog-db", cfg.ExogDBPath, "sqlite catalog to write the exogenous data into")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run writes the exogenous catalog.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if strings.TrimSpace(cfg.ExogDBPath) == "" {
		return errors.New("catalog path is required")
	}

	catalog, err := sqlite.Open(cfg.ExogDBPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() {
		_ = catalog.Close()
	}()

	table := econ.DefaultTable()
	if err := catalog.WriteTable(ctx, table); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	fmt.Fprintf(out, "wrote %d exogenous rounds to %s\n", len(table), cfg.ExogDBPath)
	return nil
}
