// Package cli implements the carbonctl administration commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"carbonyx/internal/config"
	"carbonyx/internal/domain/emissions"
	"carbonyx/internal/domain/factors"
	"carbonyx/internal/infrastructure/storage"
	"carbonyx/pkg/logger"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
)

// RootOptions are shared by every subcommand.
type RootOptions struct {
	Output      string
	Driver      string
	DBPath      string
	DatabaseURL string
	Migrate     bool

	cfg    config.Config
	log    *logger.Logger
	stores *storage.Stores
}

// NewRootCmd builds the carbonctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &RootOptions{Output: FormatHuman, Migrate: true}

	cmd := &cobra.Command{
		Use:           "carbonctl",
		Short:         "carbonctl administers the carbonyx emissions store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Output = strings.ToLower(strings.TrimSpace(opts.Output))
			if opts.Output != FormatHuman && opts.Output != FormatJSON {
				return fmt.Errorf("invalid --output value %q: supported values are %s|%s", opts.Output, FormatHuman, FormatJSON)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = opts.applyFlags(cmd, cfg)

			log, err := logger.New(logger.Config{
				Level:       opts.cfg.LogLevel,
				Development: opts.cfg.Development(),
				OutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			opts.log = log.WithComponent("carbonctl")
			cmd.SetContext(logger.WithLogger(cmd.Context(), opts.log))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.stores != nil {
				if err := opts.stores.Close(); err != nil {
					return fmt.Errorf("close store: %w", err)
				}
				opts.stores = nil
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Output, "output", FormatHuman, "Output format: human|json")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "Storage driver: sqlite|postgres (default from DB_DRIVER)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db-path", "", "SQLite database path (default from SQLITE_PATH)")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "Postgres DSN (default from DATABASE_URL)")
	cmd.PersistentFlags().BoolVar(&opts.Migrate, "migrate", true, "Apply migrations before running the command")

	cmd.AddCommand(
		NewMigrateCmd(opts),
		NewReportCmd(opts),
		NewFactorsCmd(opts),
		NewRecordCmd(opts),
		NewSeedCmd(opts),
		NewTokenCmd(opts),
	)

	return cmd
}

func (o *RootOptions) applyFlags(cmd *cobra.Command, cfg config.Config) config.Config {
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.DBDriver = strings.ToLower(o.Driver)
	}
	if flags.Changed("db-path") {
		cfg.SQLitePath = o.DBPath
		if !flags.Changed("driver") {
			cfg.DBDriver = config.DriverSQLite
		}
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = o.DatabaseURL
	}
	return cfg
}

// openStores connects on first use so commands without storage never touch it.
func (o *RootOptions) openStores(ctx context.Context) (*storage.Stores, error) {
	if o.stores != nil {
		return o.stores, nil
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	stores, err := storage.Open(ctx, storage.Options{
		Driver:           o.cfg.DBDriver,
		DatabaseURL:      o.cfg.DatabaseURL,
		SQLitePath:       o.cfg.SQLitePath,
		MaxConns:         o.cfg.DBMaxConns,
		StatementTimeout: o.cfg.StatementTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if o.Migrate {
		if err := stores.Migrate(ctx); err != nil {
			_ = stores.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	o.stores = stores
	return stores, nil
}

func (o *RootOptions) factorService(ctx context.Context) (*factors.Service, *storage.Stores, error) {
	stores, err := o.openStores(ctx)
	if err != nil {
		return nil, nil, err
	}
	return factors.NewService(stores.Factors, stores.TxManager), stores, nil
}

func (o *RootOptions) ledger(ctx context.Context) (*emissions.Ledger, error) {
	svc, stores, err := o.factorService(ctx)
	if err != nil {
		return nil, err
	}
	return emissions.NewLedger(svc, stores.Emissions, nil), nil
}

// print writes v as indented JSON, or calls human for the human format.
func (o *RootOptions) print(w io.Writer, v any, human func(io.Writer) error) error {
	if o.Output == FormatJSON || human == nil {
		payload, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json output: %w", err)
		}
		if _, err := fmt.Fprintln(w, string(payload)); err != nil {
			return fmt.Errorf("write json output: %w", err)
		}
		return nil
	}
	return human(w)
}

func requireOrgFlag(org string) error {
	if strings.TrimSpace(org) == "" {
		return fmt.Errorf("--org is required")
	}
	return nil
}
