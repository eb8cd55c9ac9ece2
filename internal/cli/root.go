package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/university-api/internal/config"
	"github.com/noah-isme/university-api/internal/database"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Timeout time.Duration
	Verbose bool
}

// Schema is the table lifecycle the commands drive.
type Schema interface {
	CreateTables(ctx context.Context) error
	DropTables(ctx context.Context) error
}

// SchemaFactory opens a schema manager for the configured store and returns a cleanup func.
type SchemaFactory func(ctx context.Context, opts *RootOptions) (Schema, func() error, error)

// NewRootCommand creates the root command for the schema tool.
func NewRootCommand(factory SchemaFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "university-migrate",
		Short: "Manage the university database schema",
		Long:  "Create or drop the students table using the DATABASE_* settings from the environment or a .env file.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Timeout < 0 {
				return fmt.Errorf("invalid timeout %s: must not be negative", opts.Timeout)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "give up after this long (0 waits for the database indefinitely)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewCreateCommand(opts, factory))
	cmd.AddCommand(NewDropCommand(opts, factory))

	return cmd
}

// DefaultSchemaFactory connects to PostgreSQL using the loaded configuration.
func DefaultSchemaFactory(logger zerolog.Logger) SchemaFactory {
	return func(ctx context.Context, opts *RootOptions) (Schema, func() error, error) {
		cfg, err := config.Load(opts.EnvFile)
		if err != nil {
			return nil, nil, err
		}

		level := zerolog.InfoLevel
		if opts.Verbose {
			level = zerolog.DebugLevel
		}
		scoped := logger.Level(level)

		provider, err := database.NewPostgresProvider(cfg.Database, scoped)
		if err != nil {
			return nil, nil, err
		}

		return database.NewSchemaManager(provider, scoped), provider.Close, nil
	}
}

func runSchema(cmd *cobra.Command, opts *RootOptions, factory SchemaFactory, action func(Schema, context.Context) error, done string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	schema, cleanup, err := factory(ctx, opts)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer func() {
			_ = cleanup()
		}()
	}

	if err := action(schema, ctx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}
