package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/uniterm/internal/config"
	"github.com/roach88/uniterm/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose        bool
	Format         string // "json" | "text"
	ConfigPath     string
	Database       string
	LegacySchema   bool
	RenderOperator bool

	// Logger is set by the root command. Subcommands built on their own
	// fall back to slog.Default.
	Logger *slog.Logger

	// TraceIDs stamps JSON responses. Nil means UUIDv7Generator.
	TraceIDs TraceIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the uniterm CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "uniterm",
		Short: "uniterm - sequencing records for uniterm algebra",
		Long: `Store, list and transform pairs of uniterms joined by a sequencing
operator (";" or ","), and substitute either uniterm with its alternate.

Settings come from flags, UNITERM_* environment variables and an optional
config file (config.toml/yaml/json), in that order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfig(cmd, opts); err != nil {
				return err
			}
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			slog.SetDefault(opts.Logger)
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default: ./config.* or ~/.config/uniterm/config.*)")
	flags.StringVar(&opts.Database, "db", config.DefaultDatabasePath, "path to SQLite database")
	flags.BoolVar(&opts.LegacySchema, "legacy-schema", false, "allow records without alternate terms")
	flags.BoolVar(&opts.RenderOperator, "render-operator", false, "render expressions with their stored operator instead of \";\"")

	// Add subcommands
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewComposeCommand(opts))
	cmd.AddCommand(NewSubstituteCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// applyConfig fills every global flag the user did not set from the
// loaded configuration.
func applyConfig(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		exitErr := WrapExitError(ExitCommandError, "failed to load config", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %v\n", CodeConfig, exitErr)
		return exitErr
	}

	flags := cmd.Flags()
	if !flags.Changed("db") {
		opts.Database = cfg.Database.Path
	}
	if !flags.Changed("legacy-schema") {
		opts.LegacySchema = cfg.Database.LegacySchema
	}
	if !flags.Changed("format") {
		opts.Format = cfg.Output.Format
	}
	if !flags.Changed("render-operator") {
		opts.RenderOperator = cfg.Output.RenderOperator
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// logger returns the configured logger or the process default.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
		TraceIDs:  o.TraceIDs,
	}
}

// openStore opens the configured database. Callers close it with
// closeStore.
func (o *RootOptions) openStore() (*store.Store, error) {
	path := o.Database
	if path == "" {
		path = config.DefaultDatabasePath
	}

	storeOpts := []store.Option{store.WithLogger(o.logger())}
	if o.LegacySchema {
		storeOpts = append(storeOpts, store.WithLegacySchema())
	}

	o.logger().Debug("opening database", "path", path, "legacy_schema", o.LegacySchema)
	return store.Open(path, storeOpts...)
}

func (o *RootOptions) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		o.logger().Error("error closing database", "error", err)
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
