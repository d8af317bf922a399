package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pathfs/internal/config"
	"github.com/arthur-debert/pathfs/pkg/pathfs"
	"github.com/arthur-debert/pathfs/pkg/pathfs/filesystem"
)

var (
	verbosity   int
	logLevel    string
	concurrency int

	// fsys is bound to the host filesystem before any subcommand runs.
	fsys *pathfs.FS
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pathfs",
	Short: "Path algebra and filesystem tree tool",
	Long: `pathfs resolves, normalizes and relates path strings, and lists, copies
and removes directory trees without following symbolic links.
Tree plans describe a sequence of tree operations in YAML.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides PATHFS_LOG_LEVEL)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "Sibling copies cp-tree runs at once (overrides PATHFS_CONCURRENCY)")

	rootCmd.AddCommand(versionCmd)

	for _, cmd := range newPathCommands() {
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range newTreeCommands() {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newPermsCommand())
	rootCmd.AddCommand(newPlanCommand())
}

// setup loads the configuration, applies flag overrides and binds fsys.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if logLevel != "" {
		if level, err = pathfs.LogLevelFromString(logLevel); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	if verbosity > 0 {
		level = pathfs.LevelFromVerbosity(verbosity)
	}

	var logger zerolog.Logger
	if cfg.NoColor {
		logger = pathfs.NewLogger(cmd.ErrOrStderr(), level)
	} else {
		logger = pathfs.NewColorLogger(cmd.ErrOrStderr(), level)
	}

	n := cfg.Concurrency
	if concurrency > 0 {
		n = concurrency
	}

	provider := filesystem.NewOSFileSystem()
	opts := []pathfs.Option{pathfs.WithLogger(logger), pathfs.WithConcurrency(n)}
	if _, ok := provider.Umask(); !ok {
		fallback, err := cfg.Fallback()
		if err != nil {
			return err
		}
		opts = append(opts, pathfs.WithDefaultPermissions(fallback))
	}
	fsys = pathfs.New(provider, opts...)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Print the version number of pathfs`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pathfs version %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
