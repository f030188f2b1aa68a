package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/apidocs/internal/catalog"
	"github.com/conduit-lang/apidocs/internal/cli/config"
	"github.com/conduit-lang/apidocs/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "apidocs",
		Short: "Browse and filter API command catalogs",
		Long: color.CyanString(`apidocs - API command catalog browser

apidocs loads a catalog of API commands from a URL or file and narrows it
by access role and free-text query. The filter state round-trips through a
URL fragment, so any view can be shared and restored:

  apidocs view '#entrypointUri=https://api.example.com/commands/&query=account'

Features:
  • Role and text filtering over name, title, method, path and description
  • Shareable fragments for every view
  • Interactive browsing
  • Live reload of local catalog files
  • HTTP and websocket session server`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("verbose", false, "Show debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./apidocs.yml)")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewViewCommand())
	rootCmd.AddCommand(NewBrowseCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the apidocs version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			noColor, _ := cmd.Flags().GetBool("no-color")
			ui.KeyValue(cmd.OutOrStdout(), [][2]string{
				{"apidocs version", Version},
				{"Git commit", GitCommit},
				{"Build date", BuildDate},
				{"Go version", goVer},
			}, noColor)
		},
	}
}

// env is the per-invocation setup shared by the subcommands
type env struct {
	config  *config.Config
	logger  *zap.Logger
	noColor bool
	out     io.Writer
	errOut  io.Writer
}

// newEnv loads the configuration and builds the logger from the persistent
// flags. Debug logging goes to stderr when --verbose is set.
func newEnv(cmd *cobra.Command) (*env, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err, noColor))
		return nil, err
	}
	noColor = noColor || cfg.UI.NoColor

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	return &env{
		config:  cfg,
		logger:  logger,
		noColor: noColor,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}, nil
}

func (e *env) loader() catalog.Loader {
	return catalog.NewHTTPLoader(e.config.Fetch.LoaderConfig(), e.logger)
}

// Execute runs the root command until it returns or the process is
// interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
