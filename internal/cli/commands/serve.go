package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/apidocs/internal/catalog"
	"github.com/conduit-lang/apidocs/internal/cli/ui"
	"github.com/conduit-lang/apidocs/internal/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve filter sessions over HTTP",
		Long: `Start the session server.

Each session holds its own filter state, created from a fragment and updated
through JSON requests. Clients subscribed to a session's websocket receive
every new state.

Routes:
  POST   /sessions                    create a session from {"fragment": "..."}
  GET    /sessions/{id}               current view
  PUT    /sessions/{id}/entrypoint    {"value": "<uri>"}
  PUT    /sessions/{id}/query         {"value": "<text>"}
  PUT    /sessions/{id}/role          {"value": "<role>"}
  PUT    /sessions/{id}/element       {"value": "<anchor>"}
  DELETE /sessions/{id}
  GET    /sessions/{id}/events        websocket state stream

Examples:
  apidocs serve
  apidocs serve --port 9000
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("host") {
				e.config.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				e.config.Server.Port = port
			}
			if p := e.config.Server.Port; p < 1 || p > 65535 {
				return fmt.Errorf("invalid port %d", p)
			}

			logger := e.logger
			if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
				logger, err = zap.NewProduction()
				if err != nil {
					return fmt.Errorf("failed to create logger: %w", err)
				}
			}
			defer logger.Sync()

			addr := e.config.Server.Addr()
			srvConfig := server.DefaultConfig(addr)
			if len(e.config.Server.AllowedOrigins) > 0 {
				srvConfig.AllowedOrigins = e.config.Server.AllowedOrigins
			}
			loader := catalog.NewHTTPLoader(e.config.ServerLoaderConfig(), logger)
			srv := server.New(srvConfig, loader, logger)

			banner := color.New(color.FgCyan, color.Bold)
			info := color.New(color.FgWhite)
			hint := color.New(color.FgYellow)
			if e.noColor {
				banner.DisableColor()
				info.DisableColor()
				hint.DisableColor()
			}

			fmt.Fprintln(e.errOut)
			banner.Fprintln(e.errOut, "apidocs session server")
			info.Fprintf(e.errOut, "   http://%s/sessions\n", addr)
			fmt.Fprintln(e.errOut)
			hint.Fprintln(e.errOut, "Press Ctrl+C to stop")
			fmt.Fprintln(e.errOut)

			if err := srv.Run(cmd.Context()); err != nil {
				return err
			}

			ui.WriteSuccess(e.errOut, "Server stopped", e.noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "Host to listen on (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 8000, "Port to listen on (overrides server.port)")

	return cmd
}
