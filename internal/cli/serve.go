package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve experiment reports over HTTP",
	Long: `Start a JSON API over the stored experiments, with Prometheus metrics on
/metrics.

Examples:
  abtest serve              # Listen on ABTEST_ADDR (default :8080)
  abtest serve --port 3000  # Listen on port 3000`,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides ABTEST_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return withApp(cmd, func(_ context.Context, app *AppContext) error {
		alpha, err := resolveAlpha(cmd, app.Config)
		if err != nil {
			return err
		}
		addr := app.Config.Addr
		if servePort != 0 {
			addr = fmt.Sprintf(":%d", servePort)
		}

		server := web.NewServer(app.Service, web.Options{
			Addr:            addr,
			Alpha:           alpha,
			ShutdownTimeout: app.Config.ShutdownTimeout,
			Logger:          app.Logger,
		})
		return server.Start(ctx)
	})
}
