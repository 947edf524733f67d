package cli

import (
	"context"
	"fmt"
	"github.com/ryotarai/fwctl/pkg/server"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

var serveFlags struct {
	listen string
}

func init() {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the firewall operations over an HTTP JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := serveFlags.listen
			if addr == "" {
				addr = conf.Server.Address()
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			logger.Warn().Msg("Changing firewall settings requires running as Administrator")

			srv := server.New(logger, fw)
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(addr)
			}()

			select {
			case <-sigCh:
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("failed to serve on %s: %w", addr, err)
				}
				return nil
			}

			logger.Info().Msg("Shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn().Err(err).Msg("Failed to shutdown server")
			}

			return nil
		},
	}
	c.Flags().StringVar(&serveFlags.listen, "listen", "", "address to listen on (default from server.host and server.port)")

	rootCmd.AddCommand(c)
}
