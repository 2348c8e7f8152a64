package cmd

import (
	"contactdash/storage"
	"contactdash/utils"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the message API and dashboard",
		Long: `Run the HTTP server in the foreground. It serves the message API under the
configured prefix (default /api), the event stream and, unless disabled, the
dashboard pages.

Use Ctrl+C to stop the server gracefully.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg

			store, err := storage.Open(cfg.Storage)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			app, err := buildApp(cfg, store)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
				errCh <- app.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server: %w", err)
			case <-cmd.Context().Done():
			}

			utils.Log.Info("Shutting down...")
			if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
				utils.Log.Error("Shutdown error: %v", err)
				return err
			}
			utils.Log.Info("Shutdown complete")
			return nil
		},
	}
}
