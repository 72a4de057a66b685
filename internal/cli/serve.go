package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notesync/internal/logging"
	"github.com/mesh-intelligence/notesync/internal/remoteserver"
	"github.com/mesh-intelligence/notesync/pkg/sqlite"
)

// serverDirName is the data subdirectory holding the reference server's
// database, kept apart from the client's own notes.
const serverDirName = "server"

func newServeCmd() *cobra.Command {
	var addr, storeDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference remote note service",
		Long: "Serve the remote note API (list, create, update, delete and /health) backed\n" +
			"by its own SQLite database. Useful for development and demos.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = s.ServerAddr
			}
			if storeDir == "" {
				storeDir = filepath.Join(s.Core.DataDir, serverDirName)
			}

			logger, closer, err := logging.New(s.Log)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			defer closer.Close()

			backend, err := sqlite.Open(storeDir)
			if err != nil {
				return fmt.Errorf("open server storage: %w", err)
			}
			defer backend.Detach()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Handler:           remoteserver.New(backend, remoteserver.WithLogger(logger)).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "serving notes on http://%s%s\n", ln.Addr(), remoteserver.DefaultPrefix)
			logger.Info("server started", "addr", ln.Addr().String(), "store", storeDir)
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	cmd.Flags().StringVar(&storeDir, "store-dir", "", "server database directory (default: <data-dir>/server)")
	return cmd
}
