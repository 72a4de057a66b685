package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Sync automatically whenever the network comes back",
		Long: "Run the sync core in the foreground. Every offline to online transition\n" +
			"reported by the network observer starts one sync. Stop with Ctrl-C.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDaemon(ctx, cmd)
		},
	}
}

func runDaemon(ctx context.Context, cmd *cobra.Command) error {
	sess, err := openSession(ctx, sessionOptions{watch: true})
	if err != nil {
		return err
	}
	defer sess.Close()

	st := sess.orch.NetState()
	sess.logger.Info("daemon started",
		"mode", sess.settings.Core.NetworkMode,
		"online", st.Online(),
		"data_dir", sess.settings.Core.DataDir,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "notesync daemon running (network %s); press Ctrl-C to stop\n", onlineWord(st.Online()))

	<-ctx.Done()
	sess.logger.Info("daemon stopping")
	return nil
}

func onlineWord(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
