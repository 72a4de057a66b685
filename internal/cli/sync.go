package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued changes and merge the remote notes",
		Long:  "Run one sync cycle. Fails with exit code 1 while offline.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), sessionOptions{noStartupSync: true})
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.orch.Sync(cmd.Context()); err != nil {
				return err
			}
			st, err := sess.orch.Status(cmd.Context())
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sync complete: %d active notes, %d pending\n", st.Active, st.Pending)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show network, note and queue state",
		Long:  "Show the stored state without syncing first, so pending changes stay visible while online.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), sessionOptions{noStartupSync: true})
			if err != nil {
				return err
			}
			defer sess.Close()

			st, err := sess.orch.Status(cmd.Context())
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			renderStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func newQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List operations waiting to be sent",
		Long:  "List the queue without syncing first. Other note commands sync on start when the network is online.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), sessionOptions{noStartupSync: true})
			if err != nil {
				return err
			}
			defer sess.Close()

			entries, err := sess.orch.Pending(cmd.Context())
			if err != nil {
				return err
			}
			if flags.jsonMode {
				if entries == nil {
					entries = []types.QueueEntry{}
				}
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			renderQueue(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}
