package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notesync/internal/netstate"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

func newNetCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:       "net online|offline",
		Short:     "Flip the simulated network state",
		Long:      "Write the network state file followed in file network mode. A running\ndaemon reacts to the change immediately.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"online", "offline"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var state types.NetState
			switch args[0] {
			case "online":
				state = types.NetState{Connected: true, Reachable: true, Kind: kind}
			case "offline":
				state = types.NetState{Kind: types.NetKindNone}
			default:
				return usageErrorf("unknown state %q (want online or offline)", args[0])
			}

			s, err := loadSettings()
			if err != nil {
				return err
			}
			if s.Core.NetworkMode != types.NetworkModeFile {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: network mode is %q; the state file is ignored\n", s.Core.NetworkMode)
			}
			if err := netstate.WriteState(s.Core.StateFile, state); err != nil {
				return err
			}
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), state)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "network %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "wifi", "connection kind reported when online")
	return cmd
}
