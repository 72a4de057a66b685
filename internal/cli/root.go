// Package cli implements the notesync command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage error")

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

var flags rootFlags

// NewRootCmd creates the top-level "notesync" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notesync",
		Short: "Offline-first note sync",
		Long: "notesync keeps a local note store in step with a remote note service.\n" +
			"Changes made while offline are queued and replayed when the network returns.",
		// Errors are printed once by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/notesync)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .notesync-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newAddCmd(),
		newEditCmd(),
		newRmCmd(),
		newListCmd(),
		newSyncCmd(),
		newStatusCmd(),
		newQueueCmd(),
		newNetCmd(),
		newDaemonCmd(),
		newServeCmd(),
		newExportCmd(),
		newImportCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "notesync:", err)
		return exitCodeFor(err)
	}
	return exitSuccess
}

// exitCodeFor maps caller mistakes to exitUserError and everything else to
// exitSysError.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrOffline),
		errors.Is(err, errUsage):
		return exitUserError
	default:
		return exitSysError
	}
}

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}
