package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notesync/internal/snapshot"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.jsonl>",
		Short: "Write every stored note, tombstones included, as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer sess.Close()

			notes, err := sess.orch.AllNotes(cmd.Context())
			if err != nil {
				return err
			}
			if err := snapshot.WriteNotes(args[0], notes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d notes to %s\n", len(notes), args[0])
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Replace the stored notes with a JSON lines snapshot",
		Long: "Replace every stored note with the notes in the snapshot. Malformed lines\n" +
			"are skipped. The operation queue is not touched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer sess.Close()

			notes, err := snapshot.ReadNotes(args[0], sess.logger)
			if err != nil {
				return err
			}
			if err := sess.orch.Import(cmd.Context(), notes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d notes from %s\n", len(notes), args[0])
			return nil
		},
	}
}
