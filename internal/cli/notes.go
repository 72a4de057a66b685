package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// reportQueued turns a failed direct attempt into a warning: the local write
// stands and, unless the remote has lost the note, the change waits in the
// queue.
func reportQueued(cmd *cobra.Command, err error) error {
	switch {
	case err == nil || !errors.Is(err, types.ErrRemote):
		return err
	case errors.Is(err, types.ErrRemoteNotFound):
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: remote no longer has this note, change kept locally: %v\n", err)
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: remote unavailable, change queued for sync: %v\n", err)
	}
	return nil
}

func newAddCmd() *cobra.Command {
	var in types.NoteInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Long: "Create a note locally. When online it is sent to the remote service at once;\n" +
			"otherwise it is queued until the next sync.",
		Example: `  notesync add --title Groceries --description "milk, eggs"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Title == "" || in.Description == "" {
				return usageErrorf("--title and --description are required")
			}
			sess, err := openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer sess.Close()

			note, err := sess.orch.CreateNote(cmd.Context(), in)
			if err := reportQueued(cmd, err); err != nil {
				return err
			}
			return printNote(cmd, note)
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "note title (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "note body (required)")
	cmd.Flags().StringVar(&in.Image, "image", "", "image URI")
	return cmd
}

func newEditCmd() *cobra.Command {
	var title, description, image string
	cmd := &cobra.Command{
		Use:   "edit <local-id>",
		Short: "Change fields of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch types.NotePatch
			if cmd.Flags().Changed("title") {
				if title == "" {
					return usageErrorf("--title must not be empty")
				}
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				if description == "" {
					return usageErrorf("--description must not be empty")
				}
				patch.Description = &description
			}
			if cmd.Flags().Changed("image") {
				patch.Image = &image
			}
			if patch.Empty() {
				return usageErrorf("nothing to change; pass --title, --description or --image")
			}

			sess, err := openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer sess.Close()

			note, err := sess.orch.UpdateNote(cmd.Context(), args[0], patch)
			if errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("note %q: %w", args[0], err)
			}
			if err := reportQueued(cmd, err); err != nil {
				return err
			}
			return printNote(cmd, note)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new body")
	cmd.Flags().StringVar(&image, "image", "", "new image URI (empty clears it)")
	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <local-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer sess.Close()

			err = sess.orch.DeleteNote(cmd.Context(), args[0])
			if errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("note %q: %w", args[0], err)
			}
			if err := reportQueued(cmd, err); err != nil {
				return err
			}
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Long:  "List the visible notes. With --all, tombstoned notes are included.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer sess.Close()

			notes := sess.orch.Notes()
			if all {
				if notes, err = sess.orch.AllNotes(cmd.Context()); err != nil {
					return err
				}
			}
			if flags.jsonMode {
				if notes == nil {
					notes = []types.Note{}
				}
				return writeJSON(cmd.OutOrStdout(), notes)
			}
			renderNotes(cmd.OutOrStdout(), notes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include deleted notes")
	return cmd
}

func printNote(cmd *cobra.Command, n types.Note) error {
	if flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), n)
	}
	renderNote(cmd.OutOrStdout(), n)
	return nil
}
