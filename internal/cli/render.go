package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/notesync/internal/orchestrator"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

// styles holds the lipgloss styles bound to one output. A renderer for a
// non-terminal writer emits plain text.
type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	online  lipgloss.Style
	offline lipgloss.Style
	warn    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header:  r.NewStyle().Bold(true),
		label:   r.NewStyle().Bold(true),
		online:  r.NewStyle().Foreground(lipgloss.Color("2")),
		offline: r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

const timeLayout = time.RFC3339

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeTable prints rows under a bold header with columns separated by two
// spaces. The last column is not padded.
func writeTable(w io.Writer, st styles, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	line := func(cells []string) string {
		var b strings.Builder
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)+2))
		}
		return b.String()
	}

	fmt.Fprintln(w, st.header.Render(line(header)))
	for _, row := range rows {
		fmt.Fprintln(w, line(row))
	}
}

func noteState(n types.Note) string {
	switch {
	case n.IsDeleted:
		return "deleted"
	case n.IsSync:
		return "synced"
	default:
		return "pending"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderNotes prints notes as a table.
func renderNotes(w io.Writer, notes []types.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "no notes")
		return
	}
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []string{
			n.LocalID,
			orDash(n.RemoteID),
			noteState(n),
			n.UpdatedAt.UTC().Format(timeLayout),
			n.Title,
		})
	}
	writeTable(w, newStyles(w), []string{"LOCAL ID", "REMOTE ID", "STATE", "UPDATED", "TITLE"}, rows)
}

// renderNote prints one note as labeled fields.
func renderNote(w io.Writer, n types.Note) {
	st := newStyles(w)
	field := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", st.label.Render(fmt.Sprintf("%-12s", label+":")), value)
	}
	field("Local ID", n.LocalID)
	field("Remote ID", orDash(n.RemoteID))
	field("State", noteState(n))
	field("Title", n.Title)
	field("Description", n.Description)
	if n.Image != "" {
		field("Image", n.Image)
	}
	field("Created", n.CreatedAt.UTC().Format(timeLayout))
	field("Updated", n.UpdatedAt.UTC().Format(timeLayout))
}

// renderQueue prints pending queue entries in replay order.
func renderQueue(w io.Writer, entries []types.QueueEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "queue is empty")
		return
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(e.Operation),
			e.Note.LocalID,
			orDash(e.Note.RemoteID),
			e.Timestamp.UTC().Format(timeLayout),
			e.Note.Title,
		})
	}
	writeTable(w, newStyles(w), []string{"#", "OPERATION", "LOCAL ID", "REMOTE ID", "QUEUED", "TITLE"}, rows)
}

// renderStatus prints the connectivity, note and queue summary.
func renderStatus(w io.Writer, s orchestrator.Status) {
	st := newStyles(w)
	label := func(name string) string {
		return st.label.Render(fmt.Sprintf("%-8s", name))
	}

	var network string
	switch {
	case s.Online:
		network = st.online.Render("online")
	case s.Net.Connected:
		network = st.offline.Render("offline") + " (connected, remote unreachable)"
	default:
		network = st.offline.Render("offline")
	}
	fmt.Fprintf(w, "%s  %s [%s]\n", label("Network"), network, s.Net.KindOrUnknown())
	fmt.Fprintf(w, "%s  %d active, %d unsynced, %d stored\n", label("Notes"), s.Active, s.Unsynced, s.Total)
	fmt.Fprintf(w, "%s  %d pending\n", label("Queue"), s.Pending)
	if s.LastError != "" {
		fmt.Fprintf(w, "%s  %s\n", label("Error"), st.warn.Render(s.LastError))
	}
}
