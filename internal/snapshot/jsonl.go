// Package snapshot reads and writes JSONL snapshots of the note collection
// for backup and inspection. Writes are atomic: temp file, fsync, rename.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// ReadNotes reads a JSONL file with one note per line. Empty lines are
// ignored; malformed lines are skipped and reported to logger.
func ReadNotes(path string, logger *slog.Logger) ([]types.Note, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var notes []types.Note
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var n types.Note
		if err := json.Unmarshal(raw, &n); err != nil || n.LocalID == "" {
			if logger != nil {
				logger.Warn("skipping malformed snapshot line", "path", path, "line", line)
			}
			continue
		}
		notes = append(notes, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return notes, nil
}

// WriteNotes atomically writes notes to path, one JSON object per line.
func WriteNotes(path string, notes []types.Note) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, n := range notes {
		// Encode appends the newline.
		if err := enc.Encode(n); err != nil {
			return fail(fmt.Errorf("writing note %s: %w", n.LocalID, err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
