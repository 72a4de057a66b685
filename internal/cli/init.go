package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/notesync/internal/netstate"
	"github.com/mesh-intelligence/notesync/internal/paths"
	"github.com/mesh-intelligence/notesync/pkg/sqlite"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize notesync storage",
		Long: "Create the configuration and data directories, write a default config.yaml\n" +
			"and initialize the local database. Running init again is harmless.",
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	backend, err := sqlite.Open(s.Core.DataDir)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := backend.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	configPath := filepath.Join(s.ConfigDir, paths.ConfigFileName)
	if flags.dataDir != "" {
		if err := recordDataDir(configPath, s.Core.DataDir); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
	}

	// A fresh state file starts offline.
	if s.Core.NetworkMode == types.NetworkModeFile {
		if _, err := os.Stat(s.Core.StateFile); errors.Is(err, fs.ErrNotExist) {
			if err := netstate.WriteState(s.Core.StateFile, types.NetState{Kind: types.NetKindNone}); err != nil {
				return fmt.Errorf("write network state: %w", err)
			}
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "notesync initialized")
	fmt.Fprintf(out, "config: %s\n", configPath)
	fmt.Fprintf(out, "data:   %s\n", s.Core.DataDir)
	return nil
}

// recordDataDir pins data_dir in config.yaml so later invocations without
// --data-dir open the same store. An existing data_dir entry is kept. The
// document is edited as a yaml.Node so its comments survive.
func recordDataDir(path, dataDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parse %s: top level is not a mapping", path)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == cfgKeyDataDir {
			return nil
		}
	}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: cfgKeyDataDir},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: dataDir},
	)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}
