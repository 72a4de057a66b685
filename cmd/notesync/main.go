// Command notesync is the offline-first note sync CLI.
package main

import "github.com/mesh-intelligence/notesync/internal/cli"

func main() {
	cli.Execute()
}
