// spadeSocketBridge ingests the Linux Audit Subsystem's raw record stream,
// reorders it by event id, reassembles multi-line records, recognizes
// UBSI user-level unit markers, and emits a clean per-thread provenance
// stream to standard output for a downstream SPADE consumer.
package main

import (
	"os"

	"spadesocketbridge/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
