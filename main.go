// ./main.go
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/xkilldash9x/lattice/cmd"
	"github.com/xkilldash9x/lattice/internal/observability"
)

const panicLogFile = "lattice-panic.log"

func main() {
	defer handlePanic()
	cmd.Execute()
}

// handlePanic flushes the logs and records the stack of an unrecovered panic.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()
	msg := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := os.WriteFile(panicLogFile, []byte(msg), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to write panic log: %v\n%s\n", err, msg)
	} else {
		fmt.Fprintf(os.Stderr, "lattice crashed; details written to %s\n", panicLogFile)
	}
	os.Exit(2)
}
