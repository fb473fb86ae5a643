package main

import (
	"fmt"
	"os"

	"github.com/jandubois/check-oceanstor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nRun '%s --help' for usage.\n", err, os.Args[0])
		os.Exit(cmd.UsageExitCode)
	}
}
